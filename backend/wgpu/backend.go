//go:build !nogpu

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
	"github.com/gogpu/gsdirect/internal/cache"
)

// Frame formats.
const (
	colorFormat = gputypes.TextureFormatRGBA8Unorm
	depthFormat = gputypes.TextureFormatDepth24Plus
)

// Backend renders draw calls with a gogpu/wgpu HAL device into an
// offscreen color and depth target.
//
// Draws are recorded into one render pass per upload and submitted when
// the buffers are replaced or the frame is read back. All methods are
// safe for concurrent use; textures are typically created by a loader
// goroutine while the render goroutine draws.
type Backend struct {
	mu sync.Mutex

	device     hal.Device
	queue      hal.Queue
	instance   hal.Instance
	ownsDevice bool
	info       *GPUInfo
	closed     bool

	width, height uint32

	// Pipeline objects.
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  *cache.Cache[pipelineKey, hal.RenderPipeline]
	// retired pipelines are destroyed once the GPU is idle.
	retired []hal.RenderPipeline

	// Render target.
	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	// Geometry and per-draw uniforms.
	vertexBuf  hal.Buffer
	vertexCap  uint64
	indexBuf   hal.Buffer
	indexCap   uint64
	indexCount int
	uniformBuf hal.Buffer
	staging    []byte

	// Textures and samplers.
	textures map[gsdirect.TextureHandle]*texture
	next     gsdirect.TextureHandle
	white    *texture
	samplers [8]hal.Sampler

	// Open pass state.
	encoder    hal.CommandEncoder
	pass       hal.RenderPassEncoder
	bindGroups []hal.BindGroup
	clear      *gputypes.Color
	depthWrite bool

	stats Stats
}

// Stats counts GPU work since the backend was created.
type Stats struct {
	Passes      int
	Submits     int
	Draws       int
	Pipelines   int
	Textures    int
	BindGroups  int
	UploadBytes uint64
}

var _ backend.Target = (*Backend)(nil)

func newBackend(device hal.Device, queue hal.Queue, width, height int) (*Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", backend.ErrInvalidSize, width, height)
	}
	b := &Backend{
		device:     device,
		queue:      queue,
		width:      uint32(width),
		height:     uint32(height),
		textures:   make(map[gsdirect.TextureHandle]*texture),
		depthWrite: true,
		clear:      &gputypes.Color{},
	}
	b.pipelines = cache.New[pipelineKey, hal.RenderPipeline](maxPipelines)
	b.pipelines.OnEvict(func(_ pipelineKey, p hal.RenderPipeline) {
		b.retired = append(b.retired, p)
	})

	if err := b.createPipelineObjects(); err != nil {
		b.destroy()
		return nil, err
	}
	if err := b.createTarget(); err != nil {
		b.destroy()
		return nil, err
	}
	if err := b.createSamplers(); err != nil {
		b.destroy()
		return nil, err
	}
	uniforms, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gs_uniforms",
		Size:  uniformSlot * maxDrawsPerPass,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	b.uniformBuf = uniforms

	white, err := b.createTexture("gs_white", 1, 1, []byte{0xff, 0xff, 0xff, 0xff})
	if err != nil {
		b.destroy()
		return nil, err
	}
	b.white = white
	return b, nil
}

// Name returns "wgpu".
func (b *Backend) Name() string { return backend.BackendWGPU }

// Info returns the GPU in use, or nil if it is unknown.
func (b *Backend) Info() *GPUInfo { return b.info }

// Stats returns the work counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// createTarget creates the color and depth attachments.
func (b *Backend) createTarget() error {
	size := hal.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1}

	colorTex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gs_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color target: %w", err)
	}
	b.colorTex = colorTex
	colorView, err := b.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "gs_color_view",
	})
	if err != nil {
		return fmt.Errorf("create color view: %w", err)
	}
	b.colorView = colorView

	depthTex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gs_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth target: %w", err)
	}
	b.depthTex = depthTex
	depthView, err := b.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "gs_depth_view",
	})
	if err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}
	b.depthView = depthView
	return nil
}

// Close waits for the GPU and releases all resources.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if err := b.endPass(); err != nil {
		gsdirect.Logger().Warn("wgpu: final submit failed", "err", err)
	}
	b.destroy()
	b.closed = true
}

// destroy releases resources in reverse creation order.
func (b *Backend) destroy() {
	if b.device == nil {
		return
	}
	if err := b.device.WaitIdle(); err != nil {
		gsdirect.Logger().Warn("wgpu: wait idle failed", "err", err)
	}
	b.releasePassResources()

	for h, t := range b.textures {
		t.destroy(b.device)
		delete(b.textures, h)
	}
	if b.white != nil {
		b.white.destroy(b.device)
		b.white = nil
	}
	for i, s := range b.samplers {
		if s != nil {
			b.device.DestroySampler(s)
			b.samplers[i] = nil
		}
	}
	for _, buf := range []hal.Buffer{b.uniformBuf, b.indexBuf, b.vertexBuf} {
		if buf != nil {
			b.device.DestroyBuffer(buf)
		}
	}
	b.uniformBuf, b.indexBuf, b.vertexBuf = nil, nil, nil
	b.vertexCap, b.indexCap = 0, 0

	if b.depthView != nil {
		b.device.DestroyTextureView(b.depthView)
		b.depthView = nil
	}
	if b.depthTex != nil {
		b.device.DestroyTexture(b.depthTex)
		b.depthTex = nil
	}
	if b.colorView != nil {
		b.device.DestroyTextureView(b.colorView)
		b.colorView = nil
	}
	if b.colorTex != nil {
		b.device.DestroyTexture(b.colorTex)
		b.colorTex = nil
	}

	b.destroyPipelineObjects()

	if b.ownsDevice {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
			b.instance = nil
		}
	}
	b.device = nil
	b.queue = nil
}
