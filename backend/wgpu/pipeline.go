//go:build !nogpu

package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gsdirect"
)

//go:embed shaders/gs.wgsl
var gsShaderSource string

// maxPipelines bounds the pipeline cache. Streams use a handful of blend
// and depth combinations, so eviction is rare.
const maxPipelines = 64

// Bind group layout: the uniforms, then one texture and one sampler per
// texture unit.
const (
	uniformBinding      = 0
	firstTextureBinding = 1
	firstSamplerBinding = firstTextureBinding + gsdirect.TextureUnits
)

// pipelineKey is the part of a PipelineConfig baked into a render
// pipeline. Blend constant, alpha test and fog are dynamic state.
type pipelineKey struct {
	blendEnabled bool
	blend        gputypes.BlendState
	writeMask    gputypes.ColorWriteMask
	depthCompare gputypes.CompareFunction
	depthWrite   bool
}

// keyFor returns the pipeline key of cfg with the pass-level depth write
// mask applied.
func keyFor(cfg gsdirect.PipelineConfig, depthWriteMask bool) pipelineKey {
	k := pipelineKey{
		blendEnabled: cfg.BlendEnabled,
		writeMask:    cfg.WriteMask,
		depthCompare: cfg.DepthCompare,
		depthWrite:   cfg.DepthWrite && depthWriteMask,
	}
	if cfg.BlendEnabled {
		k.blend = cfg.Blend
	}
	return k
}

// compileShader compiles WGSL source to SPIR-V words.
func compileShader(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// createPipelineObjects creates the shader module and layouts shared by
// every pipeline.
func (b *Backend) createPipelineObjects() error {
	source := hal.ShaderSource{WGSL: gsShaderSource}
	if spirv, err := compileShader(gsShaderSource); err == nil {
		source = hal.ShaderSource{SPIRV: spirv}
	} else {
		gsdirect.Logger().Warn("wgpu: passing WGSL to the driver", "err", err)
	}
	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gs_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("create gs shader: %w", err)
	}
	b.shader = shader

	entries := make([]gputypes.BindGroupLayoutEntry, 0, 1+2*gsdirect.TextureUnits)
	entries = append(entries, gputypes.BindGroupLayoutEntry{
		Binding:    uniformBinding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	})
	for i := 0; i < gsdirect.TextureUnits; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(firstTextureBinding + i),
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	for i := 0; i < gsdirect.TextureUnits; i++ {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(firstSamplerBinding + i),
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}
	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gs_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create gs bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gs_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create gs pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout
	return nil
}

// pipeline returns the cached pipeline for key, creating it on a miss.
func (b *Backend) pipeline(key pipelineKey) (hal.RenderPipeline, error) {
	return b.pipelines.GetOrCreate(key, func() (hal.RenderPipeline, error) {
		return b.createPipeline(key)
	})
}

func (b *Backend) createPipeline(key pipelineKey) (hal.RenderPipeline, error) {
	target := gputypes.ColorTargetState{
		Format:    colorFormat,
		WriteMask: key.writeMask,
	}
	if key.blendEnabled {
		blend := key.blend
		target.Blend = &blend
	}
	stripIndex := gputypes.IndexFormatUint32
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}

	p, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gs_pipeline",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Primitive: gputypes.PrimitiveState{
			Topology:         gputypes.PrimitiveTopologyTriangleStrip,
			StripIndexFormat: &stripIndex,
			CullMode:         gputypes.CullModeNone,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      key.depthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gs pipeline: %w", err)
	}
	b.stats.Pipelines++
	return p, nil
}

// destroyPipelineObjects releases pipelines, layouts and the shader in
// reverse creation order.
func (b *Backend) destroyPipelineObjects() {
	if b.pipelines != nil {
		b.pipelines.Clear()
	}
	b.destroyRetired()
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}

func (b *Backend) destroyRetired() {
	for _, p := range b.retired {
		b.device.DestroyRenderPipeline(p)
	}
	b.retired = b.retired[:0]
}

// vertexLayout returns the layout of a packed gsdirect.Vertex.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gsdirect.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 12, ShaderLocation: 1},  // rgba
				{Format: gputypes.VertexFormatFloat32x3, Offset: 16, ShaderLocation: 2}, // stq
				{Format: gputypes.VertexFormatUint8x4, Offset: 28, ShaderLocation: 3},   // unit, fog, flags
			},
		},
	}
}

// packVertices encodes vertices in the vertexLayout format, reusing dst.
func packVertices(dst []byte, vertices []gsdirect.Vertex) []byte {
	n := len(vertices) * gsdirect.VertexSize
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i := range vertices {
		v := &vertices[i]
		buf := dst[i*gsdirect.VertexSize : (i+1)*gsdirect.VertexSize]
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Pos[0]))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Pos[1]))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Pos[2]))
		copy(buf[12:16], v.RGBA[:])
		binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(v.STQ[0]))
		binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(v.STQ[1]))
		binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(v.STQ[2]))
		buf[28] = v.TexUnit
		buf[29] = v.Fog
		buf[30] = v.Flags
		buf[31] = 0
	}
	return dst
}

// packIndices encodes indices as little-endian uint32.
func packIndices(dst []byte, indices []uint32) []byte {
	n := len(indices) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(dst[i*4:], idx)
	}
	return dst
}
