//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
)

const (
	// uniformSlot is the stride of per-draw uniforms, the minimum uniform
	// buffer offset alignment.
	uniformSlot = 256
	// uniformSize is the size of the Uniforms struct in gs.wgsl.
	uniformSize = 48
	// maxDrawsPerPass is the number of uniform slots. A pass that runs out
	// is submitted and a new one begun.
	maxDrawsPerPass = 256
)

// Upload replaces the vertex and index buffers. Draws recorded against the
// previous buffers are submitted first.
func (b *Backend) Upload(vertices []gsdirect.Vertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return backend.ErrClosed
	}
	if err := b.endPass(); err != nil {
		return err
	}

	b.staging = packVertices(b.staging, vertices)
	if err := b.writeGeometry(&b.vertexBuf, &b.vertexCap, "gs_vertices", gputypes.BufferUsageVertex, b.staging); err != nil {
		return err
	}
	b.staging = packIndices(b.staging, indices)
	if err := b.writeGeometry(&b.indexBuf, &b.indexCap, "gs_indices", gputypes.BufferUsageIndex, b.staging); err != nil {
		return err
	}
	b.indexCount = len(indices)
	return nil
}

// writeGeometry writes data into *buf, growing it to the next power of two
// when it is too small.
func (b *Backend) writeGeometry(buf *hal.Buffer, capacity *uint64, label string, usage gputypes.BufferUsage, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	size := uint64(len(data))
	if *buf == nil || *capacity < size {
		if *buf != nil {
			b.device.DestroyBuffer(*buf)
			*buf = nil
		}
		newCap := uint64(4096)
		for newCap < size {
			newCap *= 2
		}
		nb, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label,
			Size:  newCap,
			Usage: usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			*capacity = 0
			return fmt.Errorf("create %s buffer: %w", label, err)
		}
		*buf = nb
		*capacity = newCap
	}
	if err := b.queue.WriteBuffer(*buf, 0, data); err != nil {
		return fmt.Errorf("write %s: %w", label, err)
	}
	b.stats.UploadBytes += size
	return nil
}

// IssueDraw records one draw into the open render pass.
func (b *Backend) IssueDraw(call gsdirect.DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return backend.ErrClosed
	}
	if call.IndexCount == 0 {
		return nil
	}
	if call.StartIndex < 0 || call.IndexCount < 0 || call.StartIndex+call.IndexCount > b.indexCount {
		return fmt.Errorf("wgpu: draw [%d,+%d) outside %d uploaded indices", call.StartIndex, call.IndexCount, b.indexCount)
	}
	if len(b.bindGroups) == maxDrawsPerPass {
		if err := b.endPass(); err != nil {
			return err
		}
	}
	if err := b.ensurePass(); err != nil {
		return err
	}

	cfg := call.Pipeline
	pipeline, err := b.pipeline(keyFor(cfg, b.depthWrite))
	if err != nil {
		return err
	}

	slot := uint64(len(b.bindGroups)) * uniformSlot
	if err := b.queue.WriteBuffer(b.uniformBuf, slot, uniformBytes(cfg)); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}
	group, err := b.bindGroup(slot, call.Textures)
	if err != nil {
		return err
	}
	b.bindGroups = append(b.bindGroups, group)

	b.pass.SetPipeline(pipeline)
	b.pass.SetBindGroup(0, group, nil)
	if cfg.UsesConstant() {
		k := float64(cfg.BlendConstant)
		b.pass.SetBlendConstant(&gputypes.Color{R: k, G: k, B: k, A: k})
	}
	b.pass.SetVertexBuffer(0, b.vertexBuf, 0)
	b.pass.SetIndexBuffer(b.indexBuf, gputypes.IndexFormatUint32, 0)
	b.pass.DrawIndexed(uint32(call.IndexCount), 1, uint32(call.StartIndex), 0, 0)
	b.stats.Draws++
	return nil
}

// uniformBytes encodes the Uniforms struct of gs.wgsl for cfg.
func uniformBytes(cfg gsdirect.PipelineConfig) []byte {
	u := [12]float32{
		backend.ScreenCenter - backend.ScreenWidth/2,
		backend.ScreenCenter - backend.ScreenHeight/2,
		backend.ScreenWidth,
		backend.ScreenHeight,
		float32(cfg.FogColor[0]) / 255,
		float32(cfg.FogColor[1]) / 255,
		float32(cfg.FogColor[2]) / 255,
		1,
		cfg.AlphaMin,
		cfg.AlphaMax,
		boolFloat(cfg.AlphaTest),
		boolFloat(cfg.Fog),
	}
	buf := make([]byte, uniformSize)
	for i, f := range u {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func boolFloat(v bool) float32 {
	if v {
		return 1
	}
	return 0
}

// bindGroup binds the uniform slot and the texture units of one draw.
// Units without a live texture sample the white texture.
func (b *Backend) bindGroup(slot uint64, bindings []gsdirect.TextureBinding) (hal.BindGroup, error) {
	var views [gsdirect.TextureUnits]*texture
	var samplers [gsdirect.TextureUnits]hal.Sampler
	for i := range views {
		views[i] = b.white
		samplers[i] = b.samplers[samplerIndex(gsdirect.TextureBinding{})]
	}
	for _, tb := range bindings {
		if tb.Unit < 0 || tb.Unit >= gsdirect.TextureUnits {
			continue
		}
		if t, ok := b.textures[tb.Texture]; ok {
			views[tb.Unit] = t
		}
		samplers[tb.Unit] = b.samplers[samplerIndex(tb)]
	}

	entries := make([]gputypes.BindGroupEntry, 0, 1+2*gsdirect.TextureUnits)
	entries = append(entries, gputypes.BindGroupEntry{
		Binding: uniformBinding,
		Resource: gputypes.BufferBinding{
			Buffer: b.uniformBuf.NativeHandle(),
			Offset: slot,
			Size:   uniformSize,
		},
	})
	for i, t := range views {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(firstTextureBinding + i),
			Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
		})
	}
	for i, s := range samplers {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(firstSamplerBinding + i),
			Resource: gputypes.SamplerBinding{Sampler: s.NativeHandle()},
		})
	}

	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gs_draw",
		Layout:  b.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	b.stats.BindGroups++
	return group, nil
}

// SetDepthWrite sets the pass-level depth write mask.
func (b *Backend) SetDepthWrite(enabled bool) {
	b.mu.Lock()
	b.depthWrite = enabled
	b.mu.Unlock()
}

// Clear fills the frame with c and resets depth when the next pass begins.
func (b *Backend) Clear(c color.RGBA) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if err := b.endPass(); err != nil {
		gsdirect.Logger().Warn("wgpu: submit before clear failed", "err", err)
	}
	b.clear = &gputypes.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// ensurePass begins a render pass if none is open. A pending clear is
// applied as the load operation.
func (b *Backend) ensurePass() error {
	if b.pass != nil {
		return nil
	}
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gs_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gs_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	colorLoad, depthLoad := gputypes.LoadOpLoad, gputypes.LoadOpLoad
	clearValue := gputypes.Color{}
	if b.clear != nil {
		colorLoad, depthLoad = gputypes.LoadOpClear, gputypes.LoadOpClear
		clearValue = *b.clear
		b.clear = nil
	}

	b.encoder = encoder
	b.pass = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "gs_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       b.colorView,
				LoadOp:     colorLoad,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearValue,
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 0,
		},
	})
	b.pass.SetViewport(0, 0, float32(b.width), float32(b.height), 0, 1)
	b.stats.Passes++
	return nil
}

// endPass ends the open render pass, submits it and waits for the GPU, then
// releases the bind groups and retired pipelines it used.
func (b *Backend) endPass() error {
	if b.pass == nil {
		return nil
	}
	b.pass.End()
	b.pass = nil
	encoder := b.encoder
	b.encoder = nil

	cmd, err := encoder.EndEncoding()
	if err != nil {
		b.releasePassResources()
		return fmt.Errorf("end encoding: %w", err)
	}
	err = b.submit(cmd)
	b.releasePassResources()
	return err
}

// submit submits cmd, waits for it to complete and frees it.
func (b *Backend) submit(cmd hal.CommandBuffer) error {
	defer b.device.FreeCommandBuffer(cmd)
	if _, err := b.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	b.stats.Submits++
	if err := b.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

// releasePassResources destroys per-pass objects. The GPU must be idle.
func (b *Backend) releasePassResources() {
	if b.pass != nil {
		b.pass.End()
		b.pass = nil
	}
	if b.encoder != nil {
		b.encoder.DiscardEncoding()
		b.encoder = nil
	}
	for _, g := range b.bindGroups {
		b.device.DestroyBindGroup(g)
	}
	b.bindGroups = b.bindGroups[:0]
	b.destroyRetired()
}
