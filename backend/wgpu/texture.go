//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
)

// ErrEmptyTexture is returned by CreateTexture for nil or empty images.
var ErrEmptyTexture = errors.New("wgpu: empty texture image")

type texture struct {
	tex  hal.Texture
	view hal.TextureView
	w, h uint32
}

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
	}
}

// createTexture creates a sampled RGBA8 texture and uploads tightly packed
// pixels into it.
func (b *Backend) createTexture(label string, w, h uint32, pix []byte) (*texture, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %s: %w", label, err)
	}
	t := &texture{tex: tex, view: view, w: w, h: h}

	err = b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{BytesPerRow: 4 * w, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.destroy(b.device)
		return nil, fmt.Errorf("upload texture %s: %w", label, err)
	}
	b.stats.UploadBytes += uint64(len(pix))
	return t, nil
}

// CreateTexture uploads img and returns its handle.
func (b *Backend) CreateTexture(img *image.RGBA) (gsdirect.TextureHandle, error) {
	if img == nil || img.Rect.Empty() {
		return 0, ErrEmptyTexture
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != 4*w || len(pix) != 4*w*h {
		pix = make([]byte, 4*w*h)
		for y := 0; y < h; y++ {
			off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			copy(pix[y*4*w:(y+1)*4*w], img.Pix[off:off+4*w])
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, backend.ErrClosed
	}
	b.next++
	h64 := b.next
	t, err := b.createTexture(fmt.Sprintf("gs_tex_%d", h64), uint32(w), uint32(h), pix)
	if err != nil {
		return 0, err
	}
	b.textures[h64] = t
	b.stats.Textures++
	return h64, nil
}

// DestroyTexture releases a texture. Draws already recorded that sample it
// are submitted first.
func (b *Backend) DestroyTexture(h gsdirect.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.textures[h]
	if !ok || b.closed {
		return
	}
	if b.pass != nil {
		if err := b.endPass(); err != nil {
			gsdirect.Logger().Warn("wgpu: submit before texture destroy failed", "err", err)
		}
	}
	delete(b.textures, h)
	t.destroy(b.device)
}

// samplerIndex maps the sampler state of a binding to b.samplers.
func samplerIndex(tb gsdirect.TextureBinding) int {
	i := 0
	if tb.Filter {
		i |= 1
	}
	if tb.ClampS {
		i |= 2
	}
	if tb.ClampT {
		i |= 4
	}
	return i
}

// createSamplers creates one sampler per filter and wrap combination.
func (b *Backend) createSamplers() error {
	for i := range b.samplers {
		filter := gputypes.FilterModeNearest
		if i&1 != 0 {
			filter = gputypes.FilterModeLinear
		}
		u, v := gputypes.AddressModeRepeat, gputypes.AddressModeRepeat
		if i&2 != 0 {
			u = gputypes.AddressModeClampToEdge
		}
		if i&4 != 0 {
			v = gputypes.AddressModeClampToEdge
		}
		s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        fmt.Sprintf("gs_sampler_%d", i),
			AddressModeU: u,
			AddressModeV: v,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    filter,
			MinFilter:    filter,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMinClamp:  0,
			LodMaxClamp:  32,
			Anisotropy:   1,
		})
		if err != nil {
			return fmt.Errorf("create sampler %d: %w", i, err)
		}
		b.samplers[i] = s
	}
	return nil
}
