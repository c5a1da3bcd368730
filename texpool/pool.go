// Package texpool maps GS texture base pointers to backend textures.
//
// A Pool is filled by loader goroutines while renderers look textures up,
// and evicts the least recently used textures once it holds more than its
// limit:
//
//	pool := texpool.New(512, backend)
//	go pool.Run(ctx, backend, requests)
//	rs := &gsdirect.RenderState{Backend: backend, Textures: pool}
package texpool

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/internal/cache"
)

// ErrNoImage is returned for a load request without pixels.
var ErrNoImage = errors.New("texpool: request has no image")

// Creator creates backend textures from RGBA images.
type Creator interface {
	CreateTexture(img *image.RGBA) (gsdirect.TextureHandle, error)
}

// Destroyer releases backend textures.
type Destroyer interface {
	DestroyTexture(h gsdirect.TextureHandle)
}

type key struct {
	tbp       uint32
	alternate bool
}

// Pool is a thread-safe texture pool. It implements gsdirect.TexturePool.
type Pool struct {
	entries     *cache.Cache[key, gsdirect.TextureHandle]
	placeholder atomic.Uint64
}

var _ gsdirect.TexturePool = (*Pool)(nil)

// New creates a pool holding up to limit textures (0 means unlimited).
// Evicted and replaced textures are passed to d, which may be nil.
func New(limit int, d Destroyer) *Pool {
	p := &Pool{entries: cache.New[key, gsdirect.TextureHandle](limit)}
	if d != nil {
		p.entries.OnEvict(func(k key, h gsdirect.TextureHandle) {
			gsdirect.Logger().Debug("texture evicted", "tbp", k.tbp, "alternate", k.alternate)
			d.DestroyTexture(h)
		})
	}
	return p
}

// Insert registers the texture stored at tbp.
func (p *Pool) Insert(tbp uint32, h gsdirect.TextureHandle) {
	p.entries.Set(key{tbp: tbp}, h)
}

// InsertAlternateFormat registers a PSMT4HH texture stored at tbp.
func (p *Pool) InsertAlternateFormat(tbp uint32, h gsdirect.TextureHandle) {
	p.entries.Set(key{tbp: tbp, alternate: true}, h)
}

// Remove unregisters both textures stored at tbp.
func (p *Pool) Remove(tbp uint32) {
	p.entries.Delete(key{tbp: tbp})
	p.entries.Delete(key{tbp: tbp, alternate: true})
}

// Lookup implements gsdirect.TexturePool.
func (p *Pool) Lookup(tbp uint32) (gsdirect.TextureHandle, bool) {
	return p.entries.Get(key{tbp: tbp})
}

// LookupAlternateFormat implements gsdirect.TexturePool.
func (p *Pool) LookupAlternateFormat(tbp uint32) (gsdirect.TextureHandle, bool) {
	return p.entries.Get(key{tbp: tbp, alternate: true})
}

// Placeholder implements gsdirect.TexturePool.
func (p *Pool) Placeholder() gsdirect.TextureHandle {
	return gsdirect.TextureHandle(p.placeholder.Load())
}

// SetPlaceholder sets the texture drawn for missing textures.
func (p *Pool) SetPlaceholder(h gsdirect.TextureHandle) {
	p.placeholder.Store(uint64(h))
}

// Len returns the number of resident textures.
func (p *Pool) Len() int { return p.entries.Len() }

// Stats returns lookup statistics.
func (p *Pool) Stats() cache.Stats { return p.entries.Stats() }

// Request asks a loader to create and register a texture.
type Request struct {
	TBP             uint32
	AlternateFormat bool
	Image           *image.RGBA
}

// Load creates the texture for one request and registers it.
func (p *Pool) Load(c Creator, req Request) error {
	if req.Image == nil {
		return fmt.Errorf("tbp %#x: %w", req.TBP, ErrNoImage)
	}
	h, err := c.CreateTexture(req.Image)
	if err != nil {
		return fmt.Errorf("texpool: tbp %#x: %w", req.TBP, err)
	}
	if req.AlternateFormat {
		p.InsertAlternateFormat(req.TBP, h)
	} else {
		p.Insert(req.TBP, h)
	}
	return nil
}

// Run loads requests until the channel is closed or ctx is done. Failed
// loads are logged and skipped; the texture stays missing.
func (p *Pool) Run(ctx context.Context, c Creator, requests <-chan Request) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-requests:
			if !ok {
				return nil
			}
			if err := p.Load(c, req); err != nil {
				gsdirect.Logger().Warn("texture load failed", "err", err)
			}
		}
	}
}
