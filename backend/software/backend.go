package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
	"github.com/gogpu/gsdirect/internal/parallel"
)

func init() {
	backend.Register(backend.BackendSoftware, func(width, height int) (backend.Target, error) {
		return NewParallel(width, height, 0), nil
	})
}

// ErrInvalidDraw is returned when a draw call reaches outside the uploaded
// index buffer.
var ErrInvalidDraw = errors.New("software: draw outside uploaded indices")

// Backend is a CPU rasterizer for the renderers' draw calls.
//
// Draws are rasterized immediately. Texture creation is safe for
// concurrent use with drawing; everything else must be called from the
// render goroutine.
type Backend struct {
	width, height int
	color         *image.RGBA
	depth         []float32

	vertices []gsdirect.Vertex
	indices  []uint32

	depthWrite bool
	closed     bool

	mu       sync.RWMutex
	textures map[gsdirect.TextureHandle]*image.RGBA
	next     gsdirect.TextureHandle

	pool      *parallel.Pool
	triangles []setupTriangle
	covered   []int

	stats Stats
}

// Stats counts the work done since the last Clear.
type Stats struct {
	Draws     int
	Triangles int
	Fragments int
}

var _ backend.Target = (*Backend)(nil)

// New creates a backend rendering into a width x height frame cleared to
// transparent black. Draws are rasterized on the calling goroutine.
func New(width, height int) *Backend {
	b := &Backend{
		width:      width,
		height:     height,
		color:      image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:      make([]float32, width*height),
		depthWrite: true,
		textures:   make(map[gsdirect.TextureHandle]*image.RGBA),
	}
	return b
}

// NewParallel is like New but splits every draw into row bands rasterized
// by workers goroutines (GOMAXPROCS when workers is 0). The output is
// identical to New's. Close stops the workers.
func NewParallel(width, height, workers int) *Backend {
	b := New(width, height)
	b.pool = parallel.New(workers)
	return b
}

// Name returns "software".
func (b *Backend) Name() string { return backend.BackendSoftware }

// Stats returns the counters since the last Clear.
func (b *Backend) Stats() Stats { return b.stats }

// Clear fills the frame with c and resets depth to the farthest value.
func (b *Backend) Clear(c color.RGBA) {
	pix := b.color.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
	clear(b.depth)
	b.stats = Stats{}
}

// Upload replaces the vertex and index buffers used by the following draws.
func (b *Backend) Upload(vertices []gsdirect.Vertex, indices []uint32) error {
	if b.closed {
		return backend.ErrClosed
	}
	b.vertices = append(b.vertices[:0], vertices...)
	b.indices = append(b.indices[:0], indices...)
	return nil
}

// SetDepthWrite sets the pass-level depth write mask.
func (b *Backend) SetDepthWrite(enabled bool) { b.depthWrite = enabled }

// IssueDraw rasterizes the triangle strips of call.
func (b *Backend) IssueDraw(call gsdirect.DrawCall) error {
	if b.closed {
		return backend.ErrClosed
	}
	end := call.StartIndex + call.IndexCount
	if call.StartIndex < 0 || call.IndexCount < 0 || end > len(b.indices) {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidDraw, call.StartIndex, end, len(b.indices))
	}

	st := b.newDrawState(call)
	b.stats.Draws++

	b.triangles = b.triangles[:0]
	var (
		strip [2]uint32
		n     int
	)
	for _, idx := range b.indices[call.StartIndex:end] {
		if idx == gsdirect.RestartIndex {
			n = 0
			continue
		}
		if int(idx) >= len(b.vertices) {
			return fmt.Errorf("%w: vertex %d of %d", ErrInvalidDraw, idx, len(b.vertices))
		}
		if n >= 2 {
			if t, ok := b.setup(&b.vertices[strip[0]], &b.vertices[strip[1]], &b.vertices[idx]); ok {
				b.triangles = append(b.triangles, t)
			}
		}
		strip[0], strip[1] = strip[1], idx
		n++
	}
	b.stats.Triangles += len(b.triangles)
	b.stats.Fragments += b.rasterizeAll(st)
	return nil
}

// rasterizeAll rasterizes the collected triangles in submission order and
// returns the covered pixel count. With a pool, each band walks every
// triangle for its own rows, so per-pixel ordering is unchanged.
func (b *Backend) rasterizeAll(st *drawState) int {
	if len(b.triangles) == 0 {
		return 0
	}
	if b.pool == nil {
		covered := 0
		for i := range b.triangles {
			covered += b.rasterize(st, &b.triangles[i], 0, b.height)
		}
		return covered
	}

	if n := b.pool.Workers(); len(b.covered) < n {
		b.covered = make([]int, n)
	}
	clear(b.covered)
	b.pool.Bands(b.height, func(band, y0, y1 int) {
		covered := 0
		for i := range b.triangles {
			covered += b.rasterize(st, &b.triangles[i], y0, y1)
		}
		b.covered[band] = covered
	})
	total := 0
	for _, c := range b.covered {
		total += c
	}
	return total
}

// CreateTexture stores a copy of img and returns its handle.
func (b *Backend) CreateTexture(img *image.RGBA) (gsdirect.TextureHandle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("software: create texture: empty image")
	}
	r := img.Bounds()
	cp := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		copy(cp.Pix[y*cp.Stride:y*cp.Stride+4*r.Dx()], img.Pix[img.PixOffset(r.Min.X, r.Min.Y+y):])
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.textures[b.next] = cp
	return b.next, nil
}

// DestroyTexture releases a texture. Unknown handles are ignored.
func (b *Backend) DestroyTexture(h gsdirect.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, h)
}

func (b *Backend) texture(h gsdirect.TextureHandle) *image.RGBA {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.textures[h]
}

// Frame returns a copy of the frame.
func (b *Backend) Frame() (*image.RGBA, error) {
	if b.closed {
		return nil, backend.ErrClosed
	}
	img := image.NewRGBA(b.color.Rect)
	copy(img.Pix, b.color.Pix)
	return img, nil
}

// DepthAt returns the stored depth of a pixel in [0, 1].
func (b *Backend) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0
	}
	return b.depth[y*b.width+x]
}

// Close releases the frame and all textures.
func (b *Backend) Close() {
	b.mu.Lock()
	b.textures = make(map[gsdirect.TextureHandle]*image.RGBA)
	b.mu.Unlock()
	b.vertices, b.indices = nil, nil
	b.triangles = nil
	if b.pool != nil {
		b.pool.Close()
	}
	b.closed = true
}
