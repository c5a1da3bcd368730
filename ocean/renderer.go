package ocean

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/gs"
	"github.com/gogpu/gsdirect/internal/arena"
)

var (
	// ErrVertexOverflow is returned when a bucket runs out of space.
	ErrVertexOverflow = errors.New("ocean: vertex buffer overflow")

	// ErrWrongPass is returned when a kick does not match the pass the
	// renderer was initialized for.
	ErrWrongPass = errors.New("ocean: kick for wrong pass")

	// ErrUnsupportedClamp is returned when an ADGIF clamps only one of S
	// and T.
	ErrUnsupportedClamp = errors.New("ocean: unsupported clamp mode")

	// ErrUnsupportedFilter is returned when an ADGIF disables magnification
	// filtering.
	ErrUnsupportedFilter = errors.New("ocean: unsupported texture filter")

	// ErrTextureChange is returned when a bucket that already holds
	// vertices is set up with a different texture.
	ErrTextureChange = errors.New("ocean: bucket texture changed before flush")
)

// Pass identifies the ocean pass a renderer is currently interpreting.
type Pass int

// Passes.
const (
	PassNone Pass = iota
	PassNear
	PassMid
)

func (p Pass) String() string {
	switch p {
	case PassNear:
		return "near"
	case PassMid:
		return "mid"
	}
	return "none"
}

// Default bucket sizes.
const (
	DefaultMaxVertices = 4096
	DefaultMaxIndices  = 4 * DefaultMaxVertices
)

type options struct {
	maxVertices int
	maxIndices  int
}

// Option configures a Renderer.
type Option func(*options)

// WithCapacity sets the vertex and index capacity of each bucket. Values
// below one keep the default.
func WithCapacity(vertices, indices int) Option {
	return func(o *options) {
		if vertices > 0 {
			o.maxVertices = vertices
		}
		if indices > 0 {
			o.maxIndices = indices
		}
	}
}

// Stats counts work done since the last Init.
type Stats struct {
	Kicks     int
	Vertices  [bucketCount]int
	DrawCalls int
}

// Renderer interprets ocean packets into three buckets.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	opts    options
	pass    Pass
	buckets [bucketCount]bucket
	current Bucket
	stats   Stats

	rgba [4]uint8
	st   [3]float32
	asm  assembly
}

// New creates a renderer. All buckets are allocated here.
func New(opts ...Option) *Renderer {
	o := options{maxVertices: DefaultMaxVertices, maxIndices: DefaultMaxIndices}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{opts: o}
	for i := range r.buckets {
		r.buckets[i].vertices = arena.New[gsdirect.Vertex](o.maxVertices)
		r.buckets[i].indices = arena.New[uint32](o.maxIndices)
	}
	return r
}

// Pass returns the pass the renderer was last initialized for.
func (r *Renderer) Pass() Pass { return r.pass }

// Stats returns the counters accumulated since the last Init.
func (r *Renderer) Stats() Stats { return r.stats }

// Bucket returns the vertices and indices buffered in b. The slices alias
// the renderer's buffers and are valid until the next flush or Init.
func (r *Renderer) Bucket(b Bucket) ([]gsdirect.Vertex, []uint32) {
	return r.buckets[b].vertices.Slice(), r.buckets[b].indices.Slice()
}

// InitForNear discards buffered geometry and prepares for near kicks.
func (r *Renderer) InitForNear() { r.init(PassNear) }

// InitForMid discards buffered geometry and prepares for mid kicks.
func (r *Renderer) InitForMid() { r.init(PassMid) }

func (r *Renderer) init(p Pass) {
	for i := range r.buckets {
		r.buckets[i].reset()
	}
	r.pass = p
	r.current = BucketRGBTexture
	r.rgba = [4]uint8{0x80, 0x80, 0x80, 0x80}
	r.st = [3]float32{0, 0, 1}
	r.stats = Stats{}
}

// KickFromNear interprets one near pass packet and returns the number of
// bytes consumed, up to and including the data of the EOP tag.
func (r *Renderer) KickFromNear(data []byte) (int, error) { return r.kick(PassNear, data) }

// KickFromMid interprets one mid pass packet.
func (r *Renderer) KickFromMid(data []byte) (int, error) { return r.kick(PassMid, data) }

func (r *Renderer) kick(p Pass, data []byte) (int, error) {
	if r.pass != p {
		return 0, r.packetError(0, fmt.Errorf("%v kick during %v pass: %w", p, r.pass, ErrWrongPass))
	}
	r.stats.Kicks++
	off := 0
	for {
		tag, err := gs.ParseTag(data[off:])
		if err != nil {
			return off, r.packetError(off, err)
		}
		tagOff := off
		off += gs.TagSize
		if need := tag.DataSize(); len(data)-off < need {
			return tagOff, r.packetError(tagOff, fmt.Errorf("%v: needs %d data bytes, have %d: %w",
				tag, need, len(data)-off, gs.ErrShortPacket))
		}

		switch {
		case tag.Format() != gs.FormatPacked:
			return tagOff, r.packetError(tagOff, fmt.Errorf("%v: %w", tag.Format(), gs.ErrUnsupportedFormat))
		case tag.NReg() == 1 && tag.Reg(0) == gs.RegAD:
			var s adgif
			for loop := 0; loop < tag.NLoop(); loop++ {
				b := data[off : off+16]
				if err := s.write(gs.Address(b[8]), binary.LittleEndian.Uint64(b[0:8])); err != nil {
					return off, r.packetError(off, err)
				}
				off += 16
			}
			if err := r.selectBucket(&s); err != nil {
				return tagOff, r.packetError(tagOff, err)
			}
		case isVertexTag(tag):
			if err := r.startPrim(tag.Prim()); err != nil {
				return tagOff, r.packetError(tagOff, err)
			}
			for loop := 0; loop < tag.NLoop(); loop++ {
				if err := r.vertex(data[off : off+48]); err != nil {
					return off, r.packetError(off, err)
				}
				off += 48
			}
		default:
			return tagOff, r.packetError(tagOff, fmt.Errorf("%v: %w", tag, gsdirect.ErrUnsupportedRegister))
		}

		if tag.EOP() {
			return off, nil
		}
	}
}

func (r *Renderer) packetError(off int, err error) error {
	return &gsdirect.PacketError{Renderer: "ocean-" + r.pass.String(), Offset: off, Err: err}
}

func isVertexTag(t gs.Tag) bool {
	return t.Pre() && t.NReg() == 3 &&
		t.Reg(0) == gs.RegST && t.Reg(1) == gs.RegRGBAQ && t.Reg(2) == gs.RegXYZF2
}

// adgif collects the register writes of one A+D block. Writes that pick a
// bucket are applied in order, so the last one wins:
//
//   - TEX0 with TCC off selects the RGB texture bucket
//   - FRAME_1 with a nonzero FBMSK selects the alpha bucket
//   - CLAMP_1 clamping S and T selects the env map bucket
//
// A block that writes TEX0 but selects nothing else draws into the RGB
// texture bucket; a block without TEX0 keeps the current bucket.
type adgif struct {
	tex0     gs.Tex0
	hasTex0  bool
	clamp    bool
	hasClamp bool
	frame    uint32
	hasFrame bool
	alpha    gs.Alpha
	hasAlpha bool

	sel      Bucket
	selected bool
}

func (s *adgif) choose(b Bucket) {
	s.sel, s.selected = b, true
}

func (s *adgif) write(addr gs.Address, value uint64) error {
	switch addr {
	case gs.AddrTex0_1:
		t := gs.Tex0(value)
		if t.TFX() != gs.TexModulate {
			return fmt.Errorf("tfx=%v: %w", t.TFX(), gsdirect.ErrUnsupportedTextureFunction)
		}
		s.tex0, s.hasTex0 = t, true
		if !t.TCC() {
			s.choose(BucketRGBTexture)
		}
	case gs.AddrTex1_1:
		if !gs.Tex1(value).MMAG() {
			return fmt.Errorf("mmag off: %w", ErrUnsupportedFilter)
		}
	case gs.AddrClamp1:
		c := gs.Clamp(value)
		if c.ClampS() != c.ClampT() {
			return fmt.Errorf("s=%t t=%t: %w", c.ClampS(), c.ClampT(), ErrUnsupportedClamp)
		}
		s.clamp, s.hasClamp = c.ClampS(), true
		if c.ClampS() {
			s.choose(BucketEnvMap)
		}
	case gs.AddrFrame1:
		s.frame, s.hasFrame = gs.Frame(value).FBMSK(), true
		if s.frame != 0 {
			s.choose(BucketAlpha)
		}
	case gs.AddrAlpha1:
		s.alpha, s.hasAlpha = gs.Alpha(value), true
	case gs.AddrMipTBP1_1, gs.AddrMipTBP2_1, gs.AddrTest1, gs.AddrZbuf1,
		gs.AddrTexFlush, gs.AddrPabe, gs.AddrFogCol:
	default:
		return fmt.Errorf("%v = %#x: %w", addr, value, gsdirect.ErrUnsupportedAddress)
	}
	return nil
}

// selectBucket makes the bucket chosen by an A+D block current and applies
// the block's texture, clamp, frame mask and blend writes to it.
func (r *Renderer) selectBucket(s *adgif) error {
	sel := r.current
	if s.hasTex0 {
		sel = BucketRGBTexture
	}
	if s.selected {
		sel = s.sel
	}
	b := &r.buckets[sel]

	if s.hasTex0 {
		tbp := s.tex0.TBP0()
		alternate := s.tex0.PSM() == gs.PSMT4HH
		if b.textured && (tbp != b.tbp || alternate != b.alternate) && b.vertices.Len() != 0 {
			return fmt.Errorf("%v: tbp %#x -> %#x: %w", sel, b.tbp, tbp, ErrTextureChange)
		}
		b.tbp, b.alternate, b.textured = tbp, alternate, true
		b.mode.SetTCC(s.tex0.TCC())
		b.mode.SetFilter(true)
	}
	if s.hasClamp {
		b.mode.SetClampS(s.clamp)
		b.mode.SetClampT(s.clamp)
	}
	if s.hasFrame {
		b.frameMask = s.frame
	}
	if s.hasAlpha {
		blend, ok := gs.DecodeAlphaBlend(s.alpha)
		if ok {
			b.mode.SetAlphaBlend(blend)
			b.fix = s.alpha.Fix()
		} else {
			gsdirect.Logger().Warn("unsupported blend selectors in ocean",
				"bucket", sel, "a", s.alpha.A(), "b", s.alpha.B(), "c", s.alpha.C(), "d", s.alpha.D())
		}
	}
	r.current = sel
	return nil
}

func (r *Renderer) startPrim(p gs.Prim) error {
	kind := p.Kind()
	if (kind != gs.PrimTriangleStrip && kind != gs.PrimTriangleFan) || !p.TME() {
		return fmt.Errorf("%v: %w", p, gsdirect.ErrUnsupportedPrim)
	}
	b := &r.buckets[r.current]
	b.mode.SetAlphaBlendEnable(p.ABE())
	b.mode.SetFog(p.FGE())
	r.asm = assembly{fan: kind == gs.PrimTriangleFan, first: true}
	return nil
}

// vertex consumes one ST, RGBAQ, XYZF2 triple.
func (r *Renderer) vertex(b []byte) error {
	r.st = [3]float32{f32(b[0:4]), f32(b[4:8]), f32(b[8:12])}
	r.rgba = [4]uint8{b[16], b[20], b[24], b[28]}
	xyz := b[32:48]
	upper := binary.LittleEndian.Uint64(xyz[8:16])

	bk := &r.buckets[r.current]
	if bk.vertices.Remaining() < 1 || bk.indices.Remaining() < indicesPerVertex {
		return fmt.Errorf("%v: %d vertices, %d indices: %w",
			r.current, bk.vertices.Len(), bk.indices.Len(), ErrVertexOverflow)
	}
	vidx := uint32(bk.vertices.Len())
	v := bk.vertices.Next()
	*v = gsdirect.Vertex{
		Pos: [3]float32{
			float32(binary.LittleEndian.Uint32(xyz[0:4])),
			float32(binary.LittleEndian.Uint32(xyz[4:8])),
			float32((upper >> 4) & 0xffffff),
		},
		RGBA:  r.rgba,
		STQ:   r.st,
		Fog:   uint8(upper >> 36),
		Flags: gsdirect.TextureFlags(bk.mode),
	}
	r.stats.Vertices[r.current]++

	skip := upper&(1<<47) != 0
	if r.asm.fan {
		r.asm.fanVertex(bk.indices, vidx, skip)
	} else {
		r.asm.stripVertex(bk.indices, vidx, skip)
	}
	return nil
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
