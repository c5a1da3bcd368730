package gsdirect

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gsdirect/gs"
	"github.com/gogpu/gsdirect/internal/arena"
	"github.com/gogpu/gsdirect/profiling"
)

// DirectRenderer interprets GIF packets that draw gouraud shaded, textured
// triangle strips and renders them through a Backend.
//
// Vertices accumulate in fixed-size buffers. A draw is opened by the first
// vertex after any state change; consecutive draws that differ only in
// texture are merged into one backend draw call at flush time. The buffers
// are flushed when they are close to full and on FlushPending.
//
// A DirectRenderer is not safe for concurrent use.
type DirectRenderer struct {
	opts  options
	state gsState
	stats Stats

	vertices *arena.Buffer[Vertex]
	indices  *arena.Buffer[uint32]
	draws    *arena.Buffer[draw]

	// textures is reused for the bindings of each flushed draw call.
	textures []TextureBinding
}

// Stats counts work done since the last ResetState.
type Stats struct {
	// Draws is the number of draws opened.
	Draws int
	// DrawCalls is the number of backend draw calls issued.
	DrawCalls int
	// MergedDraws is the number of draws folded into a previous draw call.
	MergedDraws int
	// Flushes is the number of buffer uploads.
	Flushes int
	// Vertices and Indices are the totals uploaded.
	Vertices int
	Indices  int
}

// New creates a renderer. All buffers are allocated here.
func New(opts ...Option) *DirectRenderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := &DirectRenderer{
		opts:     o,
		vertices: arena.New[Vertex](o.maxVertices),
		indices:  arena.New[uint32](o.maxIndices),
		draws:    arena.New[draw](o.maxDraws),
		textures: make([]TextureBinding, 0, TextureUnits),
	}
	r.state.reset()
	r.resetBuffers()
	return r
}

// NewLightningRenderer creates a renderer for the lightning effect, whose
// microcode writes XYZF2 positions as floats.
func NewLightningRenderer(opts ...Option) *DirectRenderer {
	base := []Option{
		WithName("lightning"),
		WithFloatPositions(),
		WithCapacity(4096, 4*4096, 128),
	}
	return New(append(base, opts...)...)
}

// Name returns the renderer name.
func (r *DirectRenderer) Name() string { return r.opts.name }

// Capacity returns the number of vertices that fit before a flush.
func (r *DirectRenderer) Capacity() int {
	v := r.vertices.Cap() - r.opts.headroom
	if i := r.indices.Cap()/4 - r.opts.headroom; i < v {
		v = i
	}
	return v
}

// Stats returns the counters accumulated since the last ResetState.
func (r *DirectRenderer) Stats() Stats { return r.stats }

// ResetState returns all GS state to the defaults and discards buffered
// geometry. Call it at the start of a frame and after Render fails.
func (r *DirectRenderer) ResetState() {
	if r.draws.Len() != 0 {
		Logger().Warn("reset with pending draws", "renderer", r.opts.name, "draws", r.draws.Len())
	}
	r.state.reset()
	r.stats = Stats{}
	r.resetBuffers()
}

func (r *DirectRenderer) resetBuffers() {
	r.vertices.Reset()
	r.indices.Reset()
	r.draws.Reset()
	r.state.nextVertexStartsStrip = true
	r.state.drawOpen = false
	r.state.stripLen = 0
}

// Render interprets one GIF packet starting at data[0] and returns the
// number of bytes consumed, up to and including the data of the EOP tag.
//
// Geometry may stay buffered after Render returns; call FlushPending to
// draw it. On error the pass is broken and the caller should ResetState.
func (r *DirectRenderer) Render(data []byte, rs *RenderState, prof *profiling.Node) (int, error) {
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

		switch tag.Format() {
		case gs.FormatPacked:
			if tag.Pre() {
				if err := r.handlePrim(tag.Prim()); err != nil {
					return tagOff, r.packetError(tagOff, err)
				}
			}
			for loop := 0; loop < tag.NLoop(); loop++ {
				for reg := 0; reg < tag.NReg(); reg++ {
					if err := r.packed(tag.Reg(reg), data[off:off+16], rs, prof); err != nil {
						return off, r.packetError(off, err)
					}
					off += 16
				}
			}
		case gs.FormatRegList:
			for loop := 0; loop < tag.NLoop(); loop++ {
				for reg := 0; reg < tag.NReg(); reg++ {
					v := binary.LittleEndian.Uint64(data[off : off+8])
					if err := r.regList(tag.Reg(reg), v, rs, prof); err != nil {
						return off, r.packetError(off, err)
					}
					off += 8
				}
			}
		}

		if tag.EOP() {
			return off, nil
		}
	}
}

func (r *DirectRenderer) packetError(off int, err error) error {
	return &PacketError{Renderer: r.opts.name, Offset: off, Err: err}
}

// packed dispatches one 16-byte PACKED block.
func (r *DirectRenderer) packed(reg gs.RegisterDescriptor, b []byte, rs *RenderState, prof *profiling.Node) error {
	switch reg {
	case gs.RegAD:
		value := binary.LittleEndian.Uint64(b[0:8])
		return r.handleAD(gs.Address(b[8]), value)
	case gs.RegST:
		r.state.st = [3]float32{f32(b[0:4]), f32(b[4:8]), f32(b[8:12])}
	case gs.RegRGBAQ:
		r.state.rgba = [4]uint8{b[0], b[4], b[8], b[12]}
	case gs.RegXYZF2:
		upper := binary.LittleEndian.Uint64(b[8:16])
		var pos [3]float32
		if r.opts.floatPositions {
			pos = [3]float32{f32(b[0:4]) * 16, f32(b[4:8]) * 16, f32(b[8:12])}
		} else {
			pos = [3]float32{
				float32(binary.LittleEndian.Uint32(b[0:4])),
				float32(binary.LittleEndian.Uint32(b[4:8])),
				float32((upper >> 4) & 0xffffff),
			}
		}
		return r.vertex(pos, uint8(upper>>36), upper&(1<<47) == 0, rs, prof)
	default:
		return fmt.Errorf("%v in PACKED: %w", reg, ErrUnsupportedRegister)
	}
	return nil
}

// regList dispatches one 64-bit REGLIST block.
func (r *DirectRenderer) regList(reg gs.RegisterDescriptor, v uint64, rs *RenderState, prof *profiling.Node) error {
	switch reg {
	case gs.RegPrim:
		return r.handlePrim(gs.Prim(v))
	case gs.RegRGBAQ:
		c := gs.RGBAQ(v)
		r.state.rgba = c.RGBA()
		r.state.st[2] = c.Q()
	case gs.RegST:
		st := gs.ST(v)
		r.state.st[0], r.state.st[1] = st.S(), st.T()
	case gs.RegXYZF2:
		p := gs.XYZF(v)
		pos := [3]float32{float32(p.X()), float32(p.Y()), float32(p.Z())}
		return r.vertex(pos, p.Fog(), true, rs, prof)
	case gs.RegNop:
	default:
		return fmt.Errorf("%v in REGLIST: %w", reg, ErrUnsupportedRegister)
	}
	return nil
}
