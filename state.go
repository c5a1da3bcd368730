package gsdirect

import (
	"fmt"

	"github.com/gogpu/gsdirect/gs"
)

// The one depth buffer the renderer emulates.
const (
	depthBufferAddress = 448
	depthBufferFormat  = gs.PSMZ24
)

// gsState is the GS register state a DirectRenderer tracks between
// vertices.
type gsState struct {
	mode     gs.DrawMode
	fix      uint8
	tbp      uint32
	fogColor [3]uint8

	// vertexFlags caches TextureFlags(mode).
	vertexFlags uint8
	rgba        [4]uint8
	st          [3]float32 // S, T, Q

	nextVertexStartsStrip bool
	drawOpen              bool
	// stripLen counts vertices since the current strip started.
	stripLen int
}

func (s *gsState) reset() {
	*s = gsState{
		mode: gs.DefaultDrawMode(),
		rgba: [4]uint8{0x80, 0x80, 0x80, 0x80},
		st:   [3]float32{0, 0, 1},
	}
	s.vertexFlags = TextureFlags(s.mode)
}

// setMode switches to m, closing the open draw if anything changed.
func (r *DirectRenderer) setMode(m gs.DrawMode) {
	if m == r.state.mode {
		return
	}
	r.state.drawOpen = false
	r.state.mode = m
	r.state.vertexFlags = TextureFlags(m)
}

// handleAD applies an A+D register write.
func (r *DirectRenderer) handleAD(addr gs.Address, value uint64) error {
	switch addr {
	case gs.AddrZbuf1:
		return r.handleZbuf1(gs.Zbuf(value))
	case gs.AddrTest1:
		return r.handleTest1(gs.Test(value))
	case gs.AddrAlpha1:
		r.handleAlpha1(gs.Alpha(value))
	case gs.AddrClamp1:
		c := gs.Clamp(value)
		m := r.state.mode
		m.SetClampS(c.ClampS())
		m.SetClampT(c.ClampT())
		r.setMode(m)
	case gs.AddrTex1_1:
		m := r.state.mode
		m.SetFilter(gs.Tex1(value).MMAG())
		r.setMode(m)
	case gs.AddrTex0_1:
		return r.handleTex0(gs.Tex0(value))
	case gs.AddrTexA:
		t := gs.TexA(value)
		if t.TA0() != 0 || t.TA1() != 0x80 || t.AEM() {
			return fmt.Errorf("ta0=%#x ta1=%#x aem=%t: %w", t.TA0(), t.TA1(), t.AEM(), ErrUnsupportedTexA)
		}
	case gs.AddrFogCol:
		if c := gs.FogCol(value).RGB(); c != r.state.fogColor {
			r.state.drawOpen = false
			r.state.fogColor = c
		}
	case gs.AddrRGBAQ:
		c := gs.RGBAQ(value)
		r.state.rgba = c.RGBA()
		r.state.st[2] = c.Q()
	case gs.AddrPrim:
		return r.handlePrim(gs.Prim(value))
	case gs.AddrPabe, gs.AddrTexClut, gs.AddrMipTBP1_1, gs.AddrMipTBP2_1, gs.AddrTexFlush, gs.AddrFrame1:
		// No effect on the emulated pipeline.
	default:
		return fmt.Errorf("%v = %#x: %w", addr, value, ErrUnsupportedAddress)
	}
	return nil
}

func (r *DirectRenderer) handleTest1(t gs.Test) error {
	if t.DATE() {
		return fmt.Errorf("destination alpha test: %w", ErrUnsupportedAlphaTest)
	}
	if t.AlphaTestEnable() {
		switch t.AlphaTest() {
		case gs.AlphaNever, gs.AlphaAlways, gs.AlphaGEqual:
		default:
			return fmt.Errorf("atst=%d: %w", t.AlphaTest(), ErrUnsupportedAlphaTest)
		}
	}
	m := r.state.mode
	m.SetAlphaTestEnable(t.AlphaTestEnable())
	m.SetAlphaTest(t.AlphaTest())
	m.SetARef(t.ARef())
	m.SetAlphaFail(t.AlphaFail())
	m.SetDepthTestEnable(t.DepthTestEnable())
	m.SetDepthTest(t.DepthTest())
	r.setMode(m)
	return nil
}

func (r *DirectRenderer) handleZbuf1(z gs.Zbuf) error {
	if z.PSM() != depthBufferFormat || z.ZBP() != depthBufferAddress {
		return fmt.Errorf("zbp=%d psm=%v: %w", z.ZBP(), z.PSM(), ErrUnsupportedDepthBuffer)
	}
	m := r.state.mode
	m.SetDepthWrite(z.DepthWrite())
	r.setMode(m)
	return nil
}

func (r *DirectRenderer) handleTex0(t gs.Tex0) error {
	tfx := t.TFX()
	if tfx != gs.TexModulate && tfx != gs.TexDecal {
		return fmt.Errorf("tfx=%v: %w", tfx, ErrUnsupportedTextureFunction)
	}
	tbp := t.TBP0()
	if t.PSM() == gs.PSMT4HH {
		tbp |= alternateFormatFlag
	}
	m := r.state.mode
	m.SetTCC(t.TCC())
	m.SetDecal(tfx == gs.TexDecal)
	if tbp != r.state.tbp {
		r.state.drawOpen = false
		r.state.tbp = tbp
	}
	r.setMode(m)
	return nil
}

// handlePrim applies a PRIM write from A+D, REGLIST or a tag's PRE field.
// Every PRIM write starts a new strip, even when the value is unchanged.
func (r *DirectRenderer) handlePrim(p gs.Prim) error {
	r.state.nextVertexStartsStrip = true
	if p.Kind() != gs.PrimTriangleStrip || !p.Gouraud() || !p.TME() {
		return fmt.Errorf("%v: %w", p, ErrUnsupportedPrim)
	}
	m := r.state.mode
	m.SetFog(p.FGE())
	m.SetAlphaBlendEnable(p.ABE())
	r.setMode(m)
	return nil
}

// handleAlpha1 decodes the blend equation. Unknown selector combinations
// are reported and otherwise ignored.
func (r *DirectRenderer) handleAlpha1(a gs.Alpha) {
	blend, ok := gs.DecodeAlphaBlend(a)
	if !ok {
		Logger().Warn("unsupported blend selectors, keeping previous blend",
			"renderer", r.opts.name, "a", a.A(), "b", a.B(), "c", a.C(), "d", a.D())
		if r.opts.blendHook != nil {
			r.opts.blendHook(a)
		}
		return
	}
	m := r.state.mode
	m.SetAlphaBlend(blend)
	if a.Fix() != r.state.fix {
		r.state.drawOpen = false
		r.state.fix = a.Fix()
	}
	r.setMode(m)
}
