package gs

import (
	"fmt"
	"strings"
)

// AlphaBlend identifies one of the blend equations that captured streams
// program through ALPHA. Names read as the (A, B, C, D) selectors.
type AlphaBlend uint8

// Supported blend equations.
const (
	BlendSrcDstSrcDst  AlphaBlend = iota // (Cs - Cd) * As + Cd
	BlendSrc0SrcDst                      // Cs * As + Cd
	BlendSrc0FixDst                      // Cs * FIX + Cd
	BlendSrcDstFixDst                    // (Cs - Cd) * FIX + Cd
	BlendZeroSrcSrcDst                   // Cd - Cs * As
	BlendSrcSrcSrcSrc                    // Cs
	BlendSrc0DstDst                      // Cs * Ad + Cd
)

var alphaBlendNames = [...]string{
	BlendSrcDstSrcDst:  "src-dst-src-dst",
	BlendSrc0SrcDst:    "src-0-src-dst",
	BlendSrc0FixDst:    "src-0-fix-dst",
	BlendSrcDstFixDst:  "src-dst-fix-dst",
	BlendZeroSrcSrcDst: "0-src-src-dst",
	BlendSrcSrcSrcSrc:  "src-src-src-src",
	BlendSrc0DstDst:    "src-0-dst-dst",
}

func (b AlphaBlend) String() string {
	if int(b) < len(alphaBlendNames) {
		return alphaBlendNames[b]
	}
	return fmt.Sprintf("AlphaBlend(%d)", uint8(b))
}

// DecodeAlphaBlend maps ALPHA selectors to a blend equation.
// It reports false for combinations no known stream uses.
func DecodeAlphaBlend(a Alpha) (AlphaBlend, bool) {
	const (
		s = BlendSource
		d = BlendDest
		z = BlendZeroOrFixed
	)
	switch [4]BlendSel{a.A(), a.B(), a.C(), a.D()} {
	case [4]BlendSel{s, d, s, d}:
		return BlendSrcDstSrcDst, true
	case [4]BlendSel{s, z, s, d}:
		return BlendSrc0SrcDst, true
	case [4]BlendSel{s, z, z, d}:
		return BlendSrc0FixDst, true
	case [4]BlendSel{s, d, z, d}:
		return BlendSrcDstFixDst, true
	case [4]BlendSel{z, s, s, d}:
		return BlendZeroSrcSrcDst, true
	case [4]BlendSel{s, s, s, s}:
		return BlendSrcSrcSrcSrc, true
	case [4]BlendSel{s, z, d, d}:
		return BlendSrc0DstDst, true
	}
	return 0, false
}

// DrawMode is the fixed-function state a draw is rendered with, packed
// into one word so that two modes can be compared with ==.
//
// Layout:
//
//	bit  0      depth write
//	bits 1-2    depth test function
//	bit  3      depth test enable
//	bit  4      alpha blend enable
//	bits 5-7    alpha blend equation
//	bit  8      bilinear filter
//	bit  9      TCC (texture alpha is used)
//	bit  10     decal
//	bit  11     fog
//	bit  12     clamp S
//	bit  13     clamp T
//	bit  14     alpha test enable
//	bits 15-17  alpha test function
//	bits 18-25  alpha reference
//	bits 26-27  alpha fail mode
type DrawMode uint64

const (
	dmDepthWrite = 0
	dmDepthTest  = 1
	dmZTE        = 3
	dmABE        = 4
	dmBlend      = 5
	dmFilter     = 8
	dmTCC        = 9
	dmDecal      = 10
	dmFog        = 11
	dmClampS     = 12
	dmClampT     = 13
	dmATE        = 14
	dmAlphaTest  = 15
	dmARef       = 18
	dmAlphaFail  = 26
)

// DefaultDrawMode is the state the renderers start from after a reset:
// depth tested with GEQUAL and written, blending (Cs - Cd) * As + Cd
// enabled, alpha test off, filtered and wrapped textures.
func DefaultDrawMode() DrawMode {
	var m DrawMode
	m.SetDepthWrite(true)
	m.SetDepthTestEnable(true)
	m.SetDepthTest(ZTestGEqual)
	m.SetAlphaBlendEnable(true)
	m.SetAlphaBlend(BlendSrcDstSrcDst)
	m.SetFilter(true)
	m.SetTCC(true)
	m.SetAlphaTest(AlphaAlways)
	return m
}

func (m DrawMode) bit(n uint) bool { return m&(1<<n) != 0 }

func (m *DrawMode) setBit(n uint, v bool) {
	if v {
		*m |= 1 << n
	} else {
		*m &^= 1 << n
	}
}

func (m DrawMode) field(shift, width uint) uint64 {
	return uint64(m>>shift) & (1<<width - 1)
}

func (m *DrawMode) setField(shift, width uint, v uint64) {
	mask := DrawMode(1<<width-1) << shift
	*m = *m&^mask | DrawMode(v)<<shift&mask
}

// DepthWrite reports whether the draw writes depth (ZMSK clear).
func (m DrawMode) DepthWrite() bool { return m.bit(dmDepthWrite) }

// DepthTestEnable reports the TEST ZTE bit.
func (m DrawMode) DepthTestEnable() bool { return m.bit(dmZTE) }

// DepthTest returns the depth compare function.
func (m DrawMode) DepthTest() ZTest { return ZTest(m.field(dmDepthTest, 2)) }

// AlphaBlendEnable reports the PRIM ABE bit.
func (m DrawMode) AlphaBlendEnable() bool { return m.bit(dmABE) }

// AlphaBlend returns the decoded ALPHA equation.
func (m DrawMode) AlphaBlend() AlphaBlend { return AlphaBlend(m.field(dmBlend, 3)) }

// Filter reports bilinear magnification (TEX1 MMAG).
func (m DrawMode) Filter() bool { return m.bit(dmFilter) }

// TCC reports whether texture alpha replaces vertex alpha.
func (m DrawMode) TCC() bool { return m.bit(dmTCC) }

// Decal reports the DECAL texture function; MODULATE otherwise.
func (m DrawMode) Decal() bool { return m.bit(dmDecal) }

// Fog reports the PRIM FGE bit.
func (m DrawMode) Fog() bool { return m.bit(dmFog) }

// ClampS reports clamping of the S coordinate.
func (m DrawMode) ClampS() bool { return m.bit(dmClampS) }

// ClampT reports clamping of the T coordinate.
func (m DrawMode) ClampT() bool { return m.bit(dmClampT) }

// AlphaTestEnable reports the TEST ATE bit.
func (m DrawMode) AlphaTestEnable() bool { return m.bit(dmATE) }

// AlphaTest returns the alpha compare method.
func (m DrawMode) AlphaTest() AlphaTest { return AlphaTest(m.field(dmAlphaTest, 3)) }

// ARef returns the alpha test reference value.
func (m DrawMode) ARef() uint8 { return uint8(m.field(dmARef, 8)) }

// AlphaFail returns what happens to pixels failing the alpha test.
func (m DrawMode) AlphaFail() AlphaFail { return AlphaFail(m.field(dmAlphaFail, 2)) }

// SetDepthWrite sets the field read by DepthWrite.
func (m *DrawMode) SetDepthWrite(v bool) { m.setBit(dmDepthWrite, v) }

// SetDepthTestEnable sets the field read by DepthTestEnable.
func (m *DrawMode) SetDepthTestEnable(v bool) { m.setBit(dmZTE, v) }

// SetDepthTest sets the field read by DepthTest.
func (m *DrawMode) SetDepthTest(z ZTest) { m.setField(dmDepthTest, 2, uint64(z)) }

// SetAlphaBlendEnable sets the field read by AlphaBlendEnable.
func (m *DrawMode) SetAlphaBlendEnable(v bool) { m.setBit(dmABE, v) }

// SetAlphaBlend sets the field read by AlphaBlend.
func (m *DrawMode) SetAlphaBlend(b AlphaBlend) { m.setField(dmBlend, 3, uint64(b)) }

// SetFilter sets the field read by Filter.
func (m *DrawMode) SetFilter(v bool) { m.setBit(dmFilter, v) }

// SetTCC sets the field read by TCC.
func (m *DrawMode) SetTCC(v bool) { m.setBit(dmTCC, v) }

// SetDecal sets the field read by Decal.
func (m *DrawMode) SetDecal(v bool) { m.setBit(dmDecal, v) }

// SetFog sets the field read by Fog.
func (m *DrawMode) SetFog(v bool) { m.setBit(dmFog, v) }

// SetClampS sets the field read by ClampS.
func (m *DrawMode) SetClampS(v bool) { m.setBit(dmClampS, v) }

// SetClampT sets the field read by ClampT.
func (m *DrawMode) SetClampT(v bool) { m.setBit(dmClampT, v) }

// SetAlphaTestEnable sets the field read by AlphaTestEnable.
func (m *DrawMode) SetAlphaTestEnable(v bool) { m.setBit(dmATE, v) }

// SetAlphaTest sets the field read by AlphaTest.
func (m *DrawMode) SetAlphaTest(a AlphaTest) { m.setField(dmAlphaTest, 3, uint64(a)) }

// SetARef sets the field read by ARef.
func (m *DrawMode) SetARef(ref uint8) { m.setField(dmARef, 8, uint64(ref)) }

// SetAlphaFail sets the field read by AlphaFail.
func (m *DrawMode) SetAlphaFail(f AlphaFail) { m.setField(dmAlphaFail, 2, uint64(f)) }

// String lists the enabled state, for debug output.
func (m DrawMode) String() string {
	var sb strings.Builder
	if m.DepthTestEnable() {
		fmt.Fprintf(&sb, "ztest=%v ", m.DepthTest())
	}
	if m.DepthWrite() {
		sb.WriteString("zwrite ")
	}
	if m.AlphaBlendEnable() {
		fmt.Fprintf(&sb, "blend=%v ", m.AlphaBlend())
	}
	if m.AlphaTestEnable() {
		fmt.Fprintf(&sb, "atest=%d/ref=%d ", m.AlphaTest(), m.ARef())
	}
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.Filter(), "filt"}, {m.TCC(), "tcc"}, {m.Decal(), "decal"},
		{m.Fog(), "fog"}, {m.ClampS(), "clamp-s"}, {m.ClampT(), "clamp-t"},
	} {
		if f.on {
			sb.WriteString(f.name)
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
