package gs

import (
	"fmt"
	"math"
)

// PrimKind is the primitive type stored in bits 0-2 of PRIM.
type PrimKind uint8

// Primitive types.
const (
	PrimPoint         PrimKind = 0
	PrimLine          PrimKind = 1
	PrimLineStrip     PrimKind = 2
	PrimTriangle      PrimKind = 3
	PrimTriangleStrip PrimKind = 4
	PrimTriangleFan   PrimKind = 5
	PrimSprite        PrimKind = 6
)

var primKindNames = [...]string{"point", "line", "line-strip", "tri", "tri-strip", "tri-fan", "sprite"}

func (k PrimKind) String() string {
	if int(k) < len(primKindNames) {
		return primKindNames[k]
	}
	return fmt.Sprintf("PrimKind(%d)", uint8(k))
}

// Prim is the PRIM register.
type Prim uint64

// MakePrim builds a PRIM value with the given kind and flags.
func MakePrim(kind PrimKind, gouraud, textured, fog, blend bool) Prim {
	p := Prim(kind & 7)
	if gouraud {
		p |= 1 << 3
	}
	if textured {
		p |= 1 << 4
	}
	if fog {
		p |= 1 << 5
	}
	if blend {
		p |= 1 << 6
	}
	return p
}

func (p Prim) Kind() PrimKind { return PrimKind(p & 7) }
func (p Prim) Gouraud() bool { return p&(1<<3) != 0 }
func (p Prim) TME() bool { return p&(1<<4) != 0 }
func (p Prim) FGE() bool { return p&(1<<5) != 0 }
func (p Prim) ABE() bool { return p&(1<<6) != 0 }
func (p Prim) AA1() bool { return p&(1<<7) != 0 }
func (p Prim) FST() bool { return p&(1<<8) != 0 }
func (p Prim) Ctxt() bool { return p&(1<<9) != 0 }
func (p Prim) Fix() bool { return p&(1<<10) != 0 }

func (p Prim) String() string {
	return fmt.Sprintf("%v(iip=%t tme=%t fge=%t abe=%t)", p.Kind(), p.Gouraud(), p.TME(), p.FGE(), p.ABE())
}

// AlphaTest is the ATST field of TEST.
type AlphaTest uint8

// Alpha test functions.
const (
	AlphaNever    AlphaTest = 0
	AlphaAlways   AlphaTest = 1
	AlphaLess     AlphaTest = 2
	AlphaLEqual   AlphaTest = 3
	AlphaEqual    AlphaTest = 4
	AlphaGEqual   AlphaTest = 5
	AlphaGreater  AlphaTest = 6
	AlphaNotEqual AlphaTest = 7
)

// AlphaFail is the AFAIL field of TEST: what to write when the alpha test fails.
type AlphaFail uint8

// Alpha fail modes.
const (
	AlphaFailKeep   AlphaFail = 0
	AlphaFailFBOnly AlphaFail = 1
	AlphaFailZBOnly AlphaFail = 2
	AlphaFailRGB    AlphaFail = 3
)

// ZTest is the ZTST field of TEST.
type ZTest uint8

// Depth test functions. Larger Z is closer to the viewer.
const (
	ZTestNever   ZTest = 0
	ZTestAlways  ZTest = 1
	ZTestGEqual  ZTest = 2
	ZTestGreater ZTest = 3
)

func (z ZTest) String() string {
	switch z {
	case ZTestNever:
		return "never"
	case ZTestAlways:
		return "always"
	case ZTestGEqual:
		return "gequal"
	}
	return "greater"
}

// Test is the TEST_1/TEST_2 register.
type Test uint64

// MakeTest builds a TEST value. DATE is left clear.
func MakeTest(alphaTest bool, atst AlphaTest, aref uint8, afail AlphaFail, depthTest bool, ztst ZTest) Test {
	var t Test
	if alphaTest {
		t |= 1
	}
	t |= Test(atst&7) << 1
	t |= Test(aref) << 4
	t |= Test(afail&3) << 12
	if depthTest {
		t |= 1 << 16
	}
	t |= Test(ztst&3) << 17
	return t
}

func (t Test) AlphaTestEnable() bool { return t&1 != 0 }
func (t Test) AlphaTest() AlphaTest { return AlphaTest((t >> 1) & 7) }
func (t Test) ARef() uint8 { return uint8(t >> 4) }
func (t Test) AlphaFail() AlphaFail { return AlphaFail((t >> 12) & 3) }
func (t Test) DATE() bool { return t&(1<<14) != 0 }
func (t Test) DATM() bool { return t&(1<<15) != 0 }
func (t Test) DepthTestEnable() bool { return t&(1<<16) != 0 }
func (t Test) DepthTest() ZTest { return ZTest((t >> 17) & 3) }

// BlendSel is one of the A/B/C/D selectors of ALPHA. For A, B and D the
// value 2 selects zero; for C it selects the FIX constant.
type BlendSel uint8

// Blend selectors.
const (
	BlendSource      BlendSel = 0
	BlendDest        BlendSel = 1
	BlendZeroOrFixed BlendSel = 2
	BlendInvalid     BlendSel = 3
)

func (b BlendSel) String() string {
	switch b {
	case BlendSource:
		return "src"
	case BlendDest:
		return "dst"
	case BlendZeroOrFixed:
		return "0/fix"
	}
	return "invalid"
}

// Alpha is the ALPHA_1/ALPHA_2 register: Cv = (A - B) * C >> 7 + D.
type Alpha uint64

// MakeAlpha builds an ALPHA value.
func MakeAlpha(a, b, c, d BlendSel, fix uint8) Alpha {
	return Alpha(a&3) | Alpha(b&3)<<2 | Alpha(c&3)<<4 | Alpha(d&3)<<6 | Alpha(fix)<<32
}

func (a Alpha) A() BlendSel { return BlendSel(a & 3) }
func (a Alpha) B() BlendSel { return BlendSel((a >> 2) & 3) }
func (a Alpha) C() BlendSel { return BlendSel((a >> 4) & 3) }
func (a Alpha) D() BlendSel { return BlendSel((a >> 6) & 3) }
func (a Alpha) Fix() uint8 { return uint8(a >> 32) }

// ZPSM is the storage format of the depth buffer.
type ZPSM uint8

// Depth buffer formats, with the 0x30 prefix already applied.
const (
	PSMZ32  ZPSM = 0x30
	PSMZ24  ZPSM = 0x31
	PSMZ16  ZPSM = 0x32
	PSMZ16S ZPSM = 0x3a
)

func (p ZPSM) String() string {
	switch p {
	case PSMZ32:
		return "PSMZ32"
	case PSMZ24:
		return "PSMZ24"
	case PSMZ16:
		return "PSMZ16"
	case PSMZ16S:
		return "PSMZ16S"
	}
	return fmt.Sprintf("ZPSM(0x%x)", uint8(p))
}

// Zbuf is the ZBUF_1/ZBUF_2 register.
type Zbuf uint64

// MakeZbuf builds a ZBUF value. noWrite sets ZMSK.
func MakeZbuf(zbp uint32, psm ZPSM, noWrite bool) Zbuf {
	z := Zbuf(zbp&0x1ff) | Zbuf(psm&0xf)<<24
	if noWrite {
		z |= 1 << 32
	}
	return z
}

func (z Zbuf) ZBP() uint32 { return uint32(z & 0x1ff) }
func (z Zbuf) PSM() ZPSM { return ZPSM((z>>24)&0xf) | 0x30 }
func (z Zbuf) ZMSK() bool { return z&(1<<32) != 0 }
func (z Zbuf) DepthWrite() bool { return !z.ZMSK() }

// PSM is a texture pixel storage mode.
type PSM uint8

// Texture formats that appear in captured streams.
const (
	PSMCT32 PSM = 0x00
	PSMCT24 PSM = 0x01
	PSMCT16 PSM = 0x02
	PSMT8   PSM = 0x13
	PSMT4   PSM = 0x14
	PSMT8H  PSM = 0x1b
	PSMT4HL PSM = 0x24
	PSMT4HH PSM = 0x2c
)

// TextureFunction is the TFX field of TEX0.
type TextureFunction uint8

// Texture functions.
const (
	TexModulate   TextureFunction = 0
	TexDecal      TextureFunction = 1
	TexHighlight  TextureFunction = 2
	TexHighlight2 TextureFunction = 3
)

func (f TextureFunction) String() string {
	switch f {
	case TexModulate:
		return "modulate"
	case TexDecal:
		return "decal"
	case TexHighlight:
		return "highlight"
	}
	return "highlight2"
}

// Tex0 is the TEX0_1/TEX0_2 register.
type Tex0 uint64

// MakeTex0 builds a TEX0 value with width and height exponents left zero.
func MakeTex0(tbp uint32, psm PSM, tcc bool, tfx TextureFunction) Tex0 {
	t := Tex0(tbp&0x3fff) | Tex0(psm&0x3f)<<20 | Tex0(tfx&3)<<35
	if tcc {
		t |= 1 << 34
	}
	return t
}

func (t Tex0) TBP0() uint32 { return uint32(t & 0x3fff) }
func (t Tex0) TBW() uint32 { return uint32((t >> 14) & 0x3f) }
func (t Tex0) PSM() PSM { return PSM((t >> 20) & 0x3f) }
func (t Tex0) TW() uint32 { return uint32((t >> 26) & 0xf) }
func (t Tex0) TH() uint32 { return uint32((t >> 30) & 0xf) }
func (t Tex0) TCC() bool { return t&(1<<34) != 0 }
func (t Tex0) TFX() TextureFunction { return TextureFunction((t >> 35) & 3) }
func (t Tex0) CBP() uint32 { return uint32((t >> 37) & 0x3fff) }
func (t Tex0) CPSM() uint32 { return uint32((t >> 51) & 0xf) }
func (t Tex0) CSM() bool { return t&(1<<55) != 0 }
func (t Tex0) CSA() uint32 { return uint32((t >> 56) & 0x1f) }
func (t Tex0) CLD() uint32 { return uint32((t >> 61) & 7) }

// Tex1 is the TEX1_1/TEX1_2 register.
type Tex1 uint64

// MakeTex1 builds a TEX1 value with only MMAG set as requested.
func MakeTex1(linear bool) Tex1 {
	if linear {
		return 1 << 5
	}
	return 0
}

func (t Tex1) LCM() bool { return t&1 != 0 }
func (t Tex1) MXL() uint32 { return uint32((t >> 2) & 7) }
func (t Tex1) MMAG() bool { return t&(1<<5) != 0 }
func (t Tex1) MMIN() uint32 { return uint32((t >> 6) & 7) }
func (t Tex1) MTBA() bool { return t&(1<<9) != 0 }
func (t Tex1) L() uint32 { return uint32((t >> 19) & 3) }
func (t Tex1) K() uint32 { return uint32((t >> 32) & 0xfff) }

// Clamp is the CLAMP_1/CLAMP_2 register. Only the CLAMP wrap mode of
// WMS and WMT is tracked.
type Clamp uint64

// MakeClamp builds a CLAMP value.
func MakeClamp(s, t bool) Clamp {
	var c Clamp
	if s {
		c |= 1
	}
	if t {
		c |= 4
	}
	return c
}

func (c Clamp) ClampS() bool { return c&1 != 0 }
func (c Clamp) ClampT() bool { return c&4 != 0 }

// Frame is the FRAME_1/FRAME_2 register.
type Frame uint64

// MakeFrame builds a FRAME value with only the write mask set.
func MakeFrame(fbmsk uint32) Frame { return Frame(fbmsk) << 32 }

func (f Frame) FBP() uint32 { return uint32(f & 0x1ff) }
func (f Frame) FBW() uint32 { return uint32((f >> 16) & 0x3f) }
func (f Frame) PSM() uint32 { return uint32((f >> 24) & 0x3f) }
func (f Frame) FBMSK() uint32 { return uint32(f >> 32) }

// TexA is the TEXA register.
type TexA uint64

// MakeTexA builds a TEXA value.
func MakeTexA(ta0, ta1 uint8, aem bool) TexA {
	t := TexA(ta0) | TexA(ta1)<<32
	if aem {
		t |= 1 << 15
	}
	return t
}

func (t TexA) TA0() uint8 { return uint8(t) }
func (t TexA) AEM() bool { return t&(1<<15) != 0 }
func (t TexA) TA1() uint8 { return uint8(t >> 32) }

// FogCol is the FOGCOL register.
type FogCol uint64

func (f FogCol) RGB() [3]uint8 { return [3]uint8{uint8(f), uint8(f >> 8), uint8(f >> 16)} }

// RGBAQ is the raw 64-bit RGBAQ register.
type RGBAQ uint64

// MakeRGBAQ builds an RGBAQ value.
func MakeRGBAQ(rgba [4]uint8, q float32) RGBAQ {
	return RGBAQ(rgba[0]) | RGBAQ(rgba[1])<<8 | RGBAQ(rgba[2])<<16 | RGBAQ(rgba[3])<<24 |
		RGBAQ(math.Float32bits(q))<<32
}

func (r RGBAQ) RGBA() [4]uint8 { return [4]uint8{uint8(r), uint8(r >> 8), uint8(r >> 16), uint8(r >> 24)} }
func (r RGBAQ) Q() float32 { return math.Float32frombits(uint32(r >> 32)) }

// ST is the raw 64-bit ST register.
type ST uint64

func (s ST) S() float32 { return math.Float32frombits(uint32(s)) }
func (s ST) T() float32 { return math.Float32frombits(uint32(s >> 32)) }

// XYZF is the raw 64-bit XYZF2/XYZF3 register: 12.4 fixed point X and Y,
// 24-bit Z and 8-bit fog.
type XYZF uint64

// MakeXYZF builds an XYZF value.
func MakeXYZF(x, y uint16, z uint32, fog uint8) XYZF {
	return XYZF(x) | XYZF(y)<<16 | XYZF(z&0xffffff)<<32 | XYZF(fog)<<56
}

func (p XYZF) X() uint32 { return uint32(p & 0xffff) }
func (p XYZF) Y() uint32 { return uint32((p >> 16) & 0xffff) }
func (p XYZF) Z() uint32 { return uint32((p >> 32) & 0xffffff) }
func (p XYZF) Fog() uint8 { return uint8(p >> 56) }
