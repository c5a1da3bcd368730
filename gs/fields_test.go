package gs

import "testing"

func TestRegisterFields(t *testing.T) {
	test := MakeTest(true, AlphaGEqual, 0x26, AlphaFailFBOnly, true, ZTestGreater)
	if !test.AlphaTestEnable() || test.AlphaTest() != AlphaGEqual || test.ARef() != 0x26 ||
		test.AlphaFail() != AlphaFailFBOnly || !test.DepthTestEnable() || test.DepthTest() != ZTestGreater {
		t.Errorf("TEST fields decoded wrong from %#x", uint64(test))
	}

	zbuf := MakeZbuf(448, PSMZ24, true)
	if zbuf.ZBP() != 448 || zbuf.PSM() != PSMZ24 || zbuf.DepthWrite() {
		t.Errorf("ZBUF = zbp %d psm %v write %t", zbuf.ZBP(), zbuf.PSM(), zbuf.DepthWrite())
	}
	if z := MakeZbuf(0, PSMZ16S, false); z.PSM() != PSMZ16S {
		t.Errorf("PSM() = %v, want PSMZ16S", z.PSM())
	}

	tex0 := MakeTex0(0x2a0, PSMT4HH, true, TexDecal)
	if tex0.TBP0() != 0x2a0 || tex0.PSM() != PSMT4HH || !tex0.TCC() || tex0.TFX() != TexDecal {
		t.Errorf("TEX0 fields decoded wrong from %#x", uint64(tex0))
	}

	alpha := MakeAlpha(BlendSource, BlendDest, BlendZeroOrFixed, BlendDest, 0x40)
	if alpha.A() != BlendSource || alpha.B() != BlendDest || alpha.C() != BlendZeroOrFixed ||
		alpha.D() != BlendDest || alpha.Fix() != 0x40 {
		t.Errorf("ALPHA fields decoded wrong from %#x", uint64(alpha))
	}

	clamp := MakeClamp(false, true)
	if clamp.ClampS() || !clamp.ClampT() {
		t.Errorf("CLAMP = s %t t %t, want false true", clamp.ClampS(), clamp.ClampT())
	}

	texa := MakeTexA(0, 0x80, false)
	if texa.TA0() != 0 || texa.TA1() != 0x80 || texa.AEM() {
		t.Errorf("TEXA fields decoded wrong from %#x", uint64(texa))
	}

	rgbaq := MakeRGBAQ([4]uint8{1, 2, 3, 4}, 0.5)
	if rgbaq.RGBA() != [4]uint8{1, 2, 3, 4} || rgbaq.Q() != 0.5 {
		t.Errorf("RGBAQ = %v %v", rgbaq.RGBA(), rgbaq.Q())
	}

	xyzf := MakeXYZF(0x1230, 0x4560, 0x123456, 9)
	if xyzf.X() != 0x1230 || xyzf.Y() != 0x4560 || xyzf.Z() != 0x123456 || xyzf.Fog() != 9 {
		t.Errorf("XYZF fields decoded wrong from %#x", uint64(xyzf))
	}
}

func TestDecodeAlphaBlend(t *testing.T) {
	const (
		s = BlendSource
		d = BlendDest
		z = BlendZeroOrFixed
	)
	tests := []struct {
		a, b, c, dd BlendSel
		want        AlphaBlend
		ok          bool
	}{
		{s, d, s, d, BlendSrcDstSrcDst, true},
		{s, z, s, d, BlendSrc0SrcDst, true},
		{s, z, z, d, BlendSrc0FixDst, true},
		{s, d, z, d, BlendSrcDstFixDst, true},
		{z, s, s, d, BlendZeroSrcSrcDst, true},
		{s, s, s, s, BlendSrcSrcSrcSrc, true},
		{s, z, d, d, BlendSrc0DstDst, true},
		{d, s, s, d, 0, false},
		{s, d, d, z, 0, false},
	}
	for _, tt := range tests {
		got, ok := DecodeAlphaBlend(MakeAlpha(tt.a, tt.b, tt.c, tt.dd, 0))
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("DecodeAlphaBlend(%v,%v,%v,%v) = %v, %t; want %v, %t",
				tt.a, tt.b, tt.c, tt.dd, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDrawModeFieldsIndependent(t *testing.T) {
	m := DefaultDrawMode()
	before := m

	m.SetARef(0xff)
	m.SetAlphaTest(AlphaGEqual)
	m.SetAlphaFail(AlphaFailRGB)
	m.SetAlphaBlend(BlendSrc0DstDst)
	m.SetDepthTest(ZTestGreater)

	if !m.DepthWrite() || !m.DepthTestEnable() || !m.AlphaBlendEnable() || !m.Filter() {
		t.Errorf("setting fields clobbered flags: %v", m)
	}
	if m.ARef() != 0xff || m.AlphaTest() != AlphaGEqual || m.AlphaFail() != AlphaFailRGB ||
		m.AlphaBlend() != BlendSrc0DstDst || m.DepthTest() != ZTestGreater {
		t.Errorf("fields not stored: %v", m)
	}

	m.SetARef(0)
	m.SetAlphaTest(before.AlphaTest())
	m.SetAlphaFail(before.AlphaFail())
	m.SetAlphaBlend(before.AlphaBlend())
	m.SetDepthTest(before.DepthTest())
	if m != before {
		t.Errorf("restored mode %#x != original %#x", uint64(m), uint64(before))
	}
}
