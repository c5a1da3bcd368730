package main

import (
	"github.com/gogpu/gsdirect/backend"
	"github.com/gogpu/gsdirect/gs"
)

const demoTBP = 0x100

// demoStream builds a small capture: a gouraud shaded background, a fogged
// quad in front of it and a half transparent quad over both. The texture
// is missing, so all three sample the placeholder. With floatPositions
// the positions are written the way the lightning microcode writes them.
func demoStream(floatPositions bool) []byte {
	w := gs.NewPacketWriter(4096)

	w.Tag(gs.MakeTag(gs.FormatPacked, 3, false, nil, gs.RegAD))
	w.AD(gs.AddrTex0_1, uint64(gs.MakeTex0(demoTBP, gs.PSMCT32, false, gs.TexModulate)))
	w.AD(gs.AddrTex1_1, uint64(gs.MakeTex1(true)))
	w.AD(gs.AddrFogCol, 0x203040)

	background := [4][4]uint8{
		{0x20, 0x20, 0x60, 0x80},
		{0x20, 0x60, 0x60, 0x80},
		{0x60, 0x20, 0x40, 0x80},
		{0x40, 0x40, 0x20, 0x80},
	}
	demoQuad(w, floatPositions, gs.MakePrim(gs.PrimTriangleStrip, true, true, false, false),
		[4]int{0, 0, backend.ScreenWidth, backend.ScreenHeight}, 100, background, 0xff)

	solid := [4][4]uint8{}
	for i := range solid {
		solid[i] = [4]uint8{0x80, 0x60, 0x10, 0x80}
	}
	demoQuad(w, floatPositions, gs.MakePrim(gs.PrimTriangleStrip, true, true, true, false),
		[4]int{64, 64, 256, 224}, 200, solid, 0x80)

	w.Tag(gs.MakeTag(gs.FormatPacked, 1, false, nil, gs.RegAD))
	w.AD(gs.AddrAlpha1, uint64(gs.MakeAlpha(gs.BlendSource, gs.BlendDest, gs.BlendSource, gs.BlendDest, 0)))
	glass := [4][4]uint8{}
	for i := range glass {
		glass[i] = [4]uint8{0x10, 0x80, 0x80, 0x40}
	}
	demoQuad(w, floatPositions, gs.MakePrim(gs.PrimTriangleStrip, true, true, false, true),
		[4]int{160, 128, 448, 352}, 300, glass, 0xff)

	// End of packet.
	w.Tag(gs.MakeTag(gs.FormatPacked, 0, true, nil, gs.RegNop))
	return w.Bytes()
}

// demoQuad appends a strip covering rect (x0, y0, x1, y1 in screen pixels)
// at depth z with per-corner colors.
func demoQuad(w *gs.PacketWriter, floatPositions bool, prim gs.Prim, rect [4]int, z uint32, colors [4][4]uint8, fog uint8) {
	const (
		left = backend.ScreenCenter - backend.ScreenWidth/2
		top  = backend.ScreenCenter - backend.ScreenHeight/2
	)
	corners := [4][2]int{
		{rect[0], rect[1]},
		{rect[2], rect[1]},
		{rect[0], rect[3]},
		{rect[2], rect[3]},
	}
	w.Tag(gs.MakeTag(gs.FormatPacked, 4, false, &prim, gs.RegST, gs.RegRGBAQ, gs.RegXYZF2))
	for i, c := range corners {
		w.ST(float32(i%2), float32(i/2), 1)
		w.RGBAQ(colors[i][0], colors[i][1], colors[i][2], colors[i][3])
		if floatPositions {
			w.XYZF2Float(float32(left+c[0]), float32(top+c[1]), float32(z), fog, false)
			continue
		}
		w.XYZF2(uint32(left+c[0])*16, uint32(top+c[1])*16, z, fog, false)
	}
}
