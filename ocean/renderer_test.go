package ocean

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/gs"
	"github.com/gogpu/gsdirect/texpool"
)

const R = gsdirect.RestartIndex

type upload struct {
	vertices []gsdirect.Vertex
	indices  []uint32
}

type mockBackend struct {
	uploads []upload
	calls   []gsdirect.DrawCall
}

func (b *mockBackend) Upload(vertices []gsdirect.Vertex, indices []uint32) error {
	b.uploads = append(b.uploads, upload{slices.Clone(vertices), slices.Clone(indices)})
	return nil
}

func (b *mockBackend) IssueDraw(call gsdirect.DrawCall) error {
	call.Textures = slices.Clone(call.Textures)
	b.calls = append(b.calls, call)
	return nil
}

func (b *mockBackend) SetDepthWrite(bool) {}

func newTestState() (*gsdirect.RenderState, *mockBackend) {
	b := &mockBackend{}
	pool := texpool.New(0, nil)
	pool.SetPlaceholder(99)
	pool.Insert(0x100, 1)
	pool.Insert(0x200, 2)
	pool.Insert(0x300, 3)
	return &gsdirect.RenderState{Backend: b, Textures: pool}, b
}

type setup int

const (
	setupRGB setup = iota
	setupAlpha
	setupEnvMap
)

type adWrite struct {
	addr  gs.Address
	value uint64
}

// adBlock writes a single register A+D tag with one loop per write.
func adBlock(w *gs.PacketWriter, writes ...adWrite) {
	w.Tag(gs.MakeTag(gs.FormatPacked, len(writes), false, nil, gs.RegAD))
	for _, aw := range writes {
		w.AD(aw.addr, aw.value)
	}
}

func tex0(tbp uint32, psm gs.PSM, tcc bool) adWrite {
	return adWrite{gs.AddrTex0_1, uint64(gs.MakeTex0(tbp, psm, tcc, gs.TexModulate))}
}

func clamp(on bool) adWrite  { return adWrite{gs.AddrClamp1, uint64(gs.MakeClamp(on, on))} }
func frame(m uint32) adWrite { return adWrite{gs.AddrFrame1, uint64(gs.MakeFrame(m))} }

var (
	tex1    = adWrite{gs.AddrTex1_1, uint64(gs.MakeTex1(true))}
	miptbp1 = adWrite{gs.AddrMipTBP1_1, 0}
	miptbp2 = adWrite{gs.AddrMipTBP2_1, 0}
	alpha1  = adWrite{gs.AddrAlpha1, uint64(gs.MakeAlpha(gs.BlendSource, gs.BlendZeroOrFixed, gs.BlendDest, gs.BlendDest, 0))}
)

// adgifPacket writes the five register texture setup for one bucket.
func adgifPacket(w *gs.PacketWriter, tbp uint32, kind setup) {
	fourth := miptbp2
	switch kind {
	case setupAlpha:
		fourth = frame(0x00ffffff)
	case setupEnvMap:
		fourth = clamp(true)
	}
	adBlock(w, tex0(tbp, gs.PSMCT32, true), tex1, miptbp1, fourth, alpha1)
}

// vertexTag writes one strip or fan. skips[i] sets ADC on vertex i.
func vertexTag(w *gs.PacketWriter, kind gs.PrimKind, eop bool, skips ...bool) {
	prim := gs.MakePrim(kind, true, true, false, true)
	w.Tag(gs.MakeTag(gs.FormatPacked, len(skips), eop, &prim, gs.RegST, gs.RegRGBAQ, gs.RegXYZF2))
	for i, skip := range skips {
		w.ST(float32(i), 1, 1)
		w.RGBAQ(0x10, 0x20, 0x30, 0x40)
		w.XYZF2(uint32(i)<<4, 0x100, 0x2000, 0, skip)
	}
}

func kickNear(t *testing.T, r *Renderer, data []byte) {
	t.Helper()
	n, err := r.KickFromNear(data)
	if err != nil {
		t.Fatalf("KickFromNear: %v", err)
	}
	if n != len(data) {
		t.Fatalf("KickFromNear consumed %d bytes, want %d", n, len(data))
	}
}

func TestStripIndices(t *testing.T) {
	tests := []struct {
		name  string
		skips []bool
		want  []uint32
	}{
		{"plain", []bool{true, true, false, false}, []uint32{R, 0, 1, 2, 3}},
		{"no leading skip", []bool{false, false, false}, []uint32{R, 0, 1, 2}},
		{"restart", []bool{true, true, false, true, false}, []uint32{R, 0, 1, 2, R, 2, 3, 4}},
		{"consecutive skips", []bool{true, true, false, true, true, false}, []uint32{R, 0, 1, 2, R, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.InitForNear()
			w := gs.NewPacketWriter(256)
			adgifPacket(w, 0x100, setupRGB)
			vertexTag(w, gs.PrimTriangleStrip, true, tt.skips...)
			kickNear(t, r, w.Bytes())

			vertices, indices := r.Bucket(BucketRGBTexture)
			if !slices.Equal(indices, tt.want) {
				t.Errorf("indices = %v, want %v", indices, tt.want)
			}
			if len(vertices) != len(tt.skips) {
				t.Errorf("got %d vertices, want %d", len(vertices), len(tt.skips))
			}
		})
	}
}

func TestFanIndices(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleFan, true, false, false, false, true, false)
	kickNear(t, r, w.Bytes())

	_, indices := r.Bucket(BucketRGBTexture)
	want := []uint32{R, 0, 1, 2, R, 0, 3, 4}
	if !slices.Equal(indices, want) {
		t.Errorf("indices = %v, want %v", indices, want)
	}
}

func TestStripsAcrossTags(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(512)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, false, true, true, false)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	kickNear(t, r, w.Bytes())

	_, indices := r.Bucket(BucketRGBTexture)
	want := []uint32{R, 0, 1, 2, R, 3, 4, 5}
	if !slices.Equal(indices, want) {
		t.Errorf("indices = %v, want %v", indices, want)
	}
}

func TestBucketSelection(t *testing.T) {
	tests := []struct {
		name    string
		writes  []adWrite
		want    Bucket
		wantTBP uint32
	}{
		{"rgb", []adWrite{tex0(0x100, gs.PSMCT32, true), tex1, miptbp1, miptbp2, alpha1}, BucketRGBTexture, 0x100},
		{"alpha", []adWrite{tex0(0x100, gs.PSMCT32, true), tex1, miptbp1, frame(0x00ffffff), alpha1}, BucketAlpha, 0x100},
		{"env map", []adWrite{tex0(0x100, gs.PSMCT32, true), tex1, miptbp1, clamp(true), alpha1}, BucketEnvMap, 0x100},
		{"wrap clamp without texture alpha", []adWrite{tex0(0x100, gs.PSMCT32, false), tex1, miptbp1, clamp(false), alpha1}, BucketRGBTexture, 0x100},
		{"wrap clamp", []adWrite{tex0(0x100, gs.PSMCT32, true), tex1, miptbp1, clamp(false), alpha1}, BucketRGBTexture, 0x100},
		{"zero frame mask", []adWrite{tex0(0x100, gs.PSMCT32, true), frame(0)}, BucketRGBTexture, 0x100},
		{"texture alpha off after clamp", []adWrite{clamp(true), tex0(0x100, gs.PSMCT32, false)}, BucketRGBTexture, 0x100},
		{"clamp after frame mask", []adWrite{frame(0xff000000), clamp(true), tex0(0x100, gs.PSMCT32, true)}, BucketEnvMap, 0x100},
		{"two writes", []adWrite{tex0(0x200, gs.PSMCT32, true), frame(0x00ffffff)}, BucketAlpha, 0x200},
		{"single write", []adWrite{tex0(0x300, gs.PSMCT32, false)}, BucketRGBTexture, 0x300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.InitForNear()
			w := gs.NewPacketWriter(256)
			adBlock(w, tt.writes...)
			vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
			kickNear(t, r, w.Bytes())

			for b := Bucket(0); b < bucketCount; b++ {
				v, _ := r.Bucket(b)
				if got, want := len(v) != 0, b == tt.want; got != want {
					t.Errorf("bucket %v has vertices: %t, want %t", b, got, want)
				}
			}
			if got := r.Stats().Vertices[tt.want]; got != 3 {
				t.Errorf("Stats().Vertices[%v] = %d, want 3", tt.want, got)
			}
			if got := r.buckets[tt.want].tbp; got != tt.wantTBP {
				t.Errorf("bucket %v tbp = %#x, want %#x", tt.want, got, tt.wantTBP)
			}
		})
	}
}

func TestBlockWithoutTextureKeepsBucket(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(512)
	adgifPacket(w, 0x200, setupAlpha)
	adBlock(w, adWrite{gs.AddrAlpha1, uint64(gs.MakeAlpha(gs.BlendSource, gs.BlendDest, gs.BlendSource, gs.BlendDest, 0))})
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	kickNear(t, r, w.Bytes())

	if v, _ := r.Bucket(BucketAlpha); len(v) != 3 {
		t.Fatalf("alpha bucket has %d vertices, want 3", len(v))
	}
	b := &r.buckets[BucketAlpha]
	if b.frameMask != 0x00ffffff {
		t.Errorf("frame mask = %#x, want it kept", b.frameMask)
	}
	if b.mode.AlphaBlend() != gs.BlendSrcDstSrcDst {
		t.Errorf("blend = %v, want %v", b.mode.AlphaBlend(), gs.BlendSrcDstSrcDst)
	}
}

func TestVertexAttributes(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	kickNear(t, r, w.Bytes())

	vertices, _ := r.Bucket(BucketRGBTexture)
	v := vertices[2]
	if v.Pos != [3]float32{32, 0x100, 0x2000} {
		t.Errorf("Pos = %v", v.Pos)
	}
	if v.RGBA != [4]uint8{0x10, 0x20, 0x30, 0x40} {
		t.Errorf("RGBA = %v", v.RGBA)
	}
	if v.STQ != [3]float32{2, 1, 1} {
		t.Errorf("STQ = %v", v.STQ)
	}
	if v.Flags&gsdirect.VertexTCC == 0 {
		t.Error("TCC flag not set")
	}
}

func TestProtocolErrors(t *testing.T) {
	badADGIF := func(addr gs.Address, value uint64) []byte {
		w := gs.NewPacketWriter(128)
		w.Tag(gs.MakeTag(gs.FormatPacked, 1, true, nil, gs.RegAD))
		w.AD(addr, value)
		return w.Bytes()
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"decal", badADGIF(gs.AddrTex0_1, uint64(gs.MakeTex0(0x100, gs.PSMCT32, true, gs.TexDecal))), gsdirect.ErrUnsupportedTextureFunction},
		{"no mag filter", badADGIF(gs.AddrTex1_1, uint64(gs.MakeTex1(false))), ErrUnsupportedFilter},
		{"clamp s only", badADGIF(gs.AddrClamp1, uint64(gs.MakeClamp(true, false))), ErrUnsupportedClamp},
		{"scissor", badADGIF(gs.AddrScissor1, 0), gsdirect.ErrUnsupportedAddress},
		{"sprite", func() []byte {
			w := gs.NewPacketWriter(128)
			vertexTag(w, gs.PrimSprite, true, false)
			return w.Bytes()
		}(), gsdirect.ErrUnsupportedPrim},
		{"reglist", func() []byte {
			w := gs.NewPacketWriter(64)
			w.Tag(gs.MakeTag(gs.FormatRegList, 1, true, nil, gs.RegNop, gs.RegNop))
			w.Reg(0).Reg(0)
			return w.Bytes()
		}(), gs.ErrUnsupportedFormat},
		{"short", badADGIF(gs.AddrTex1_1, uint64(gs.MakeTex1(true)))[:24], gs.ErrShortPacket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.InitForNear()
			_, err := r.KickFromNear(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("KickFromNear() = %v, want %v", err, tt.want)
			}
			var pe *gsdirect.PacketError
			if !errors.As(err, &pe) || pe.Renderer != "ocean-near" {
				t.Errorf("error %v is not a PacketError from ocean-near", err)
			}
		})
	}
}

func TestVertexOverflow(t *testing.T) {
	r := New(WithCapacity(2, 8))
	r.InitForNear()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	if _, err := r.KickFromNear(w.Bytes()); !errors.Is(err, ErrVertexOverflow) {
		t.Fatalf("KickFromNear() = %v, want ErrVertexOverflow", err)
	}
}

func TestIndexOverflow(t *testing.T) {
	r := New(WithCapacity(8, 6))
	r.InitForNear()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	if _, err := r.KickFromNear(w.Bytes()); !errors.Is(err, ErrVertexOverflow) {
		t.Fatalf("KickFromNear() = %v, want ErrVertexOverflow", err)
	}
	if v, _ := r.Bucket(BucketRGBTexture); len(v) != 2 {
		t.Errorf("got %d vertices before overflow, want 2", len(v))
	}
}

func TestTextureChange(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(512)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, false, true, true, false)
	adgifPacket(w, 0x200, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	if _, err := r.KickFromNear(w.Bytes()); !errors.Is(err, ErrTextureChange) {
		t.Fatalf("KickFromNear() = %v, want ErrTextureChange", err)
	}
}

func TestWrongPass(t *testing.T) {
	r := New()
	r.InitForMid()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	if _, err := r.KickFromNear(w.Bytes()); !errors.Is(err, ErrWrongPass) {
		t.Errorf("KickFromNear() during mid = %v, want ErrWrongPass", err)
	}
	rs, _ := newTestState()
	if err := r.FlushNear(rs, nil); !errors.Is(err, ErrWrongPass) {
		t.Errorf("FlushNear() during mid = %v, want ErrWrongPass", err)
	}
}

// threeBuckets writes one strip into every bucket, env map first.
func threeBuckets() []byte {
	w := gs.NewPacketWriter(1024)
	adgifPacket(w, 0x300, setupEnvMap)
	vertexTag(w, gs.PrimTriangleStrip, false, true, true, false, false)
	adgifPacket(w, 0x200, setupAlpha)
	vertexTag(w, gs.PrimTriangleStrip, false, true, true, false)
	adgifPacket(w, 0x100, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	return w.Bytes()
}

func TestFlushNear(t *testing.T) {
	r := New()
	r.InitForNear()
	kickNear(t, r, threeBuckets())

	rs, b := newTestState()
	if err := r.FlushNear(rs, nil); err != nil {
		t.Fatalf("FlushNear: %v", err)
	}
	if len(b.calls) != 3 {
		t.Fatalf("got %d draw calls, want 3", len(b.calls))
	}
	wantTextures := []gsdirect.TextureHandle{1, 2, 3}
	for i, c := range b.calls {
		if got := c.Textures[0].Texture; got != wantTextures[i] {
			t.Errorf("call %d texture = %d, want %d", i, got, wantTextures[i])
		}
		if c.IndexCount != len(b.uploads[i].indices) {
			t.Errorf("call %d IndexCount = %d, want %d", i, c.IndexCount, len(b.uploads[i].indices))
		}
	}

	alpha := b.calls[1].Pipeline
	if alpha.WriteMask != gputypes.ColorWriteMaskAlpha {
		t.Errorf("alpha bucket WriteMask = %v, want alpha only", alpha.WriteMask)
	}
	if alpha.DepthWrite {
		t.Error("alpha bucket writes depth")
	}

	env := b.calls[2]
	if !env.Textures[0].ClampS || !env.Textures[0].ClampT {
		t.Error("env map texture not clamped")
	}
	if env.Pipeline.Blend.Color.SrcFactor != gputypes.BlendFactorDstAlpha {
		t.Errorf("env map blend src = %v, want dst alpha", env.Pipeline.Blend.Color.SrcFactor)
	}
	if want := []uint32{R, 0, 1, 2, 3}; !slices.Equal(b.uploads[2].indices, want) {
		t.Errorf("near env map indices = %v, want %v", b.uploads[2].indices, want)
	}

	for bk := Bucket(0); bk < bucketCount; bk++ {
		if v, i := r.Bucket(bk); len(v) != 0 || len(i) != 0 {
			t.Errorf("bucket %v not empty after flush", bk)
		}
	}
}

func TestFlushMidReversesEnvMap(t *testing.T) {
	r := New()
	r.InitForMid()
	if _, err := r.KickFromMid(threeBuckets()); err != nil {
		t.Fatalf("KickFromMid: %v", err)
	}

	rs, b := newTestState()
	if err := r.FlushMid(rs, nil); err != nil {
		t.Fatalf("FlushMid: %v", err)
	}
	if want := []uint32{3, 2, 1, 0, R}; !slices.Equal(b.uploads[2].indices, want) {
		t.Errorf("mid env map indices = %v, want %v", b.uploads[2].indices, want)
	}
	if want := []uint32{R, 0, 1, 2}; !slices.Equal(b.uploads[0].indices, want) {
		t.Errorf("mid rgb indices = %v, want %v", b.uploads[0].indices, want)
	}

	alpha := b.calls[2].Pipeline.Blend.Alpha
	if alpha.SrcFactor != gputypes.BlendFactorZero || alpha.DstFactor != gputypes.BlendFactorZero {
		t.Errorf("mid env map alpha blend = %+v, want zero", alpha)
	}
}

func TestFlushMissingTexture(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(256)
	adgifPacket(w, 0x3ff, setupRGB)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	kickNear(t, r, w.Bytes())

	rs, b := newTestState()
	if err := r.FlushNear(rs, nil); err != nil {
		t.Fatalf("FlushNear: %v", err)
	}
	if got := b.calls[0].Textures[0].Texture; got != 99 {
		t.Errorf("texture = %d, want placeholder 99", got)
	}
}

func TestFlushAlternateFormat(t *testing.T) {
	tests := []struct {
		name string
		psm  gs.PSM
		want gsdirect.TextureHandle
	}{
		{"normal", gs.PSMCT32, 1},
		{"alternate", gs.PSMT4HH, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.InitForNear()
			w := gs.NewPacketWriter(256)
			adBlock(w, tex0(0x100, tt.psm, true), tex1, miptbp1, miptbp2, alpha1)
			vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
			kickNear(t, r, w.Bytes())

			rs, b := newTestState()
			rs.Textures.(*texpool.Pool).InsertAlternateFormat(0x100, 7)
			if err := r.FlushNear(rs, nil); err != nil {
				t.Fatalf("FlushNear: %v", err)
			}
			if got := b.calls[0].Textures[0].Texture; got != tt.want {
				t.Errorf("texture = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAlternateFormatChangesTexture(t *testing.T) {
	r := New()
	r.InitForNear()
	w := gs.NewPacketWriter(512)
	adBlock(w, tex0(0x100, gs.PSMCT32, true), tex1)
	vertexTag(w, gs.PrimTriangleStrip, false, true, true, false)
	adBlock(w, tex0(0x100, gs.PSMT4HH, true), tex1)
	vertexTag(w, gs.PrimTriangleStrip, true, true, true, false)
	if _, err := r.KickFromNear(w.Bytes()); !errors.Is(err, ErrTextureChange) {
		t.Fatalf("KickFromNear() = %v, want ErrTextureChange", err)
	}
}

func TestFlushNoBackend(t *testing.T) {
	r := New()
	r.InitForNear()
	kickNear(t, r, threeBuckets())
	if err := r.FlushNear(&gsdirect.RenderState{}, nil); !errors.Is(err, gsdirect.ErrNoBackend) {
		t.Errorf("FlushNear() = %v, want ErrNoBackend", err)
	}
}

func TestReverseIndices(t *testing.T) {
	tests := []struct {
		in, want []uint32
	}{
		{nil, nil},
		{[]uint32{R, 0, 1, 2}, []uint32{2, 1, 0, R}},
		{[]uint32{R, 0, 1, 2, R, 3, 4, 5}, []uint32{5, 4, 3, R, 2, 1, 0, R}},
	}
	for _, tt := range tests {
		got := slices.Clone(tt.in)
		ReverseIndices(got)
		if !slices.Equal(got, tt.want) {
			t.Errorf("ReverseIndices(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFrameWriteMask(t *testing.T) {
	tests := []struct {
		fbmsk uint32
		want  gputypes.ColorWriteMask
	}{
		{0, gputypes.ColorWriteMaskAll},
		{0x00ffffff, gputypes.ColorWriteMaskAlpha},
		{0xff000000, gputypes.ColorWriteMaskRed | gputypes.ColorWriteMaskGreen | gputypes.ColorWriteMaskBlue},
		{0x00000001, gputypes.ColorWriteMaskGreen | gputypes.ColorWriteMaskBlue | gputypes.ColorWriteMaskAlpha},
	}
	for _, tt := range tests {
		if got := frameWriteMask(tt.fbmsk); got != tt.want {
			t.Errorf("frameWriteMask(%#x) = %v, want %v", tt.fbmsk, got, tt.want)
		}
	}
}
