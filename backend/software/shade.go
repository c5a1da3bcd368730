package software

import (
	"image"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gsdirect"
)

// fragment holds interpolated attributes. Colors are in GS units scaled so
// that 0x80 is 1.0.
type fragment struct {
	color [4]float32
	stq   [3]float32
	fog   float32
	depth float32
	flags uint8
}

// sampler is the texture and sampler state bound to one unit.
type sampler struct {
	img            *image.RGBA
	filter         bool
	clampS, clampT bool
}

// shade runs the fragment pipeline for pixel (x, y).
func (b *Backend) shade(st *drawState, smp *sampler, x, y int, f *fragment) {
	cfg := &st.cfg
	src := f.color

	if smp.img != nil && f.stq[2] != 0 {
		tex := smp.sample(f.stq[0]/f.stq[2], f.stq[1]/f.stq[2])
		for c := 0; c < 3; c++ {
			if f.flags&gsdirect.VertexDecal != 0 {
				src[c] = tex[c]
			} else {
				src[c] = tex[c] * f.color[c]
			}
		}
		if f.flags&gsdirect.VertexTCC != 0 {
			if f.flags&gsdirect.VertexDecal != 0 {
				src[3] = tex[3]
			} else {
				src[3] = tex[3] * f.color[3]
			}
		}
	}

	if cfg.AlphaTest && (src[3] < cfg.AlphaMin || src[3] > cfg.AlphaMax) {
		return
	}

	if cfg.Fog && f.flags&gsdirect.VertexFog != 0 {
		k := clamp01(f.fog)
		for c := 0; c < 3; c++ {
			src[c] = src[c]*k + st.fog[c]*(1-k)
		}
	}
	for c := range src {
		src[c] = clamp01(src[c])
	}

	i := y*b.width + x
	if !depthPasses(cfg.DepthCompare, f.depth, b.depth[i]) {
		return
	}
	if st.depthWrite {
		b.depth[i] = f.depth
	}

	off := b.color.PixOffset(x, y)
	pix := b.color.Pix[off : off+4 : off+4]
	var dst [4]float32
	for c := range dst {
		dst[c] = float32(pix[c]) / 255
	}

	out := src
	if cfg.BlendEnabled {
		k := cfg.BlendConstant
		for c := 0; c < 3; c++ {
			out[c] = blendComponent(&cfg.Blend.Color, src[c], dst[c], src, dst, k)
		}
		out[3] = blendComponent(&cfg.Blend.Alpha, src[3], dst[3], src, dst, k)
	}

	masks := [4]gputypes.ColorWriteMask{
		gputypes.ColorWriteMaskRed,
		gputypes.ColorWriteMaskGreen,
		gputypes.ColorWriteMaskBlue,
		gputypes.ColorWriteMaskAlpha,
	}
	for c, m := range masks {
		if cfg.WriteMask&m != 0 {
			pix[c] = toByte(out[c])
		}
	}
}

// blendComponent evaluates one channel of a blend equation. s and d are the
// channel values; src and dst are the full colors for alpha factors.
func blendComponent(bc *gputypes.BlendComponent, s, d float32, src, dst [4]float32, k float32) float32 {
	sf := blendFactor(bc.SrcFactor, s, d, src, dst, k)
	df := blendFactor(bc.DstFactor, s, d, src, dst, k)
	var v float32
	switch bc.Operation {
	case gputypes.BlendOperationSubtract:
		v = s*sf - d*df
	case gputypes.BlendOperationReverseSubtract:
		v = d*df - s*sf
	case gputypes.BlendOperationMin:
		v = min(s, d)
	case gputypes.BlendOperationMax:
		v = max(s, d)
	default:
		v = s*sf + d*df
	}
	return clamp01(v)
}

func blendFactor(f gputypes.BlendFactor, s, d float32, src, dst [4]float32, k float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc:
		return s
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - s
	case gputypes.BlendFactorSrcAlpha:
		return src[3]
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case gputypes.BlendFactorDst:
		return d
	case gputypes.BlendFactorOneMinusDst:
		return 1 - d
	case gputypes.BlendFactorDstAlpha:
		return dst[3]
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	case gputypes.BlendFactorSrcAlphaSaturated:
		return min(src[3], 1-dst[3])
	case gputypes.BlendFactorConstant:
		return k
	case gputypes.BlendFactorOneMinusConstant:
		return 1 - k
	}
	return 1
}

// depthPasses compares a fragment depth against the stored value.
func depthPasses(fn gputypes.CompareFunction, z, stored float32) bool {
	switch fn {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return z < stored
	case gputypes.CompareFunctionEqual:
		return z == stored
	case gputypes.CompareFunctionLessEqual:
		return z <= stored
	case gputypes.CompareFunctionGreater:
		return z > stored
	case gputypes.CompareFunctionNotEqual:
		return z != stored
	case gputypes.CompareFunctionGreaterEqual:
		return z >= stored
	}
	return true
}

// sample returns the texel color at normalized (s, t) in [0, 1] units.
func (smp *sampler) sample(s, t float32) [4]float32 {
	r := smp.img.Rect
	w, h := r.Dx(), r.Dy()
	u := s*float32(w) - 0.5
	v := t*float32(h) - 0.5

	if !smp.filter {
		x := wrap(int(math.Floor(float64(u+0.5))), w, smp.clampS)
		y := wrap(int(math.Floor(float64(v+0.5))), h, smp.clampT)
		return smp.texel(x, y)
	}

	fu, fv := math.Floor(float64(u)), math.Floor(float64(v))
	ax, ay := float32(float64(u)-fu), float32(float64(v)-fv)
	x0 := wrap(int(fu), w, smp.clampS)
	x1 := wrap(int(fu)+1, w, smp.clampS)
	y0 := wrap(int(fv), h, smp.clampT)
	y1 := wrap(int(fv)+1, h, smp.clampT)

	c00, c10 := smp.texel(x0, y0), smp.texel(x1, y0)
	c01, c11 := smp.texel(x0, y1), smp.texel(x1, y1)
	var out [4]float32
	for c := range out {
		top := c00[c] + (c10[c]-c00[c])*ax
		bot := c01[c] + (c11[c]-c01[c])*ax
		out[c] = top + (bot-top)*ay
	}
	return out
}

func (smp *sampler) texel(x, y int) [4]float32 {
	off := smp.img.PixOffset(smp.img.Rect.Min.X+x, smp.img.Rect.Min.Y+y)
	p := smp.img.Pix[off : off+4 : off+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

// wrap maps a texel coordinate into [0, n) by clamping or repeating.
func wrap(i, n int, clampMode bool) int {
	if clampMode {
		return min(max(i, 0), n-1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
