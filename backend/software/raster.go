package software

import (
	"math"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
)

// drawState is the per-draw state resolved once before rasterizing.
type drawState struct {
	cfg        gsdirect.PipelineConfig
	depthWrite bool
	units      [gsdirect.TextureUnits]sampler
	fog        [3]float32
}

func (b *Backend) newDrawState(call gsdirect.DrawCall) *drawState {
	st := &drawState{
		cfg:        call.Pipeline,
		depthWrite: call.Pipeline.DepthWrite && b.depthWrite,
	}
	for _, tb := range call.Textures {
		if tb.Unit < 0 || tb.Unit >= gsdirect.TextureUnits {
			continue
		}
		st.units[tb.Unit] = sampler{
			img:    b.texture(tb.Texture),
			filter: tb.Filter,
			clampS: tb.ClampS,
			clampT: tb.ClampT,
		}
	}
	for i, c := range call.Pipeline.FogColor {
		st.fog[i] = float32(c) / 255
	}
	return st
}

// screenVertex is a vertex projected to pixel space.
type screenVertex struct {
	x, y, z float32
	v       *gsdirect.Vertex
}

func (b *Backend) project(v *gsdirect.Vertex) screenVertex {
	x, y, z := backend.Project(v.Pos, b.width, b.height)
	return screenVertex{x: x, y: y, z: z, v: v}
}

// edge returns twice the signed area of the triangle (a, b, c).
func edge(ax, ay, bx, by, cx, cy float32) float32 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// setupTriangle is a projected, counter-clockwise triangle with its
// clipped bounding box.
type setupTriangle struct {
	p0, p1, p2 screenVertex
	last       *gsdirect.Vertex
	invArea    float32

	minX, maxX int
	minY, maxY int
}

// setup projects a triangle and reports false when it covers no area or
// lies outside the frame. Texture unit and flags come from the last vertex.
func (b *Backend) setup(v0, v1, v2 *gsdirect.Vertex) (setupTriangle, bool) {
	p0, p1, p2 := b.project(v0), b.project(v1), b.project(v2)

	area := edge(p0.x, p0.y, p1.x, p1.y, p2.x, p2.y)
	if area == 0 {
		return setupTriangle{}, false
	}
	if area < 0 {
		p0, p1 = p1, p0
		area = -area
	}

	t := setupTriangle{
		p0: p0, p1: p1, p2: p2,
		last:    v2,
		invArea: 1 / area,
		minX:    max(int(math.Floor(float64(min(p0.x, p1.x, p2.x)))), 0),
		maxX:    min(int(math.Ceil(float64(max(p0.x, p1.x, p2.x)))), b.width),
		minY:    max(int(math.Floor(float64(min(p0.y, p1.y, p2.y)))), 0),
		maxY:    min(int(math.Ceil(float64(max(p0.y, p1.y, p2.y)))), b.height),
	}
	return t, t.minX < t.maxX && t.minY < t.maxY
}

// rasterize shades the pixels of t in rows [y0, y1), with pixel centers at
// +0.5, and returns the number of covered pixels.
func (b *Backend) rasterize(st *drawState, t *setupTriangle, y0, y1 int) int {
	p0, p1, p2 := &t.p0, &t.p1, &t.p2
	smp := &st.units[t.last.TexUnit%gsdirect.TextureUnits]
	covered := 0

	for y := max(t.minY, y0); y < min(t.maxY, y1); y++ {
		py := float32(y) + 0.5
		for x := t.minX; x < t.maxX; x++ {
			px := float32(x) + 0.5

			w0 := edge(p1.x, p1.y, p2.x, p2.y, px, py)
			w1 := edge(p2.x, p2.y, p0.x, p0.y, px, py)
			w2 := edge(p0.x, p0.y, p1.x, p1.y, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			w0 *= t.invArea
			w1 *= t.invArea
			w2 *= t.invArea

			var f fragment
			f.depth = w0*p0.z + w1*p1.z + w2*p2.z
			for c := 0; c < 4; c++ {
				f.color[c] = (w0*float32(p0.v.RGBA[c]) + w1*float32(p1.v.RGBA[c]) + w2*float32(p2.v.RGBA[c])) / 128
			}
			for c := 0; c < 3; c++ {
				f.stq[c] = w0*p0.v.STQ[c] + w1*p1.v.STQ[c] + w2*p2.v.STQ[c]
			}
			f.fog = (w0*float32(p0.v.Fog) + w1*float32(p1.v.Fog) + w2*float32(p2.v.Fog)) / 255
			f.flags = t.last.Flags

			covered++
			b.shade(st, smp, x, y, &f)
		}
	}
	return covered
}
