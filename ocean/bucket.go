package ocean

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/gs"
	"github.com/gogpu/gsdirect/internal/arena"
	"github.com/gogpu/gsdirect/profiling"
)

// Bucket is an output group of ocean geometry.
type Bucket int

// Buckets.
const (
	BucketRGBTexture Bucket = iota
	BucketAlpha
	BucketEnvMap
	bucketCount
)

var bucketNames = [...]string{"rgb-texture", "alpha", "env-map"}

func (b Bucket) String() string {
	if b >= 0 && int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return fmt.Sprintf("Bucket(%d)", int(b))
}

// drawOrder is the order buckets are flushed in. The alpha bucket fills
// destination alpha before the env map bucket blends with it.
var drawOrder = [...]Bucket{BucketRGBTexture, BucketAlpha, BucketEnvMap}

// indicesPerVertex is the worst case: a fan triangle is a restart and three
// indices.
const indicesPerVertex = 4

type bucket struct {
	vertices  *arena.Buffer[gsdirect.Vertex]
	indices   *arena.Buffer[uint32]
	mode      gs.DrawMode
	fix       uint8
	frameMask uint32
	tbp       uint32
	alternate bool
	textured  bool
}

func (b *bucket) reset() {
	b.vertices.Reset()
	b.indices.Reset()
	b.mode = gs.DefaultDrawMode()
	b.fix = 0
	b.frameMask = 0
	b.tbp = 0
	b.alternate = false
	b.textured = false
}

// assembly is the index emission state of the strip or fan being read.
type assembly struct {
	fan   bool
	first bool
	// skipRun is the number of indices emitted by the last vertex if that
	// vertex did not complete a triangle.
	skipRun int

	center   uint32
	prev     uint32
	fanCount int
}

// stripVertex emits indices for one strip vertex. A skipped vertex restarts
// the strip from the previous vertex; when two skips follow each other the
// first restart produced no triangle and is overwritten.
func (a *assembly) stripVertex(indices *arena.Buffer[uint32], vidx uint32, skip bool) {
	switch {
	case a.first:
		indices.AppendN(gsdirect.RestartIndex, vidx)
		a.first = false
		a.skipRun = 2
	case skip:
		if a.skipRun > 0 {
			indices.Truncate(indices.Len() - a.skipRun)
		}
		indices.AppendN(gsdirect.RestartIndex, vidx-1, vidx)
		a.skipRun = 3
	default:
		indices.Append(vidx)
		a.skipRun = 0
	}
}

// fanVertex emits one triangle per fan vertex after the second, each as its
// own three-vertex strip.
func (a *assembly) fanVertex(indices *arena.Buffer[uint32], vidx uint32, skip bool) {
	switch a.fanCount {
	case 0:
		a.center = vidx
	case 1:
	default:
		if !skip {
			indices.AppendN(gsdirect.RestartIndex, a.center, a.prev, vidx)
		}
	}
	a.prev = vidx
	a.fanCount++
	a.first = false
}

// ReverseIndices reverses an index list in place. A restart-separated strip
// list stays valid and its triangles are visited in the opposite order.
func ReverseIndices(indices []uint32) {
	slices.Reverse(indices)
}

// pipeline returns the pipeline state for drawing bucket sel.
func (r *Renderer) pipeline(sel Bucket) gsdirect.PipelineConfig {
	b := &r.buckets[sel]
	cfg := gsdirect.NewPipelineConfig(b.mode, b.fix, [3]uint8{})
	switch sel {
	case BucketAlpha:
		cfg.WriteMask = frameWriteMask(b.frameMask)
		cfg.DepthWrite = false
	case BucketEnvMap:
		cfg.DepthWrite = false
		if r.pass == PassMid {
			cfg.BlendEnabled = true
			cfg.Blend.Alpha = gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorZero,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			}
		}
	}
	return cfg
}

// frameWriteMask converts FBMSK, whose set bits protect framebuffer bits,
// to a channel write mask. Partially masked channels are not written.
func frameWriteMask(fbmsk uint32) gputypes.ColorWriteMask {
	mask := gputypes.ColorWriteMaskNone
	channels := [4]gputypes.ColorWriteMask{
		gputypes.ColorWriteMaskRed,
		gputypes.ColorWriteMaskGreen,
		gputypes.ColorWriteMaskBlue,
		gputypes.ColorWriteMaskAlpha,
	}
	for i, c := range channels {
		if (fbmsk>>(8*i))&0xff == 0 {
			mask |= c
		}
	}
	return mask
}

// FlushNear draws the near pass buckets and empties them.
func (r *Renderer) FlushNear(rs *gsdirect.RenderState, prof *profiling.Node) error {
	return r.flush(PassNear, rs, prof)
}

// FlushMid draws the mid pass buckets and empties them. The env map bucket
// is drawn in reverse.
func (r *Renderer) FlushMid(rs *gsdirect.RenderState, prof *profiling.Node) error {
	return r.flush(PassMid, rs, prof)
}

func (r *Renderer) flush(p Pass, rs *gsdirect.RenderState, prof *profiling.Node) error {
	if r.pass != p {
		return fmt.Errorf("ocean: %v flush during %v pass: %w", p, r.pass, ErrWrongPass)
	}
	defer prof.Track()()

	for _, sel := range drawOrder {
		b := &r.buckets[sel]
		if b.indices.Len() == 0 {
			continue
		}
		if rs == nil || rs.Backend == nil {
			return fmt.Errorf("ocean-%v: %w", p, gsdirect.ErrNoBackend)
		}
		indices := b.indices.Slice()
		if sel == BucketEnvMap && p == PassMid {
			ReverseIndices(indices)
		}

		rs.Backend.SetDepthWrite(true)
		if err := rs.Backend.Upload(b.vertices.Slice(), indices); err != nil {
			return fmt.Errorf("ocean-%v: %v upload: %w", p, sel, err)
		}
		call := gsdirect.DrawCall{
			StartIndex: 0,
			IndexCount: len(indices),
			Pipeline:   r.pipeline(sel),
			Textures: []gsdirect.TextureBinding{{
				Texture: r.texture(rs, b),
				Filter:  b.mode.Filter(),
				ClampS:  b.mode.ClampS(),
				ClampT:  b.mode.ClampT(),
			}},
		}
		if err := rs.Backend.IssueDraw(call); err != nil {
			return fmt.Errorf("ocean-%v: %v draw: %w", p, sel, err)
		}
		r.stats.DrawCalls++
		prof.AddDrawCall()
		prof.AddVertices(b.vertices.Len())

		gsdirect.Logger().Debug("ocean flush",
			"pass", p, "bucket", sel, "vertices", b.vertices.Len(), "indices", len(indices))
		b.vertices.Reset()
		b.indices.Reset()
	}
	return nil
}

func (r *Renderer) texture(rs *gsdirect.RenderState, b *bucket) gsdirect.TextureHandle {
	if rs.Textures == nil {
		return 0
	}
	lookup := rs.Textures.Lookup
	if b.alternate {
		lookup = rs.Textures.LookupAlternateFormat
	}
	if h, ok := lookup(b.tbp); ok {
		return h
	}
	gsdirect.Logger().Warn("texture not found, using placeholder",
		"renderer", "ocean-"+r.pass.String(), "tbp", b.tbp, "alternate", b.alternate)
	return rs.Textures.Placeholder()
}
