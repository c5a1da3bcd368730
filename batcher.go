package gsdirect

import (
	"fmt"

	"github.com/gogpu/gsdirect/gs"
	"github.com/gogpu/gsdirect/profiling"
)

// draw is a run of indices rendered with one state and one texture.
type draw struct {
	mode       gs.DrawMode
	fix        uint8
	fogColor   [3]uint8
	tbp        uint32
	startIndex int
	texUnit    int
}

// sameState reports whether two draws can share one draw call.
func (d *draw) sameState(o *draw) bool {
	return d.mode == o.mode && d.fix == o.fix && d.fogColor == o.fogColor
}

// openDraw starts a draw at the current index with the current state.
// Texture units are handed out round-robin so that up to TextureUnits
// consecutive draws can be merged.
func (r *DirectRenderer) openDraw() error {
	if !r.draws.Fits(1) {
		return fmt.Errorf("%d draws: %w", r.draws.Cap(), ErrDrawBufferFull)
	}
	unit := 0
	if last := r.draws.Last(); last != nil {
		unit = (last.texUnit + 1) % TextureUnits
	}
	d := r.draws.Next()
	*d = draw{
		mode:       r.state.mode,
		fix:        r.state.fix,
		fogColor:   r.state.fogColor,
		tbp:        r.state.tbp,
		startIndex: r.indices.Len(),
		texUnit:    unit,
	}
	r.state.drawOpen = true
	r.stats.Draws++
	return nil
}

// FlushPending uploads the buffered geometry and issues its draw calls,
// then empties the buffers. GS state is kept.
func (r *DirectRenderer) FlushPending(rs *RenderState, prof *profiling.Node) error {
	if r.draws.Len() == 0 {
		r.resetBuffers()
		return nil
	}
	if rs == nil || rs.Backend == nil {
		return fmt.Errorf("%s: %w", r.opts.name, ErrNoBackend)
	}
	defer prof.Track()()

	backend := rs.Backend
	backend.SetDepthWrite(true)
	if err := backend.Upload(r.vertices.Slice(), r.indices.Slice()); err != nil {
		return fmt.Errorf("%s: upload: %w", r.opts.name, err)
	}
	r.stats.Flushes++
	r.stats.Vertices += r.vertices.Len()
	r.stats.Indices += r.indices.Len()
	prof.AddVertices(r.vertices.Len())

	indices := r.indices.Slice()
	draws := r.draws.Slice()
	calls := 0
	for i := 0; i < len(draws); {
		first := &draws[i]
		r.textures = append(r.textures[:0], r.binding(rs, first))

		j := i + 1
		for ; j < len(draws) && j < i+TextureUnits; j++ {
			if !draws[j].sameState(first) {
				break
			}
			r.textures = append(r.textures, r.binding(rs, &draws[j]))
			r.stats.MergedDraws++
		}

		end := len(indices)
		if j < len(draws) {
			end = draws[j].startIndex
		}
		if count := end - first.startIndex; count > 0 {
			call := DrawCall{
				StartIndex: first.startIndex,
				IndexCount: count,
				Pipeline:   NewPipelineConfig(first.mode, first.fix, first.fogColor),
				Textures:   r.textures,
			}
			if err := backend.IssueDraw(call); err != nil {
				return fmt.Errorf("%s: draw %d: %w", r.opts.name, i, err)
			}
			r.stats.DrawCalls++
			calls++
			prof.AddDrawCall()
			prof.AddTriangles(stripTriangles(indices[first.startIndex:end]))
		}
		i = j
	}

	Logger().Debug("flush",
		"renderer", r.opts.name,
		"vertices", r.vertices.Len(),
		"indices", r.indices.Len(),
		"draws", len(draws),
		"calls", calls)
	r.resetBuffers()
	return nil
}

func (r *DirectRenderer) binding(rs *RenderState, d *draw) TextureBinding {
	return TextureBinding{
		Unit:    d.texUnit,
		Texture: resolveTexture(rs, d.tbp, r.opts.name),
		Filter:  d.mode.Filter(),
		ClampS:  d.mode.ClampS(),
		ClampT:  d.mode.ClampT(),
	}
}
