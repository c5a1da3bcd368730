package gsdirect

import "github.com/gogpu/gsdirect/profiling"

// indicesPerVertex is the worst case number of indices one vertex adds: a
// strip-start restart followed by a restart/previous/new triple.
const indicesPerVertex = 4

// closeToFull reports whether the next vertex might not fit.
func (r *DirectRenderer) closeToFull() bool {
	n := 1 + r.opts.headroom
	return !r.vertices.Fits(n) || !r.indices.Fits(indicesPerVertex*n)
}

// vertex appends a vertex with the current color and texture coordinates.
// kick is false when the XYZF2 write had ADC set: the vertex enters the
// strip without completing a triangle, so the strip is restarted from the
// previous vertex.
func (r *DirectRenderer) vertex(pos [3]float32, fog uint8, kick bool, rs *RenderState, prof *profiling.Node) error {
	if r.closeToFull() {
		if err := r.flushForCapacity(rs, prof); err != nil {
			return err
		}
	}
	if !r.state.drawOpen {
		if err := r.openDraw(); err != nil {
			return err
		}
	}

	vidx := uint32(r.vertices.Len())
	v := r.vertices.Next()
	v.Pos = pos
	v.RGBA = r.state.rgba
	v.STQ = r.state.st
	v.TexUnit = uint8(r.draws.Last().texUnit)
	v.Fog = fog
	v.Flags = r.state.vertexFlags

	if r.state.nextVertexStartsStrip {
		r.indices.Append(RestartIndex)
		r.state.nextVertexStartsStrip = false
		r.state.stripLen = 0
	}
	r.state.stripLen++

	switch {
	case kick:
		r.indices.Append(vidx)
	case vidx == 0:
		// Nothing to share at the start of the buffer.
		if last := r.indices.Last(); last == nil || *last != RestartIndex {
			r.indices.Append(RestartIndex)
		}
		r.indices.Append(vidx)
	default:
		r.indices.AppendN(RestartIndex, vidx-1, vidx)
	}
	return nil
}

// flushForCapacity flushes full buffers in the middle of a strip. The last
// two vertices of the open strip are carried into the new buffers so the
// strip continues across the flush.
func (r *DirectRenderer) flushForCapacity(rs *RenderState, prof *profiling.Node) error {
	carry := 0
	if r.state.drawOpen && !r.state.nextVertexStartsStrip {
		carry = min(r.state.stripLen, 2)
	}
	h := r.opts.headroom
	if r.vertices.Cap() < carry+1+h || r.indices.Cap() < 1+carry+indicesPerVertex*(1+h) {
		carry = 0
	}
	var saved [2]Vertex
	n := r.vertices.Len()
	for i := 0; i < carry; i++ {
		saved[i] = *r.vertices.At(n - carry + i)
	}

	if err := r.FlushPending(rs, prof); err != nil {
		return err
	}
	if carry == 0 {
		return nil
	}

	if err := r.openDraw(); err != nil {
		return err
	}
	unit := uint8(r.draws.Last().texUnit)
	r.indices.Append(RestartIndex)
	for i := 0; i < carry; i++ {
		v := r.vertices.Next()
		*v = saved[i]
		v.TexUnit = unit
		r.indices.Append(uint32(i))
	}
	r.state.nextVertexStartsStrip = false
	r.state.stripLen = carry
	return nil
}
