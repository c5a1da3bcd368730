package gsdirect

import (
	"encoding/binary"
	"math"
)

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// stripTriangles counts the triangles formed by a restart-separated
// triangle strip index list.
func stripTriangles(indices []uint32) int {
	tris, run := 0, 0
	for _, idx := range indices {
		if idx == RestartIndex {
			run = 0
			continue
		}
		run++
		if run >= 3 {
			tris++
		}
	}
	return tris
}
