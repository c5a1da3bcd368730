package gsdirect

import "github.com/gogpu/gsdirect/gs"

// RestartIndex is the primitive restart sentinel in the index stream.
const RestartIndex uint32 = 0xFFFFFFFF

// TextureUnits is the number of textures one draw call can bind. Draws that
// differ only in texture are merged until the units run out.
const TextureUnits = 10

// Vertex flag bits.
const (
	VertexTCC   uint8 = 1 << 0 // texture alpha replaces vertex alpha
	VertexDecal uint8 = 1 << 1 // texture color is not modulated
	VertexFog   uint8 = 1 << 2 // fog is applied
)

// Vertex is one entry of the vertex buffer uploaded to the backend.
//
// In integer position mode Pos holds the raw 12.4 fixed point X and Y and
// the 24-bit Z from XYZF2; all of them are exactly representable as float32.
// In float mode X and Y are scaled by 16 to the same units.
type Vertex struct {
	Pos     [3]float32
	RGBA    [4]uint8
	STQ     [3]float32
	TexUnit uint8
	Fog     uint8
	Flags   uint8
	_       uint8
}

// VertexSize is the size of a packed Vertex in GPU buffers.
const VertexSize = 32

// TextureHandle identifies a texture owned by a backend.
type TextureHandle uint64

// TextureBinding is the texture and sampler state of one texture unit.
type TextureBinding struct {
	Unit    int
	Texture TextureHandle
	Filter  bool
	ClampS  bool
	ClampT  bool
}

// DrawCall describes one indexed draw over the last uploaded buffers.
//
// Textures is only valid for the duration of the IssueDraw call; backends
// that keep it must copy it.
type DrawCall struct {
	StartIndex int
	IndexCount int
	Pipeline   PipelineConfig
	Textures   []TextureBinding
}

// Backend executes draws on a GPU or CPU rasterizer.
//
// The index stream is a triangle strip with RestartIndex separating strips.
// SetDepthWrite is a pass-level mask: a draw writes depth only when both
// the mask and its PipelineConfig allow it.
type Backend interface {
	Upload(vertices []Vertex, indices []uint32) error
	IssueDraw(call DrawCall) error
	SetDepthWrite(enabled bool)
}

// TexturePool maps GS texture base pointers to backend textures.
// Implementations must be safe for concurrent use; textures are loaded on
// other goroutines while a renderer looks them up.
type TexturePool interface {
	// Lookup returns the texture uploaded for tbp.
	Lookup(tbp uint32) (TextureHandle, bool)
	// LookupAlternateFormat returns the texture stored in the upper nibble
	// of tbp's 8-bit pages (PSMT4HH).
	LookupAlternateFormat(tbp uint32) (TextureHandle, bool)
	// Placeholder returns the texture drawn in place of missing ones.
	Placeholder() TextureHandle
}

// RenderState is the shared per-frame state passed to every renderer.
type RenderState struct {
	Backend  Backend
	Textures TexturePool
}

// alternateFormatFlag marks a TBP that refers to a PSMT4HH texture.
const alternateFormatFlag = 0x8000

// resolveTexture finds the texture for a draw's TBP, falling back to the
// placeholder.
func resolveTexture(rs *RenderState, tbp uint32, renderer string) TextureHandle {
	if rs.Textures == nil {
		return 0
	}
	var (
		h  TextureHandle
		ok bool
	)
	if tbp&alternateFormatFlag != 0 {
		h, ok = rs.Textures.LookupAlternateFormat(tbp &^ alternateFormatFlag)
	} else {
		h, ok = rs.Textures.Lookup(tbp)
	}
	if !ok {
		Logger().Warn("texture not found, using placeholder", "renderer", renderer, "tbp", tbp)
		return rs.Textures.Placeholder()
	}
	return h
}

// TextureFlags returns the vertex flag bits for a draw mode.
func TextureFlags(mode gs.DrawMode) uint8 {
	var f uint8
	if mode.TCC() {
		f |= VertexTCC
	}
	if mode.Decal() {
		f |= VertexDecal
	}
	if mode.Fog() {
		f |= VertexFog
	}
	return f
}
