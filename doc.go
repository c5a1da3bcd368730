// Package gsdirect renders captured PS2 GIF command streams with a modern
// GPU API.
//
// # Overview
//
// A game's renderer produces GIF packets: tagged blocks of Graphics
// Synthesizer register writes that set up blending, depth testing and
// texturing and then stream vertices. gsdirect walks those packets, tracks
// the GS state they program and turns the vertices into triangle strip
// index buffers with primitive restart. Fixed-function GS state is mapped
// to pipeline state (gputypes blend, depth and sampler settings) that any
// Backend can execute.
//
// # Quick Start
//
//	r := gsdirect.New(gsdirect.WithName("sky"))
//	rs := &gsdirect.RenderState{Backend: backend, Textures: pool}
//
//	r.ResetState()
//	for _, packet := range packets {
//	    if _, err := r.Render(packet, rs, prof); err != nil {
//	        r.ResetState()
//	        return err
//	    }
//	}
//	if err := r.FlushPending(rs, prof); err != nil {
//	    return err
//	}
//
// # Batching
//
// Any change to draw state closes the current draw; the next vertex opens
// a new one. Draws are assigned texture units round-robin, and at flush time
// up to TextureUnits consecutive draws with identical state are merged into
// a single draw call that binds one texture per unit.
//
// # Errors
//
// Streams that use register combinations the renderer does not emulate are
// rejected with an error wrapping one of the ErrUnsupported* values inside
// a *PacketError. Missing textures are not errors: the pool's placeholder
// is drawn and a warning is logged.
//
// # Packages
//
//   - gs: GIF tag and GS register formats
//   - ocean: the ocean renderer with near/mid bucketing
//   - texpool: a concurrent texture pool
//   - backend/software, backend/wgpu, backend/recorder: backends
//   - profiling: per-pass draw statistics
package gsdirect

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
