package gsdirect

import (
	"errors"
	"fmt"
)

// Protocol errors. The renderer only understands the register combinations
// that captured streams actually use; anything else aborts the pass.
var (
	// ErrUnsupportedRegister is returned for a register descriptor the
	// dispatcher does not handle in the tag's format.
	ErrUnsupportedRegister = errors.New("gsdirect: unsupported register descriptor")

	// ErrUnsupportedAddress is returned for an A+D write to an unhandled
	// GS register.
	ErrUnsupportedAddress = errors.New("gsdirect: unsupported A+D address")

	// ErrUnsupportedPrim is returned when PRIM selects anything other than
	// gouraud shaded, textured triangle strips.
	ErrUnsupportedPrim = errors.New("gsdirect: unsupported primitive setup")

	// ErrUnsupportedAlphaTest is returned for alpha test functions other
	// than NEVER, ALWAYS and GEQUAL, and for destination alpha testing.
	ErrUnsupportedAlphaTest = errors.New("gsdirect: unsupported alpha test")

	// ErrUnsupportedTextureFunction is returned for HIGHLIGHT and
	// HIGHLIGHT2 texture functions.
	ErrUnsupportedTextureFunction = errors.New("gsdirect: unsupported texture function")

	// ErrUnsupportedDepthBuffer is returned when ZBUF points anywhere but
	// the one 24-bit depth buffer the renderer emulates.
	ErrUnsupportedDepthBuffer = errors.New("gsdirect: unsupported depth buffer")

	// ErrUnsupportedTexA is returned when TEXA expands alpha differently
	// from the fixed setup the texture converter assumes.
	ErrUnsupportedTexA = errors.New("gsdirect: unsupported TEXA")
)

// Resource errors.
var (
	// ErrDrawBufferFull is returned when more draws are opened between two
	// flushes than the renderer was built for.
	ErrDrawBufferFull = errors.New("gsdirect: draw buffer full")

	// ErrNoBackend is returned when a flush has geometry but the render
	// state carries no backend.
	ErrNoBackend = errors.New("gsdirect: no backend")
)

// PacketError reports where in a packet an error was found.
type PacketError struct {
	// Renderer is the name of the renderer that was interpreting the data.
	Renderer string
	// Offset is the byte offset of the tag or block being processed.
	Offset int
	// Err is the underlying error.
	Err error
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("%s: offset %d: %v", e.Renderer, e.Offset, e.Err)
}

func (e *PacketError) Unwrap() error { return e.Err }
