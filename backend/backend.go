package backend

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/texpool"
)

// Backend names.
const (
	// BackendSoftware is the name of the CPU reference rasterizer.
	BackendSoftware = "software"

	// BackendWGPU is the name of the gogpu/wgpu HAL backend.
	BackendWGPU = "wgpu"

	// BackendRecorder is the name of the recording backend.
	BackendRecorder = "recorder"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrClosed is returned when a target is used after Close.
	ErrClosed = errors.New("backend: closed")

	// ErrInvalidSize is returned for non-positive target dimensions.
	ErrInvalidSize = errors.New("backend: invalid target size")
)

// Target is a backend that renders into an offscreen frame.
//
// It executes the draws of the renderers (gsdirect.Backend), owns the
// textures they reference (texpool.Creator, texpool.Destroyer) and hands
// back the finished frame.
//
// Targets are registered via Register() and created via Get() or Default().
type Target interface {
	gsdirect.Backend
	texpool.Creator
	texpool.Destroyer

	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Clear fills the frame with c and resets depth to the farthest value.
	Clear(c color.RGBA)

	// Frame finishes all pending draws and returns a copy of the frame.
	Frame() (*image.RGBA, error)

	// Close releases all backend resources.
	// The target should not be used after Close is called.
	Close()
}
