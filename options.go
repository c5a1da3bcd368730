package gsdirect

import "github.com/gogpu/gsdirect/gs"

// Option configures a DirectRenderer during creation.
//
// Example:
//
//	r := gsdirect.New(
//	    gsdirect.WithName("sky"),
//	    gsdirect.WithCapacity(4096, 16384, 256),
//	)
type Option func(*options)

// BlendHook is called with the ALPHA selectors of a blend equation the
// renderer does not recognise. The blend state is left unchanged.
type BlendHook func(a gs.Alpha)

type options struct {
	name           string
	maxVertices    int
	maxIndices     int
	maxDraws       int
	headroom       int
	floatPositions bool
	blendHook      BlendHook
}

// Default buffer sizes.
const (
	DefaultMaxVertices = 8192
	DefaultMaxIndices  = 4 * DefaultMaxVertices
	DefaultMaxDraws    = 1024
)

func defaultOptions() options {
	return options{
		name:        "direct",
		maxVertices: DefaultMaxVertices,
		maxIndices:  DefaultMaxIndices,
		maxDraws:    DefaultMaxDraws,
	}
}

// WithName sets the name used in log messages and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithCapacity sets the vertex, index and draw buffer sizes. Values below
// one keep the default. One vertex needs at most four indices, so an index
// capacity below four times the vertex capacity makes flushes happen early.
func WithCapacity(vertices, indices, draws int) Option {
	return func(o *options) {
		if vertices > 0 {
			o.maxVertices = vertices
		}
		if indices > 0 {
			o.maxIndices = indices
		}
		if draws > 0 {
			o.maxDraws = draws
		}
	}
}

// WithHeadroom makes the renderer flush when fewer than n vertices (and
// their indices) of space would remain after the next vertex.
func WithHeadroom(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.headroom = n
		}
	}
}

// WithFloatPositions selects the floating point XYZF2 layout used by
// microcode that outputs pixel coordinates as floats.
func WithFloatPositions() Option {
	return func(o *options) {
		o.floatPositions = true
	}
}

// WithBlendHook installs a callback for unrecognised ALPHA selectors.
func WithBlendHook(h BlendHook) Option {
	return func(o *options) {
		o.blendHook = h
	}
}
