// Package backend provides a pluggable registry of render targets.
//
// A Target executes the draw calls produced by the gsdirect and ocean
// renderers, owns the textures they bind and returns the finished frame as
// an image.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import (
//		_ "github.com/gogpu/gsdirect/backend/software"
//		_ "github.com/gogpu/gsdirect/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// GPU if one can be opened, CPU otherwise
//	t, err := backend.Default(640, 448)
//
//	// Or request a specific backend
//	t, err := backend.Get("software", 640, 448)
//
// # Usage with Renderers
//
//	defer t.Close()
//	pool := texpool.New(512, t)
//	rs := &gsdirect.RenderState{Backend: t, Textures: pool}
//
//	t.Clear(color.RGBA{A: 0xff})
//	// render and flush packets ...
//	img, err := t.Frame()
//
// # Available Backends
//
//   - "software": CPU reference rasterizer (always available)
//   - "wgpu": GPU rendering via gogpu/wgpu HAL (Vulkan)
//   - "recorder": records every call, optionally forwarding to another target
package backend
