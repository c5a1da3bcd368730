// Package wgpu provides a GPU rendering backend using gogpu/wgpu.
//
// The backend draws the output of the gsdirect renderers with a HAL device
// (Vulkan by default) into an offscreen RGBA8 color target with a 24-bit
// depth attachment. It uses the gogpu/wgpu Pure Go WebGPU implementation;
// the WGSL shader is compiled to SPIR-V with gogpu/naga.
//
// # Architecture Overview
//
//	Renderer -> Upload/IssueDraw -> render pass -> Submit -> Frame readback
//
// Key components:
//
//   - Backend: implements backend.Target on a hal.Device
//   - Pipeline cache: one render pipeline per blend, write mask and depth
//     state, kept in an LRU cache
//   - Per-draw uniforms: screen mapping, alpha test and fog, one 256 byte
//     slot per draw in a shared uniform buffer
//   - Texture units: ten sampled textures per draw, unbound units sample a
//     1x1 white texture
//
// # Registration and Selection
//
// The backend is registered when this package is imported:
//
//	import _ "github.com/gogpu/gsdirect/backend/wgpu"
//
// backend.Default prefers it over the software backend and falls back when
// no GPU can be opened.
//
// # Basic Usage
//
//	target, err := wgpu.New(640, 448)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer target.Close()
//
// A host application that already owns a device can share it through
// NewFromProvider (gpucontext.DeviceProvider) or NewWithDevice.
//
// # Thread Safety
//
// All Backend methods are safe for concurrent use. Texture uploads from
// loader goroutines serialize with draws on an internal mutex.
//
// # Build Tags
//
// Building with -tags nogpu excludes the backend.
package wgpu
