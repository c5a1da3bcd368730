// Package cache provides a generic LRU cache.
//
//	c := cache.New[uint32, gsdirect.TextureHandle](512)
//	c.OnEvict(func(tbp uint32, h gsdirect.TextureHandle) { backend.DestroyTexture(h) })
//	c.Set(0x2a0, h)
//	h, ok := c.Get(0x2a0)
//
// The texture pool uses it to bound the number of resident textures, and
// the wgpu backend uses it for compiled pipelines.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
