// Package ocean renders the ocean mesh streams.
//
// The ocean microcode emits short GIF packets: an A+D block that sets up a
// texture (an ADGIF) followed by vertex tags carrying one strip or fan each.
// Every vertex goes into one of three buckets, chosen by the register writes
// of the last ADGIF:
//
//   - BucketEnvMap: the ADGIF wrote CLAMP_1
//   - BucketAlpha: the ADGIF wrote FRAME_1 with a nonzero FBMSK
//   - BucketRGBTexture: anything else
//
// Buckets are drawn at flush time in the order RGB texture, alpha, env map.
// The alpha bucket writes only framebuffer alpha, which the env map bucket
// then uses as its blend factor.
//
// The near and mid passes share the format. In the mid pass the env map
// indices are reversed so the higher detail geometry, which the microcode
// emits last, is drawn first; its blend clears destination alpha, so the
// lower detail geometry drawn over it afterwards adds nothing.
package ocean
