// Package recorder provides a backend that records every call it receives.
//
// Recordings are inspectable: each call is a typed Command, buffer uploads
// are kept as copies and draws remember which upload they read. Tests use
// it to assert on the exact draw calls a renderer issues, and gsreplay
// uses it to print a trace of a capture.
//
//	rec := recorder.Wrap(target)
//	rs := &gsdirect.RenderState{Backend: rec, Textures: pool}
//	// render ...
//	rec.WriteTo(os.Stdout)
//
// Importing the package registers the "recorder" backend, which records
// without drawing anything.
package recorder
