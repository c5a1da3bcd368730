package recorder

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
)

func init() {
	backend.Register(backend.BackendRecorder, func(width, height int) (backend.Target, error) {
		return New(width, height), nil
	})
}

// Recorder is a backend.Target that records every call.
//
// A Recorder created with Wrap forwards each call to the wrapped target
// after recording it; one created with New only records, hands out
// sequential texture handles and returns blank frames.
//
// The Recorder is not safe for concurrent use, except for CreateTexture
// and DestroyTexture when the wrapped target allows it.
type Recorder struct {
	inner         backend.Target
	width, height int
	next          gsdirect.TextureHandle

	commands []Command
	uploads  []Upload
}

var _ backend.Target = (*Recorder)(nil)

// New creates a recorder with no target behind it.
func New(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// Wrap creates a recorder that forwards to inner.
func Wrap(inner backend.Target) *Recorder {
	return &Recorder{inner: inner}
}

// Name returns "recorder", or "recorder(<inner>)" when wrapping a target.
func (r *Recorder) Name() string {
	if r.inner != nil {
		return backend.BackendRecorder + "(" + r.inner.Name() + ")"
	}
	return backend.BackendRecorder
}

// Upload records a copy of the buffers.
func (r *Recorder) Upload(vertices []gsdirect.Vertex, indices []uint32) error {
	r.uploads = append(r.uploads, Upload{
		Vertices: slices.Clone(vertices),
		Indices:  slices.Clone(indices),
	})
	r.commands = append(r.commands, Command{Type: CmdUpload, Upload: len(r.uploads) - 1})
	if r.inner != nil {
		return r.inner.Upload(vertices, indices)
	}
	return nil
}

// IssueDraw records a copy of call.
func (r *Recorder) IssueDraw(call gsdirect.DrawCall) error {
	if len(r.uploads) == 0 {
		return fmt.Errorf("recorder: draw before upload")
	}
	rec := call
	rec.Textures = slices.Clone(call.Textures)
	r.commands = append(r.commands, Command{Type: CmdDraw, Upload: len(r.uploads) - 1, Draw: rec})
	if r.inner != nil {
		return r.inner.IssueDraw(call)
	}
	return nil
}

// SetDepthWrite records the pass-level depth write mask.
func (r *Recorder) SetDepthWrite(enabled bool) {
	r.commands = append(r.commands, Command{Type: CmdDepthWrite, Enabled: enabled})
	if r.inner != nil {
		r.inner.SetDepthWrite(enabled)
	}
}

// CreateTexture records a texture creation.
func (r *Recorder) CreateTexture(img *image.RGBA) (gsdirect.TextureHandle, error) {
	var h gsdirect.TextureHandle
	if r.inner != nil {
		var err error
		if h, err = r.inner.CreateTexture(img); err != nil {
			return 0, err
		}
	} else {
		r.next++
		h = r.next
	}
	r.commands = append(r.commands, Command{Type: CmdCreateTexture, Texture: h})
	return h, nil
}

// DestroyTexture records a texture release.
func (r *Recorder) DestroyTexture(h gsdirect.TextureHandle) {
	r.commands = append(r.commands, Command{Type: CmdDestroyTexture, Texture: h})
	if r.inner != nil {
		r.inner.DestroyTexture(h)
	}
}

// Clear records a clear.
func (r *Recorder) Clear(c color.RGBA) {
	r.commands = append(r.commands, Command{Type: CmdClear})
	if r.inner != nil {
		r.inner.Clear(c)
	}
}

// Frame returns the wrapped target's frame, or a blank one.
func (r *Recorder) Frame() (*image.RGBA, error) {
	if r.inner != nil {
		return r.inner.Frame()
	}
	return image.NewRGBA(image.Rect(0, 0, r.width, r.height)), nil
}

// Close closes the wrapped target.
func (r *Recorder) Close() {
	if r.inner != nil {
		r.inner.Close()
	}
}

// Commands returns the recorded calls.
func (r *Recorder) Commands() []Command { return r.commands }

// Uploads returns the recorded buffer uploads.
func (r *Recorder) Uploads() []Upload { return r.uploads }

// Draws returns the recorded draw calls in order.
func (r *Recorder) Draws() []gsdirect.DrawCall {
	var draws []gsdirect.DrawCall
	for _, c := range r.commands {
		if c.Type == CmdDraw {
			draws = append(draws, c.Draw)
		}
	}
	return draws
}

// DrawIndices returns the slice of the index buffer read by a recorded
// draw command.
func (r *Recorder) DrawIndices(c Command) []uint32 {
	if c.Type != CmdDraw || c.Upload >= len(r.uploads) {
		return nil
	}
	idx := r.uploads[c.Upload].Indices
	end := min(c.Draw.StartIndex+c.Draw.IndexCount, len(idx))
	start := min(max(c.Draw.StartIndex, 0), end)
	return idx[start:end]
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.uploads = r.uploads[:0]
}

// Summary totals the recorded work.
type Summary struct {
	Uploads   int
	Vertices  int
	Draws     int
	Indices   int
	Triangles int
	Textures  int
}

// Summary returns totals over the recorded calls.
func (r *Recorder) Summary() Summary {
	var s Summary
	for _, c := range r.commands {
		switch c.Type {
		case CmdUpload:
			s.Uploads++
			s.Vertices += len(r.uploads[c.Upload].Vertices)
		case CmdDraw:
			s.Draws++
			s.Indices += c.Draw.IndexCount
			s.Triangles += stripTriangles(r.DrawIndices(c))
		case CmdCreateTexture:
			s.Textures++
		}
	}
	return s
}

// String formats the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf("%d uploads, %d vertices, %d draws, %d indices, %d triangles, %d textures",
		s.Uploads, s.Vertices, s.Draws, s.Indices, s.Triangles, s.Textures)
}

// WriteTo writes one line per recorded call followed by the summary.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, c := range r.commands {
		n, err := fmt.Fprintf(w, "%4d %s\n", i, c)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := fmt.Fprintf(w, "-- %s\n", r.Summary())
	total += int64(n)
	return total, err
}

// stripTriangles counts the triangles in a restart-separated strip.
func stripTriangles(indices []uint32) int {
	tris, run := 0, 0
	for _, idx := range indices {
		if idx == gsdirect.RestartIndex {
			run = 0
			continue
		}
		run++
		if run >= 3 {
			tris++
		}
	}
	return tris
}
