package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/ocean"
	"github.com/gogpu/gsdirect/profiling"
)

// Renderer modes.
const (
	modeDirect    = "direct"
	modeLightning = "lightning"
	modeOceanNear = "ocean-near"
	modeOceanMid  = "ocean-mid"
)

var errNoProgress = errors.New("packet consumed no data")

// replay feeds data packet by packet to the renderer selected by mode and
// flushes it.
func replay(mode string, data []byte, rs *gsdirect.RenderState, prof *profiling.Node) error {
	switch mode {
	case modeDirect, modeLightning:
		var r *gsdirect.DirectRenderer
		if mode == modeLightning {
			r = gsdirect.NewLightningRenderer()
		} else {
			r = gsdirect.New()
		}
		node := prof.Child(r.Name())
		done := node.Track()
		defer done()

		err := eachPacket(data, func(p []byte) (int, error) {
			return r.Render(p, rs, node)
		})
		if err != nil {
			r.ResetState()
			return err
		}
		if err := r.FlushPending(rs, node); err != nil {
			return err
		}
		s := r.Stats()
		gsdirect.Logger().Info("replayed", "renderer", r.Name(),
			"draw_calls", s.DrawCalls, "merged", s.MergedDraws, "flushes", s.Flushes,
			"vertices", s.Vertices, "indices", s.Indices)
		return nil

	case modeOceanNear, modeOceanMid:
		r := ocean.New()
		node := prof.Child(mode)
		done := node.Track()
		defer done()

		kick, flush := r.KickFromNear, r.FlushNear
		r.InitForNear()
		if mode == modeOceanMid {
			kick, flush = r.KickFromMid, r.FlushMid
			r.InitForMid()
		}
		if err := eachPacket(data, kick); err != nil {
			return err
		}
		if err := flush(rs, node); err != nil {
			return err
		}
		gsdirect.Logger().Info("replayed", "renderer", mode, "kicks", r.Stats().Kicks)
		return nil
	}
	return fmt.Errorf("unknown mode %q", mode)
}

// eachPacket calls fn on the remaining data until it is consumed. fn
// returns the size of the packet it interpreted.
func eachPacket(data []byte, fn func([]byte) (int, error)) error {
	for off := 0; off < len(data); {
		n, err := fn(data[off:])
		if err != nil {
			return fmt.Errorf("packet at offset %d: %w", off, err)
		}
		if n <= 0 {
			return fmt.Errorf("packet at offset %d: %w", off, errNoProgress)
		}
		off += n
	}
	return nil
}
