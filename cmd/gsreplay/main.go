// Command gsreplay replays a capture of GIF packets through one of the
// gsdirect renderers and writes the frame as a PNG.
//
// Usage:
//
//	gsreplay -in capture.gif -textures dump/ -out frame.png
//	gsreplay -mode ocean-near -in ocean.gif -backend software
//	gsreplay -demo -trace
//
// Textures are PNG files named after their TBP, like 0x1a40.png; PSMT4HH
// textures use the .alt.png suffix.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/backend"
	"github.com/gogpu/gsdirect/backend/recorder"
	_ "github.com/gogpu/gsdirect/backend/software"
	_ "github.com/gogpu/gsdirect/backend/wgpu"
	"github.com/gogpu/gsdirect/profiling"
	"github.com/gogpu/gsdirect/texpool"
)

type config struct {
	mode         string
	backend      string
	input        string
	textures     string
	output       string
	width        int
	height       int
	scale        float64
	textureLimit int
	demo         bool
	trace        bool
	verbose      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", modeDirect, "renderer: direct, lightning, ocean-near or ocean-mid")
	flag.StringVar(&cfg.backend, "backend", "", "backend name (default: best available)")
	flag.StringVar(&cfg.input, "in", "", "capture file of GIF packets")
	flag.StringVar(&cfg.textures, "textures", "", "directory of <tbp>.png textures")
	flag.StringVar(&cfg.output, "out", "frame.png", "output PNG file")
	flag.IntVar(&cfg.width, "width", 640, "frame width")
	flag.IntVar(&cfg.height, "height", 520, "frame height")
	flag.Float64Var(&cfg.scale, "scale", 1, "output scale factor")
	flag.IntVar(&cfg.textureLimit, "texture-limit", 1024, "maximum resident textures (0 = unlimited)")
	flag.BoolVar(&cfg.demo, "demo", false, "replay a built-in stream instead of -in")
	flag.BoolVar(&cfg.trace, "trace", false, "print every backend call to stdout")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gsdirect.SetLogger(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("replay failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	data, err := input(cfg)
	if err != nil {
		return err
	}

	target, err := openTarget(cfg.backend, cfg.width, cfg.height)
	if err != nil {
		return err
	}
	defer target.Close()
	logger.Info("backend selected", "name", target.Name(), "width", cfg.width, "height", cfg.height)

	var rec *recorder.Recorder
	if cfg.trace {
		rec = recorder.Wrap(target)
		target = rec
	}

	pool := texpool.New(cfg.textureLimit, target)
	if err := pool.InstallPlaceholder(target); err != nil {
		return err
	}
	if cfg.textures != "" {
		if err := loadTextures(ctx, pool, target, cfg.textures); err != nil {
			return err
		}
		logger.Info("textures loaded", "count", pool.Len())
	}

	rs := &gsdirect.RenderState{Backend: target, Textures: pool}
	target.Clear(color.RGBA{A: 0xff})

	prof := profiling.NewNode("frame")
	if err := replay(cfg.mode, data, rs, prof); err != nil {
		return err
	}
	logger.Debug("replay profile", "top", prof.TopN(4))

	img, err := target.Frame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	if err := writePNG(cfg.output, scaleImage(img, cfg.scale)); err != nil {
		return err
	}
	logger.Info("frame written", "file", cfg.output)

	if rec != nil {
		if _, err := rec.WriteTo(os.Stdout); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}
	return nil
}

func input(cfg config) ([]byte, error) {
	switch {
	case cfg.demo && (cfg.mode == modeDirect || cfg.mode == modeLightning):
		return demoStream(cfg.mode == modeLightning), nil
	case cfg.demo:
		return nil, fmt.Errorf("no demo stream for mode %q", cfg.mode)
	case cfg.input == "":
		return nil, fmt.Errorf("no input: pass -in or -demo")
	}
	data, err := os.ReadFile(cfg.input)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return data, nil
}

func openTarget(name string, width, height int) (backend.Target, error) {
	if name == "" {
		return backend.Default(width, height)
	}
	return backend.Get(name, width, height)
}

// loadTextures decodes the textures in dir on this goroutine and uploads
// them on a loader goroutine running the pool.
func loadTextures(ctx context.Context, pool *texpool.Pool, c texpool.Creator, dir string) error {
	requests := make(chan texpool.Request)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = pool.Run(ctx, c, requests)
	}()

	err := scanTextures(dir, func(req texpool.Request) {
		requests <- req
	})
	close(requests)
	wg.Wait()
	return err
}

// scaleImage resizes img by factor with Catmull-Rom filtering.
func scaleImage(img *image.RGBA, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
