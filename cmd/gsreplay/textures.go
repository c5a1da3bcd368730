package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gsdirect"
	"github.com/gogpu/gsdirect/texpool"
)

// parseTextureName returns the TBP encoded in a texture file name such as
// "0x1a40.png" or "0x1a40.alt.png".
func parseTextureName(name string) (tbp uint32, alternate, ok bool) {
	base, found := strings.CutSuffix(name, ".png")
	if !found {
		return 0, false, false
	}
	base, alternate = strings.CutSuffix(base, ".alt")
	v, err := strconv.ParseUint(base, 0, 32)
	if err != nil {
		return 0, false, false
	}
	return uint32(v), alternate, true
}

// scanTextures decodes every texture file in dir and passes it to send.
// Files with other names are skipped.
func scanTextures(dir string, send func(texpool.Request)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read textures: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tbp, alternate, ok := parseTextureName(e.Name())
		if !ok {
			gsdirect.Logger().Debug("skipping file", "name", e.Name())
			continue
		}
		img, err := decodePNG(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		send(texpool.Request{TBP: tbp, AlternateFormat: alternate, Image: img})
	}
	return nil
}

func decodePNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst, nil
}
