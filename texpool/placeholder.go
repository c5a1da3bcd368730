package texpool

import (
	"image"
	"image/color"
)

// Checkerboard returns a size x size magenta and black checkerboard with
// 8 texel squares, the usual stand-in for a missing texture.
func Checkerboard(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	on := color.RGBA{R: 0xff, B: 0xff, A: 0x80}
	off := color.RGBA{A: 0x80}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/8+y/8)%2 == 0 {
				img.SetRGBA(x, y, on)
			} else {
				img.SetRGBA(x, y, off)
			}
		}
	}
	return img
}

// InstallPlaceholder creates a checkerboard texture with c and makes it
// the pool's placeholder.
func (p *Pool) InstallPlaceholder(c Creator) error {
	h, err := c.CreateTexture(Checkerboard(16))
	if err != nil {
		return err
	}
	p.SetPlaceholder(h)
	return nil
}
