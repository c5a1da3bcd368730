package backend

// GS drawing area. Vertex X and Y are 12.4 fixed point with the visible
// area centered on (ScreenCenter, ScreenCenter); Z is a 24-bit integer
// where larger values are closer.
const (
	ScreenCenter = 2048
	ScreenWidth  = 512
	ScreenHeight = 416
	MaxDepth     = 1<<24 - 1
)

// Project maps a vertex position to pixel coordinates of a width x height
// target and a depth in [0, 1].
func Project(pos [3]float32, width, height int) (x, y, depth float32) {
	x = (pos[0]/16 - (ScreenCenter - ScreenWidth/2)) * float32(width) / ScreenWidth
	y = (pos[1]/16 - (ScreenCenter - ScreenHeight/2)) * float32(height) / ScreenHeight
	depth = pos[2] / MaxDepth
	return x, y, depth
}
