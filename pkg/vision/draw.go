package vision

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Overlay colors, matching the OpenCV display.
var (
	TrajectoryColor = color.NRGBA{R: 255, A: 255}
	MaskTint        = color.NRGBA{G: 255, A: 255}
)

// DrawTrajectory returns a copy of img with the mask tinted and the
// centerline drawn as a polyline through consecutive points.
func DrawTrajectory(img image.Image, m *Mask, t Trajectory) *image.NRGBA {
	out := imaging.Clone(img)
	b := out.Bounds()

	if !m.Empty() {
		for y := 0; y < m.Height && y < b.Dy(); y++ {
			for x := 0; x < m.Width && x < b.Dx(); x++ {
				if m.IsLine(x, y) {
					c := out.NRGBAAt(x, y)
					c.G = uint8((int(c.G) + int(MaskTint.G)) / 2)
					out.SetNRGBA(x, y, c)
				}
			}
		}
	}

	for i := 1; i < len(t); i++ {
		drawSegment(out, t[i-1], t[i], TrajectoryColor)
	}
	if len(t) == 1 {
		out.SetNRGBA(int(t[0].X+0.5), t[0].Row, TrajectoryColor)
	}
	return out
}

// drawSegment rasterizes a line with Bresenham's algorithm.
func drawSegment(img *image.NRGBA, a, b Point, c color.NRGBA) {
	x0, y0 := int(a.X+0.5), a.Row
	x1, y1 := int(b.X+0.5), b.Row

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
