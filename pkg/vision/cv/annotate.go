package cv

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// DefaultMinContourArea drops specks smaller than this many pixels.
const DefaultMinContourArea = 500

var (
	contourColor    = color.RGBA{G: 255, A: 255}
	trajectoryColor = color.RGBA{R: 255, A: 255}
)

// Annotator draws the detected line regions and the centerline onto a copy
// of the frame. It is for display only and never affects steering.
type Annotator struct {
	MinContourArea float64
	Thickness      int
}

// NewAnnotator returns an annotator with the default contour filter.
func NewAnnotator() *Annotator {
	return &Annotator{MinContourArea: DefaultMinContourArea, Thickness: 2}
}

// Annotate returns a new Mat the caller must close.
func (a *Annotator) Annotate(frame gocv.Mat, mask *vision.Mask, traj vision.Trajectory) gocv.Mat {
	out := frame.Clone()
	if mask != nil && !mask.Empty() {
		a.drawContours(&out, mask)
	}
	DrawTrajectory(&out, traj, a.Thickness)
	return out
}

func (a *Annotator) drawContours(dst *gocv.Mat, mask *vision.Mask) {
	m, err := MaskMat(mask)
	if err != nil {
		return
	}
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		if a.keep(gocv.ContourArea(contours.At(i))) {
			gocv.DrawContours(dst, contours, i, contourColor, a.Thickness)
		}
	}
}

// keep reports whether a region is large enough to draw. The bound is strict.
func (a *Annotator) keep(area float64) bool {
	return area > a.MinContourArea
}

// DrawTrajectory joins consecutive centerline points with line segments.
func DrawTrajectory(dst *gocv.Mat, traj vision.Trajectory, thickness int) {
	for i := 1; i < len(traj); i++ {
		p0 := image.Pt(int(traj[i-1].X+0.5), traj[i-1].Row)
		p1 := image.Pt(int(traj[i].X+0.5), traj[i].Row)
		gocv.Line(dst, p0, p1, trajectoryColor, thickness)
	}
}
