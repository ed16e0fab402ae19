package cv

import (
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/pkg/follower"
)

// Window names
const (
	FrameWindow = "line: frame"
	MaskWindow  = "line: mask"
)

// quitKey ends the loop when pressed in either window.
const quitKey = 'q'

// Display shows the annotated frame and the mask in two windows.
type Display struct {
	annotator *Annotator
	frame     *gocv.Window
	mask      *gocv.Window
}

// NewDisplay opens the windows. It needs a desktop session.
func NewDisplay(annotator *Annotator) *Display {
	if annotator == nil {
		annotator = NewAnnotator()
	}
	return &Display{
		annotator: annotator,
		frame:     gocv.NewWindow(FrameWindow),
		mask:      gocv.NewWindow(MaskWindow),
	}
}

// Show renders one frame and polls the keyboard. It reports stop on 'q'.
func (d *Display) Show(frame gocv.Mat, res *follower.Result) (bool, error) {
	annotated := d.annotator.Annotate(frame, res.Mask, res.Trajectory)
	defer annotated.Close()
	d.frame.IMShow(annotated)

	if res.Mask != nil {
		m, err := MaskMat(res.Mask)
		if err != nil {
			return false, err
		}
		d.mask.IMShow(m)
		m.Close()
	}

	key := d.frame.WaitKey(1)
	return key&0xff == quitKey, nil
}

// Close destroys both windows.
func (d *Display) Close() error {
	d.mask.Close()
	return d.frame.Close()
}
