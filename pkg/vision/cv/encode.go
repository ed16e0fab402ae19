package cv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/pkg/follower"
)

// JPEGEncoder renders annotated frames for the dashboard.
type JPEGEncoder struct {
	annotator *Annotator
}

// NewJPEGEncoder returns an encoder drawing with annotator.
func NewJPEGEncoder(annotator *Annotator) *JPEGEncoder {
	if annotator == nil {
		annotator = NewAnnotator()
	}
	return &JPEGEncoder{annotator: annotator}
}

// Encode annotates frame and compresses it to JPEG.
func (e *JPEGEncoder) Encode(frame gocv.Mat, res *follower.Result) ([]byte, error) {
	annotated := e.annotator.Annotate(frame, res.Mask, res.Trajectory)
	defer annotated.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close
	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
