package steering

import (
	"math"

	"github.com/teslashibe/go-linefollow/pkg/vision"
	"gonum.org/v1/gonum/stat"
)

// DefaultSlopeThreshold is the fit slope magnitude (pixels of horizontal
// drift per row) below which the line counts as aligned with travel.
const DefaultSlopeThreshold = 0.1

// Fit is the least-squares line x = Slope*row + Intercept.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Points    int     `json:"points"`
}

// LineFit regresses horizontal position on row index.
//
// Fewer than two points, or points that all share a row, have no defined
// slope; the fit is then flat (slope 0) through the mean position.
func LineFit(t vision.Trajectory) Fit {
	if len(t) == 0 {
		return Fit{}
	}

	rows, xs := t.Rows(), t.Xs()
	if len(t) < 2 || stat.Variance(rows, nil) == 0 {
		return Fit{Intercept: stat.Mean(xs, nil), Points: len(t)}
	}

	intercept, slope := stat.LinearRegression(rows, xs, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Fit{Intercept: stat.Mean(xs, nil), Points: len(t)}
	}
	return Fit{Slope: slope, Intercept: intercept, Points: len(t)}
}

// Classifier labels a trajectory by the slope of its fitted line.
//
// Rows grow downward, so a positive slope puts the line further right near
// the vehicle (bottom of the frame) than near the horizon: the line ahead
// bends left.
type Classifier struct {
	SlopeThreshold float64
}

// NewClassifier returns a classifier with the given threshold.
// A non-positive threshold selects DefaultSlopeThreshold.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultSlopeThreshold
	}
	return &Classifier{SlopeThreshold: threshold}
}

// Classify returns the raw direction for one frame along with the fit.
func (c *Classifier) Classify(t vision.Trajectory) (Direction, Fit) {
	if len(t) == 0 {
		return NoLine, Fit{}
	}

	fit := LineFit(t)
	switch {
	case math.Abs(fit.Slope) < c.SlopeThreshold:
		return GoStraight, fit
	case fit.Slope > 0:
		return TurnLeft, fit
	default:
		return TurnRight, fit
	}
}
