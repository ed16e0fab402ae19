package steering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// onLine samples x = slope*row + intercept at every row in [0, rows).
func onLine(slope, intercept float64, rows int) vision.Trajectory {
	t := make(vision.Trajectory, rows)
	for r := 0; r < rows; r++ {
		t[r] = vision.Point{X: slope*float64(r) + intercept, Row: r}
	}
	return t
}

func TestLineFit(t *testing.T) {
	tests := []struct {
		name          string
		traj          vision.Trajectory
		wantSlope     float64
		wantIntercept float64
	}{
		{"empty", vision.Trajectory{}, 0, 0},
		{"single point", vision.Trajectory{{X: 42, Row: 7}}, 0, 42},
		{"gentle slope", onLine(0.05, 10, 240), 0.05, 10},
		{"steep positive", onLine(2, 0, 100), 2, 0},
		{"negative", onLine(-0.5, 200, 50), -0.5, 200},
		{"sparse rows", vision.Trajectory{{X: 1, Row: 0}, {X: 5, Row: 2}, {X: 13, Row: 6}}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := LineFit(tt.traj)
			assert.InDelta(t, tt.wantSlope, fit.Slope, 1e-9)
			assert.InDelta(t, tt.wantIntercept, fit.Intercept, 1e-9)
			assert.Equal(t, len(tt.traj), fit.Points)
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultSlopeThreshold)

	tests := []struct {
		name string
		traj vision.Trajectory
		want Direction
	}{
		{"no points", vision.Trajectory{}, NoLine},
		{"nil trajectory", nil, NoLine},
		{"single point is straight", vision.Trajectory{{X: 160, Row: 120}}, GoStraight},
		{"vertical line", onLine(0, 160, 240), GoStraight},
		{"below threshold", onLine(0.05, 10, 240), GoStraight},
		{"just under negative threshold", onLine(-0.099, 100, 240), GoStraight},
		{"positive slope", onLine(2, 0, 240), TurnLeft},
		{"just over threshold", onLine(0.11, 0, 240), TurnLeft},
		{"negative slope", onLine(-2, 300, 100), TurnRight},
		{"just over negative threshold", onLine(-0.11, 50, 240), TurnRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(tt.traj)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_PositiveSlopeIsConsistent(t *testing.T) {
	c := NewClassifier(0)
	require.Equal(t, DefaultSlopeThreshold, c.SlopeThreshold)

	first, _ := c.Classify(onLine(2, 0, 240))
	for i := 0; i < 10; i++ {
		got, fit := c.Classify(onLine(2, 0, 240))
		require.Equal(t, first, got)
		assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	}
}

func TestClassifier_SameRowIsDegenerate(t *testing.T) {
	// not a valid trajectory, but the fit must not divide by zero
	traj := vision.Trajectory{{X: 10, Row: 3}, {X: 30, Row: 3}}
	dir, fit := NewClassifier(0.1).Classify(traj)

	assert.Equal(t, GoStraight, dir)
	assert.Equal(t, 0.0, fit.Slope)
	assert.Equal(t, 20.0, fit.Intercept)
}

func TestClassifier_FromMask(t *testing.T) {
	// a diagonal drifting right toward the bottom of the frame
	m := vision.NewMask(64, 48)
	for y := 0; y < m.Height; y++ {
		for dx := 0; dx < 3; dx++ {
			m.Set(y+dx, y, true)
		}
	}

	dir, fit := NewClassifier(0.1).Classify(vision.ExtractTrajectory(m))
	assert.Equal(t, TurnLeft, dir)
	assert.InDelta(t, 1.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
}
