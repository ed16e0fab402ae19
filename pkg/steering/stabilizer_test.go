package steering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed(s *Stabilizer, in []Direction) []Direction {
	out := make([]Direction, len(in))
	for i, d := range in {
		out[i] = s.Observe(d)
	}
	return out
}

func TestStabilizer(t *testing.T) {
	const A, B, C = GoStraight, TurnLeft, TurnRight

	tests := []struct {
		name string
		in   []Direction
		want []Direction
	}{
		{
			name: "first observation is trusted",
			in:   []Direction{A, A, A, A, A},
			want: []Direction{A, A, A, A, A},
		},
		{
			name: "revert before threshold never switches",
			in:   []Direction{A, A, A, A, A, B, B, B, B, A},
			want: []Direction{A, A, A, A, A, A, A, A, A, A},
		},
		{
			name: "switches on the fifth consecutive mismatch",
			in:   []Direction{A, A, A, A, A, B, B, B, B, B},
			want: []Direction{A, A, A, A, A, A, A, A, A, B},
		},
		{
			name: "counter resets after revert",
			in:   []Direction{A, B, B, B, B, A, B, B, B, B},
			want: []Direction{A, A, A, A, A, A, A, A, A, A},
		},
		{
			name: "mixed mismatches count together",
			in:   []Direction{A, B, C, B, C, NoLine},
			want: []Direction{A, A, A, A, A, NoLine},
		},
		{
			name: "first observation can be NoLine",
			in:   []Direction{NoLine, A, A, A, A, A},
			want: []Direction{NoLine, NoLine, NoLine, NoLine, NoLine, A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStabilizer(DefaultDebounceThreshold)
			assert.Equal(t, tt.want, feed(s, tt.in))
		})
	}
}

func TestStabilizer_PendingAndReset(t *testing.T) {
	s := NewStabilizer(5)
	assert.Equal(t, Unset, s.Stable())

	s.Observe(GoStraight)
	s.Observe(TurnLeft)
	s.Observe(TurnLeft)
	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, GoStraight, s.Stable())

	s.Observe(GoStraight)
	assert.Equal(t, 0, s.Pending())

	s.Reset()
	assert.Equal(t, Unset, s.Stable())
	assert.Equal(t, TurnRight, s.Observe(TurnRight))
}

func TestStabilizer_ThresholdOne(t *testing.T) {
	s := NewStabilizer(1)
	got := feed(s, []Direction{GoStraight, TurnLeft, TurnRight})
	assert.Equal(t, []Direction{GoStraight, TurnLeft, TurnRight}, got)
}

func TestNewStabilizer_Default(t *testing.T) {
	assert.Equal(t, DefaultDebounceThreshold, NewStabilizer(0).Threshold)
	assert.Equal(t, DefaultDebounceThreshold, NewStabilizer(-3).Threshold)
}
