package vision

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func maskFromRows(rows ...string) *Mask {
	if len(rows) == 0 {
		return NewMask(0, 0)
	}
	m := NewMask(len(rows[0]), len(rows))
	for y, r := range rows {
		for x, ch := range r {
			m.Set(x, y, ch == '#')
		}
	}
	return m
}

func TestExtractTrajectory(t *testing.T) {
	tests := []struct {
		name string
		mask *Mask
		want Trajectory
	}{
		{
			name: "no line pixels",
			mask: maskFromRows(
				"......",
				"......",
				"......",
			),
			want: Trajectory{},
		},
		{
			name: "zero size mask",
			mask: NewMask(0, 0),
			want: Trajectory{},
		},
		{
			name: "nil mask",
			mask: nil,
			want: Trajectory{},
		},
		{
			name: "single pixel per row",
			mask: maskFromRows(
				"#.....",
				".#....",
				"..#...",
			),
			want: Trajectory{{X: 0, Row: 0}, {X: 1, Row: 1}, {X: 2, Row: 2}},
		},
		{
			name: "exact mean, not truncated",
			mask: maskFromRows(
				".##...",
				"......",
				"###.#.",
			),
			// row 0: (1+2)/2, row 2: (0+1+2+4)/4
			want: Trajectory{{X: 1.5, Row: 0}, {X: 1.75, Row: 2}},
		},
		{
			name: "fork collapses to midpoint",
			mask: maskFromRows(
				"#....#",
			),
			want: Trajectory{{X: 2.5, Row: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTrajectory(tt.mask)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractTrajectory() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTrajectory_MeanMatchesRow(t *testing.T) {
	// pseudo-random but deterministic pattern
	m := NewMask(37, 23)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Set(x, y, (x*7+y*13)%5 == 0 && y%4 != 3)
		}
	}

	traj := ExtractTrajectory(m)
	seen := map[int]bool{}
	for i, p := range traj {
		if i > 0 && p.Row <= traj[i-1].Row {
			t.Fatalf("rows not strictly increasing at %d: %d after %d", i, p.Row, traj[i-1].Row)
		}
		if seen[p.Row] {
			t.Fatalf("duplicate row %d", p.Row)
		}
		seen[p.Row] = true

		var sum, n int
		for x := 0; x < m.Width; x++ {
			if m.IsLine(x, p.Row) {
				sum += x
				n++
			}
		}
		if want := float64(sum) / float64(n); p.X != want {
			t.Errorf("row %d: X = %v, want %v", p.Row, p.X, want)
		}
	}

	for y := 0; y < m.Height; y++ {
		if y%4 == 3 && seen[y] {
			t.Errorf("row %d has no line pixels but was emitted", y)
		}
	}
}

func TestTrajectory_Axes(t *testing.T) {
	traj := Trajectory{{X: 3, Row: 1}, {X: 4.5, Row: 7}}

	if diff := cmp.Diff([]float64{1, 7}, traj.Rows()); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3, 4.5}, traj.Xs()); diff != "" {
		t.Errorf("Xs() mismatch (-want +got):\n%s", diff)
	}
}
