package vision

// Point is one centerline estimate: the mean column of the line pixels
// in a single row.
type Point struct {
	X   float64 `json:"x"`
	Row int     `json:"row"`
}

// Trajectory is a sparse centerline, ordered by strictly increasing row.
// Rows without line pixels are absent, so it may be empty.
type Trajectory []Point

// ExtractTrajectory scans the mask top to bottom and emits, for every row
// holding at least one line pixel, the arithmetic mean of their columns.
//
// There is no outlier rejection within a row: two separate segments (a fork)
// collapse to their midpoint, which can lie on neither.
func ExtractTrajectory(m *Mask) Trajectory {
	if m.Empty() {
		return Trajectory{}
	}

	points := make(Trajectory, 0, m.Height)
	for y := 0; y < m.Height; y++ {
		var sum, count int
		for x, v := range m.Row(y) {
			if v == Line {
				sum += x
				count++
			}
		}
		if count == 0 {
			continue
		}
		points = append(points, Point{
			X:   float64(sum) / float64(count),
			Row: y,
		})
	}
	return points
}

// Rows returns the row indices as float64, the regression's x axis.
func (t Trajectory) Rows() []float64 {
	rows := make([]float64, len(t))
	for i, p := range t {
		rows[i] = float64(p.Row)
	}
	return rows
}

// Xs returns the horizontal positions.
func (t Trajectory) Xs() []float64 {
	xs := make([]float64, len(t))
	for i, p := range t {
		xs[i] = p.X
	}
	return xs
}
