package steering

// DefaultDebounceThreshold is how many consecutive disagreeing frames it
// takes to replace the stable direction.
const DefaultDebounceThreshold = 5

// Stabilizer debounces per-frame directions. It is owned by a single
// control loop and is not safe for concurrent use.
//
// The mismatch counter tracks consecutive frames that differ from the
// stable direction, whatever they are; the direction seen on the frame that
// reaches the threshold is adopted.
type Stabilizer struct {
	Threshold int

	stable  Direction
	pending int
}

// NewStabilizer returns a stabilizer with the given threshold.
// A non-positive threshold selects DefaultDebounceThreshold.
func NewStabilizer(threshold int) *Stabilizer {
	if threshold <= 0 {
		threshold = DefaultDebounceThreshold
	}
	return &Stabilizer{Threshold: threshold}
}

// Observe feeds one raw direction and returns the stable direction.
func (s *Stabilizer) Observe(d Direction) Direction {
	switch {
	case s.stable == Unset:
		// first observation is trusted as is
		s.stable = d
		s.pending = 0
	case d == s.stable:
		s.pending = 0
	default:
		s.pending++
		if s.pending >= s.Threshold {
			s.stable = d
			s.pending = 0
		}
	}
	return s.stable
}

// Stable returns the current stable direction, Unset before any input.
func (s *Stabilizer) Stable() Direction {
	return s.stable
}

// Pending returns the current mismatch count.
func (s *Stabilizer) Pending() int {
	return s.pending
}

// Reset forgets the stable direction.
func (s *Stabilizer) Reset() {
	s.stable = Unset
	s.pending = 0
}
