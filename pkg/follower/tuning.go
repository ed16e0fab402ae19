package follower

import "fmt"

// Tuning holds the parameters that can be changed while the loop runs.
// Updates are applied between frames by the loop goroutine.
type Tuning struct {
	SlopeThreshold    float64 `json:"slope_threshold"`
	DebounceThreshold int     `json:"debounce_threshold"`
	Debounce          bool    `json:"debounce"`
	Boost             bool    `json:"boost"`
}

// Validate checks the tuning values. Returns a list of validation errors,
// or nil if valid.
func (t Tuning) Validate() []string {
	var errors []string

	if t.SlopeThreshold <= 0 || t.SlopeThreshold > 10 {
		errors = append(errors, "slope_threshold must be in (0, 10]")
	}
	if t.DebounceThreshold < 1 || t.DebounceThreshold > 300 {
		errors = append(errors, "debounce_threshold must be between 1 and 300")
	}

	return errors
}

// ValidationError reports rejected tuning values.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tuning: %v", e.Problems)
}

// ApplyTuning queues t for the loop. A newer update replaces one the loop
// has not picked up yet.
func (f *Follower[F]) ApplyTuning(t Tuning) error {
	if problems := t.Validate(); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	for {
		select {
		case f.tuning <- t:
			return nil
		default:
		}
		// drop the stale update
		select {
		case <-f.tuning:
		default:
		}
	}
}

// Tuning returns the tuning the loop is currently running with.
func (f *Follower[F]) Tuning() Tuning {
	return *f.current.Load()
}

// drainTuning applies a queued update. Only called from the loop goroutine.
func (f *Follower[F]) drainTuning() {
	select {
	case t := <-f.tuning:
		f.applyTuning(t)
	default:
	}
}

func (f *Follower[F]) applyTuning(t Tuning) {
	prev := f.cfg.Tuning()

	f.cfg.SlopeThreshold = t.SlopeThreshold
	f.cfg.DebounceThreshold = t.DebounceThreshold
	f.cfg.Debounce = t.Debounce
	f.cfg.Mask.Boost = t.Boost

	f.classifier.SlopeThreshold = t.SlopeThreshold
	f.stabilizer.Threshold = t.DebounceThreshold
	if t.Debounce && !prev.Debounce {
		// stale state from before the bypass
		f.stabilizer.Reset()
	}

	f.current.Store(&t)
	f.logger.Info("tuning applied",
		"slope_threshold", t.SlopeThreshold,
		"debounce_threshold", t.DebounceThreshold,
		"debounce", t.Debounce,
		"boost", t.Boost)
}
