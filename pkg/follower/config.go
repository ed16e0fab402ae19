package follower

import (
	"time"

	"github.com/teslashibe/go-linefollow/pkg/steering"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Config holds the loop parameters.
type Config struct {
	// Mask selects line pixels.
	Mask vision.MaskConfig

	// SlopeThreshold is the |slope| below which the line counts as straight.
	SlopeThreshold float64

	// DebounceThreshold is the number of consecutive disagreeing frames
	// needed to change the stable direction.
	DebounceThreshold int

	// Debounce enables the stabilizer. When false raw directions drive the
	// actuator directly.
	Debounce bool

	// NoFrameBackoff is slept after a failed acquisition. Zero retries at once.
	NoFrameBackoff time.Duration
}

// DefaultConfig returns the settings the vehicle runs with.
func DefaultConfig() Config {
	return Config{
		Mask:              vision.DefaultMaskConfig(),
		SlopeThreshold:    steering.DefaultSlopeThreshold,
		DebounceThreshold: steering.DefaultDebounceThreshold,
		Debounce:          true,
		NoFrameBackoff:    10 * time.Millisecond,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	errors := c.Mask.Validate()

	if c.SlopeThreshold <= 0 {
		errors = append(errors, "slope_threshold must be positive")
	}
	if c.DebounceThreshold < 1 {
		errors = append(errors, "debounce_threshold must be at least 1")
	}
	if c.NoFrameBackoff < 0 {
		errors = append(errors, "no_frame_backoff must not be negative")
	}

	return errors
}

// Tuning returns the runtime-adjustable subset of the config.
func (c Config) Tuning() Tuning {
	return Tuning{
		SlopeThreshold:    c.SlopeThreshold,
		DebounceThreshold: c.DebounceThreshold,
		Debounce:          c.Debounce,
		Boost:             c.Mask.Boost,
	}
}
