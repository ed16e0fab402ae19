// Package camera provides capture settings for the line camera.
package camera

import (
	"errors"
	"strconv"
)

// ErrNoFrame is returned by frame sources when the device produced nothing
// this cycle. The control loop skips the iteration.
var ErrNoFrame = errors.New("camera: no frame available")

// Config holds the capture configuration.
type Config struct {
	// Device is an index ("0") or a path/URL understood by the capture backend.
	Device string `json:"device"`

	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Requested FPS, 0 leaves the driver default
}

// Capture limits. A line camera has no use for more than 1080p.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 1920
	MaxHeight = 1080
)

// DefaultConfig returns the vehicle configuration: a small 320x240 frame
// keeps the per-row scan well inside one control period.
func DefaultConfig() Config {
	return Config{
		Device:    "0",
		Width:     320,
		Height:    240,
		Framerate: 30,
	}
}

// DeviceIndex returns the numeric device index, or false when Device is a
// path or URL.
func (c Config) DeviceIndex() (int, bool) {
	n, err := strconv.Atoi(c.Device)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device must not be empty")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 1920")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 1080")
	}
	if c.Framerate < 0 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 0 and 120")
	}

	return errors
}
