package vision

import "math"

// MaskConfig holds the color thresholds and cleanup parameters.
//
// Thresholds are in OpenCV 8-bit HSV units: hue 0-179 (degrees / 2),
// saturation and value 0-255. Both backends use the same units so a
// configuration tuned on the vehicle applies offline as is.
type MaskConfig struct {
	// Hue band (inclusive)
	HueMin int `json:"hue_min"`
	HueMax int `json:"hue_max"`

	// Minimum saturation and value (inclusive, upper bound 255)
	SatMin int `json:"sat_min"`
	ValMin int `json:"val_min"`

	// KernelSize is the side of the structuring element for open/close.
	KernelSize int `json:"kernel_size"`

	// Brightness boost pre-step: out = alpha*in + beta, saturated.
	Boost      bool    `json:"boost"`
	BoostAlpha float64 `json:"boost_alpha"`
	BoostBeta  float64 `json:"boost_beta"`
}

// DefaultMaskConfig returns the thresholds for the blue tape line the
// vehicle was tuned on.
func DefaultMaskConfig() MaskConfig {
	return MaskConfig{
		HueMin:     100,
		HueMax:     130,
		SatMin:     100,
		ValMin:     50,
		KernelSize: 5,
		Boost:      false,
		BoostAlpha: 1.5,
		BoostBeta:  70,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *MaskConfig) Validate() []string {
	var errors []string

	if c.HueMin < 0 || c.HueMax > 179 || c.HueMin > c.HueMax {
		errors = append(errors, "hue band must satisfy 0 <= hue_min <= hue_max <= 179")
	}
	if c.SatMin < 0 || c.SatMin > 255 {
		errors = append(errors, "sat_min must be between 0 and 255")
	}
	if c.ValMin < 0 || c.ValMin > 255 {
		errors = append(errors, "val_min must be between 0 and 255")
	}
	if c.KernelSize < 1 || c.KernelSize%2 == 0 {
		errors = append(errors, "kernel_size must be a positive odd number")
	}
	if c.BoostAlpha <= 0 {
		errors = append(errors, "boost_alpha must be positive")
	}

	return errors
}

// Contains reports whether an OpenCV-scaled HSV triple passes the thresholds.
func (c *MaskConfig) Contains(h, s, v int) bool {
	return h >= c.HueMin && h <= c.HueMax && s >= c.SatMin && v >= c.ValMin
}

// BoostValue applies the brightness transform to one channel value:
// |alpha*v + beta| rounded and clamped to 0-255.
func BoostValue(v uint8, alpha, beta float64) uint8 {
	out := math.Round(math.Abs(alpha*float64(v) + beta))
	if out > 255 {
		return 255
	}
	return uint8(out)
}
