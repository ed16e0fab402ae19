package camera

// Preset names for common configurations
const (
	PresetQVGA = "qvga"
	PresetVGA  = "vga"
	PresetHD   = "hd"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetQVGA: DefaultConfig(),
		PresetVGA:  VGAConfig(),
		PresetHD:   HD720Config(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetQVGA, PresetVGA, PresetHD}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// VGAConfig returns 640x480. Doubles the rows scanned per frame.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// HD720Config returns 720p at a reduced framerate.
// Mostly useful for recording calibration footage.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	cfg.Framerate = 15
	return cfg
}
