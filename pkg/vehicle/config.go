// Package vehicle wires the live line follower: OpenCV camera and masker,
// serial actuator, optional windows and the web dashboard around one
// control loop.
package vehicle

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-linefollow/internal/config"
	"github.com/teslashibe/go-linefollow/pkg/actuator"
	"github.com/teslashibe/go-linefollow/pkg/camera"
	"github.com/teslashibe/go-linefollow/pkg/follower"
)

// Config holds all configuration for the vehicle process.
// Flag parsing is done in cmd/linefollow/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool
	// DebugVision adds per-frame vision traces.
	DebugVision bool
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Actuator link.
	SerialPort string
	Port       actuator.PortOptions
	Terminator string
	// DryRun replaces the serial link with an in-memory actuator.
	DryRun bool

	// Camera capture settings.
	Camera camera.Config

	// Display opens OpenCV windows; needs a desktop session.
	Display bool
	// MinContourArea filters the annotated regions.
	MinContourArea float64

	// DashboardAddr is the listen address; empty disables the dashboard.
	DashboardAddr string

	// Loop parameters.
	Loop follower.Config
}

// DefaultConfig returns the settings the vehicle ships with.
func DefaultConfig() Config {
	port := actuator.DefaultPortOptions()
	port.BaudRate = config.DefaultBaudRate

	return Config{
		LogLevel:       "info",
		SerialPort:     config.DefaultSerialPort,
		Port:           port,
		Terminator:     actuator.DefaultTerminator,
		Camera:         camera.DefaultConfig(),
		MinContourArea: 500,
		DashboardAddr:  config.DefaultDashboardAddr,
		Loop:           follower.DefaultConfig(),
	}
}

// LoadEnvConfig applies environment overrides.
// Call this after flag parsing.
func (c *Config) LoadEnvConfig() {
	c.SerialPort = config.SerialPort(c.SerialPort)
	c.Camera.Device = config.CameraDevice(c.Camera.Device)
	c.DashboardAddr = config.DashboardAddr(c.DashboardAddr)
	c.LogLevel = config.LogLevel(c.LogLevel)
	if c.Debug || c.DebugVision {
		c.LogLevel = "debug"
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if !c.DryRun && strings.TrimSpace(c.SerialPort) == "" {
		problems = append(problems, "serial port is required unless dry-run is set")
	}
	if _, err := c.Port.Normalize(); err != nil {
		problems = append(problems, err.Error())
	}
	problems = append(problems, c.Camera.Validate()...)
	problems = append(problems, c.Loop.Validate()...)
	if c.MinContourArea < 0 {
		problems = append(problems, "min contour area must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
