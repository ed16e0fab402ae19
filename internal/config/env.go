// Package config provides environment helpers for go-linefollow commands.
// Flags carry the defaults; these variables override them on the vehicle.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by the commands.
const (
	EnvSerialPort    = "LINE_SERIAL_PORT"
	EnvCameraDevice  = "LINE_CAMERA_DEVICE"
	EnvDashboardAddr = "LINE_DASHBOARD_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvWatchAddr     = "LINE_WATCH_ADDR"
)

// Default endpoints for the stock vehicle wiring.
const (
	DefaultSerialPort    = "/dev/ttyUSB0"
	DefaultBaudRate      = 115200
	DefaultCameraDevice  = "0"
	DefaultDashboardAddr = ":8080"
)

// String returns the value of key, or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an int. Unset or malformed values yield def.
func Int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// SerialPort returns the actuator serial device from LINE_SERIAL_PORT.
func SerialPort(def string) string {
	return String(EnvSerialPort, def)
}

// CameraDevice returns the camera device from LINE_CAMERA_DEVICE.
// It may be a numeric index or a path/URL understood by OpenCV.
func CameraDevice(def string) string {
	return String(EnvCameraDevice, def)
}

// DashboardAddr returns the dashboard listen address from LINE_DASHBOARD_ADDR.
func DashboardAddr(def string) string {
	return String(EnvDashboardAddr, def)
}

// LogLevel returns the log level from LOG_LEVEL.
func LogLevel(def string) string {
	return String(EnvLogLevel, def)
}
