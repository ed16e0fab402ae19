// Package debug provides global verbose-trace flags
package debug

import "github.com/teslashibe/go-linefollow/internal/log"

// Enabled controls whether general debug tracing is active
var Enabled bool

// Vision controls whether per-frame vision traces are emitted (trajectory
// points, fit coefficients). Use --debug-vision to enable these very verbose logs
var Vision bool

// Log emits a debug record only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Debug(msg, args...)
	}
}

// VisionLog emits a debug record only if vision tracing is enabled
func VisionLog(msg string, args ...any) {
	if Vision {
		log.Debug(msg, args...)
	}
}
