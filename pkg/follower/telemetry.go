package follower

import (
	"time"

	"github.com/teslashibe/go-linefollow/pkg/steering"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Telemetry is the per-frame record published to the dashboard.
type Telemetry struct {
	RunID     string             `json:"run_id"`
	Frame     uint64             `json:"frame"`
	Time      time.Time          `json:"time"`
	Width     int                `json:"width,omitempty"`
	Height    int                `json:"height,omitempty"`
	Points    int                `json:"points"`
	Slope     float64            `json:"slope"`
	Intercept float64            `json:"intercept"`
	Raw       steering.Direction `json:"raw,omitempty"`
	Stable    steering.Direction `json:"stable,omitempty"`
	Pending   int                `json:"pending"`
	Command   steering.Command   `json:"command,omitempty"`
	Response  string             `json:"response,omitempty"`
	Error     string             `json:"error,omitempty"`
	Latency   time.Duration      `json:"latency_ns"`
}

// Result is everything one iteration produced.
type Result struct {
	Telemetry

	Mask       *vision.Mask
	Trajectory vision.Trajectory

	// Stop is set when the display asked the loop to end.
	Stop bool
}

// Snapshot is a point-in-time view of the loop counters.
type Snapshot struct {
	RunID           string    `json:"run_id"`
	Started         time.Time `json:"started"`
	Frames          uint64    `json:"frames"`
	Skipped         uint64    `json:"skipped"`
	TransportErrors uint64    `json:"transport_errors"`
	NoResponse      uint64    `json:"no_response"`
	StageErrors     uint64    `json:"stage_errors"`
}
