// Package follower runs the line-following control loop: acquire a frame,
// mask it, extract the centerline, classify and debounce the direction,
// and hand the resulting command to the actuator.
package follower

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/actuator"
	"github.com/teslashibe/go-linefollow/pkg/camera"
	"github.com/teslashibe/go-linefollow/pkg/debug"
	"github.com/teslashibe/go-linefollow/pkg/steering"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

var (
	// ErrNoFrame marks a cycle where the source produced nothing usable.
	ErrNoFrame = camera.ErrNoFrame
	// ErrTransport marks a cycle whose command could not be delivered.
	ErrTransport = errors.New("follower: actuator transport failed")
	// ErrStage marks a cycle where a pipeline stage failed or panicked.
	ErrStage = errors.New("follower: pipeline stage failed")
)

// FrameSource produces frames. io.EOF ends the run; any other error skips
// the cycle.
type FrameSource[F any] interface {
	Read(ctx context.Context) (F, error)
}

// Masker turns a frame into a binary line mask.
type Masker[F any] interface {
	Mask(frame F, cfg vision.MaskConfig) (*vision.Mask, error)
}

// Actuator delivers commands to the drive controller.
type Actuator interface {
	Send(ctx context.Context, cmd steering.Command) (string, error)
}

// Display shows the annotated frame. It reports stop when the operator asks
// the loop to end.
type Display[F any] interface {
	Show(frame F, res *Result) (stop bool, err error)
}

// FrameEncoder renders the annotated frame as JPEG for the dashboard.
type FrameEncoder[F any] interface {
	Encode(frame F, res *Result) ([]byte, error)
}

// TelemetrySink receives a copy of every frame's telemetry. jpeg is nil
// when no encoder is configured.
type TelemetrySink interface {
	Publish(t Telemetry, jpeg []byte)
}

// Deps are the collaborators of a Follower. Source and Masker are required.
type Deps[F any] struct {
	Source   FrameSource[F]
	Masker   Masker[F]
	Actuator Actuator
	Display  Display[F]
	Encoder  FrameEncoder[F]
	Sink     TelemetrySink
	Logger   *slog.Logger
}

// Follower is the single control loop. Step and Run must be called from one
// goroutine; ApplyTuning, Tuning and Stats are safe from any goroutine.
type Follower[F any] struct {
	cfg  Config
	deps Deps[F]

	classifier *steering.Classifier
	stabilizer *steering.Stabilizer

	runID   string
	started time.Time
	frame   uint64

	tuning  chan Tuning
	current atomic.Pointer[Tuning]

	displayFailed bool

	frames          atomic.Uint64
	skipped         atomic.Uint64
	transportErrors atomic.Uint64
	noResponse      atomic.Uint64
	stageErrors     atomic.Uint64

	logger *slog.Logger
}

// New builds a follower. The config is validated.
func New[F any](cfg Config, deps Deps[F]) (*Follower[F], error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	if deps.Source == nil {
		return nil, errors.New("follower: frame source is required")
	}
	if deps.Masker == nil {
		return nil, errors.New("follower: masker is required")
	}

	f := &Follower[F]{
		cfg:        cfg,
		deps:       deps,
		classifier: steering.NewClassifier(cfg.SlopeThreshold),
		stabilizer: steering.NewStabilizer(cfg.DebounceThreshold),
		runID:      uuid.NewString(),
		started:    time.Now(),
		tuning:     make(chan Tuning, 1),
	}

	t := cfg.Tuning()
	f.current.Store(&t)

	logger := deps.Logger
	if logger == nil {
		logger = log.L()
	}
	f.logger = logger.With("component", "follower", "run_id", f.runID)
	return f, nil
}

// RunID identifies this run in telemetry.
func (f *Follower[F]) RunID() string {
	return f.runID
}

// Stats returns the loop counters.
func (f *Follower[F]) Stats() Snapshot {
	return Snapshot{
		RunID:           f.runID,
		Started:         f.started,
		Frames:          f.frames.Load(),
		Skipped:         f.skipped.Load(),
		TransportErrors: f.transportErrors.Load(),
		NoResponse:      f.noResponse.Load(),
		StageErrors:     f.stageErrors.Load(),
	}
}

// Run loops until ctx is cancelled, the source is exhausted, or the display
// asks to stop. Per-frame failures are logged and the loop continues.
func (f *Follower[F]) Run(ctx context.Context) error {
	f.logger.Info("control loop started",
		"slope_threshold", f.cfg.SlopeThreshold,
		"debounce", f.cfg.Debounce,
		"debounce_threshold", f.cfg.DebounceThreshold)
	defer func() {
		s := f.Stats()
		f.logger.Info("control loop stopped",
			"frames", s.Frames,
			"skipped", s.Skipped,
			"transport_errors", s.TransportErrors,
			"stage_errors", s.StageErrors)
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		res, err := f.Step(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			f.logger.Info("frame source exhausted")
			return nil
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrNoFrame):
			f.logger.Warn("no frame", "error", err)
			if !sleep(ctx, f.cfg.NoFrameBackoff) {
				return nil
			}
		case errors.Is(err, ErrTransport):
			if errors.Is(err, actuator.ErrNoResponse) {
				f.logger.Debug("actuator silent", "command", res.Command)
			} else {
				f.logger.Warn("command not delivered", "command", res.Command, "error", err)
			}
		case errors.Is(err, ErrStage):
			f.logger.Error("frame dropped", "frame", res.Frame, "error", err)
		default:
			f.logger.Error("iteration failed", "error", err)
		}

		if res.Stop {
			f.logger.Info("stop requested by display")
			return nil
		}
	}
}

// Step runs one iteration. The returned error is classified with ErrNoFrame,
// ErrTransport or ErrStage; io.EOF means the source is exhausted.
func (f *Follower[F]) Step(ctx context.Context) (Result, error) {
	f.drainTuning()
	start := time.Now()

	var res Result
	res.RunID = f.runID
	res.Time = start

	frame, err := f.deps.Source.Read(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return res, err
		}
		f.skipped.Add(1)
		if !errors.Is(err, ErrNoFrame) {
			err = fmt.Errorf("%w: %w", ErrNoFrame, err)
		}
		res.Error = err.Error()
		return res, err
	}

	f.frame++
	f.frames.Add(1)
	res.Frame = f.frame

	mask, err := stage("mask", func() (*vision.Mask, error) {
		m, err := f.deps.Masker.Mask(frame, f.cfg.Mask)
		if err == nil && m == nil {
			err = errors.New("masker returned no mask")
		}
		return m, err
	})
	if err != nil {
		return f.stageFailed(res, err)
	}
	res.Mask = mask
	res.Width, res.Height = mask.Width, mask.Height

	type decision struct {
		traj vision.Trajectory
		raw  steering.Direction
		fit  steering.Fit
	}
	d, err := stage("classify", func() (decision, error) {
		traj := vision.ExtractTrajectory(mask)
		raw, fit := f.classifier.Classify(traj)
		return decision{traj: traj, raw: raw, fit: fit}, nil
	})
	if err != nil {
		return f.stageFailed(res, err)
	}
	res.Trajectory = d.traj
	res.Points = len(d.traj)
	res.Slope = d.fit.Slope
	res.Intercept = d.fit.Intercept
	res.Raw = d.raw

	if f.cfg.Debounce {
		res.Stable = f.stabilizer.Observe(d.raw)
		res.Pending = f.stabilizer.Pending()
	} else {
		res.Stable = d.raw
	}

	// an unmapped direction is a bug, let it crash
	res.Command = steering.CommandFor(res.Stable)

	debug.VisionLog("frame classified",
		"frame", res.Frame,
		"points", res.Points,
		"slope", res.Slope,
		"raw", res.Raw,
		"stable", res.Stable,
		"pending", res.Pending)

	var sendErr error
	if f.deps.Actuator != nil {
		resp, err := f.deps.Actuator.Send(ctx, res.Command)
		res.Response = resp
		if err != nil {
			if errors.Is(err, actuator.ErrNoResponse) {
				f.noResponse.Add(1)
			} else {
				f.transportErrors.Add(1)
			}
			sendErr = fmt.Errorf("%w: %w", ErrTransport, err)
			res.Error = sendErr.Error()
		}
	}
	if sendErr == nil || errors.Is(sendErr, actuator.ErrNoResponse) {
		f.logger.Info("steering",
			"frame", res.Frame,
			"direction", res.Stable,
			"command", res.Command,
			"response", res.Response)
	}

	res.Latency = time.Since(start)
	f.show(frame, &res)
	f.publish(frame, &res)

	return res, sendErr
}

func (f *Follower[F]) stageFailed(res Result, err error) (Result, error) {
	f.stageErrors.Add(1)
	res.Error = err.Error()
	res.Latency = time.Since(res.Time)
	if f.deps.Sink != nil {
		f.deps.Sink.Publish(res.Telemetry, nil)
	}
	return res, err
}

func (f *Follower[F]) show(frame F, res *Result) {
	if f.deps.Display == nil || f.displayFailed {
		return
	}
	stop, err := f.deps.Display.Show(frame, res)
	if err != nil {
		f.displayFailed = true
		f.logger.Warn("display disabled", "error", err)
		return
	}
	res.Stop = stop
}

func (f *Follower[F]) publish(frame F, res *Result) {
	if f.deps.Sink == nil {
		return
	}
	var jpeg []byte
	if f.deps.Encoder != nil {
		b, err := f.deps.Encoder.Encode(frame, res)
		if err != nil {
			f.logger.Debug("frame encode failed", "error", err)
		} else {
			jpeg = b
		}
	}
	f.deps.Sink.Publish(res.Telemetry, jpeg)
}

// stage runs fn, converting an error or panic into ErrStage.
func stage[T any](name string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrStage, name, r)
		}
	}()
	out, err = fn()
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrStage, name, err)
	}
	return out, err
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
