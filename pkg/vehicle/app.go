package vehicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/actuator"
	"github.com/teslashibe/go-linefollow/pkg/debug"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/steering"
	"github.com/teslashibe/go-linefollow/pkg/vision/cv"
	"github.com/teslashibe/go-linefollow/pkg/web"
)

// Sender is the actuator as the app holds it.
type Sender interface {
	follower.Actuator
	Close() error
}

// App is the vehicle process.
type App struct {
	config Config
	logger *slog.Logger

	camera   *cv.Camera
	masker   *cv.Masker
	actuator Sender
	display  *cv.Display
	encoder  *cv.JPEGEncoder

	loop      *follower.Follower[gocv.Mat]
	webServer *web.Server
}

// New creates the app with the given configuration.
func New(cfg Config) (*App, error) {
	// Apply environment overrides
	cfg.LoadEnvConfig()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Init(cfg.LogLevel)
	debug.Enabled = cfg.Debug
	debug.Vision = cfg.DebugVision

	return &App{
		config: cfg,
		logger: log.With("component", "vehicle"),
	}, nil
}

// Init opens the devices and builds the loop.
// Call this after New() and before Run().
func (a *App) Init() error {
	a.logger.Info("line follower starting",
		"serial", a.config.SerialPort,
		"dry_run", a.config.DryRun,
		"camera", a.config.Camera.Device,
		"resolution", fmt.Sprintf("%dx%d", a.config.Camera.Width, a.config.Camera.Height))
	debug.Log("debug mode enabled")

	if err := a.initActuator(); err != nil {
		return fmt.Errorf("actuator init: %w", err)
	}

	cam, err := cv.OpenCamera(a.config.Camera)
	if err != nil {
		return fmt.Errorf("camera init: %w", err)
	}
	a.camera = cam
	a.masker = cv.NewMasker()

	annotator := cv.NewAnnotator()
	annotator.MinContourArea = a.config.MinContourArea

	deps := follower.Deps[gocv.Mat]{
		Source:   a.camera,
		Masker:   a.masker,
		Actuator: a.actuator,
		Logger:   log.L(),
	}
	if a.config.Display {
		a.display = cv.NewDisplay(annotator)
		deps.Display = a.display
	}
	if a.config.DashboardAddr != "" {
		a.encoder = cv.NewJPEGEncoder(annotator)
		deps.Encoder = a.encoder
	}

	if a.config.DashboardAddr != "" {
		a.webServer = web.NewServer(a.config.DashboardAddr)
		deps.Sink = a.webServer
	}

	loop, err := follower.New(a.config.Loop, deps)
	if err != nil {
		return fmt.Errorf("loop init: %w", err)
	}
	a.loop = loop
	if a.webServer != nil {
		a.webServer.Attach(loop)
	}

	return nil
}

func (a *App) initActuator() error {
	if a.config.DryRun {
		a.logger.Warn("dry run: commands are not sent to the vehicle")
		a.actuator = actuator.NewMock()
		return nil
	}

	s, err := actuator.Open(a.config.SerialPort, a.config.Port,
		actuator.WithTerminator(a.config.Terminator),
		actuator.WithLogger(log.L()))
	if err != nil {
		return err
	}
	a.actuator = s
	return nil
}

// Run drives the loop until ctx is cancelled or the operator quits.
// Blocks until then.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webErr := make(chan error, 1)
	if a.webServer != nil {
		go func() {
			webErr <- a.webServer.Run(ctx)
		}()
	}

	err := a.loop.Run(ctx)
	cancel()

	if a.webServer != nil {
		if werr := <-webErr; werr != nil && !errors.Is(werr, context.Canceled) {
			a.logger.Warn("dashboard stopped", "error", werr)
		}
	}
	return err
}

// Shutdown stops the vehicle and releases every device.
func (a *App) Shutdown() {
	if a.actuator != nil {
		// leave the vehicle stopped
		if _, err := a.actuator.Send(context.Background(), steering.Stop); err != nil && !errors.Is(err, actuator.ErrNoResponse) {
			a.logger.Warn("final stop not delivered", "error", err)
		}
		a.actuator.Close()
	}
	if a.display != nil {
		a.display.Close()
	}
	if a.masker != nil {
		a.masker.Close()
	}
	if a.camera != nil {
		a.camera.Close()
	}
	a.logger.Info("line follower stopped")
}
