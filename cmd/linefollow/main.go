// linefollow drives a line-following vehicle: it reads the camera, picks a
// steering direction each frame and sends it to the drive controller over
// a serial line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/camera"
	"github.com/teslashibe/go-linefollow/pkg/vehicle"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "linefollow: %v\n", err)
		os.Exit(2)
	}

	app, err := vehicle.New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if err := app.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		app.Shutdown()
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
	}
}

// parseFlags parses command line flags and returns configuration.
// A camera preset is applied first; explicit -width/-height override it.
func parseFlags(args []string) (vehicle.Config, error) {
	cfg := vehicle.DefaultConfig()
	fs := flag.NewFlagSet("linefollow", flag.ContinueOnError)

	fs.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	fs.BoolVar(&cfg.DebugVision, "debug-vision", false, "Log every frame's trajectory and fit")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (LOG_LEVEL)")

	fs.StringVar(&cfg.SerialPort, "serial", cfg.SerialPort, "Drive controller serial device (LINE_SERIAL_PORT)")
	fs.IntVar(&cfg.Port.BaudRate, "baud", cfg.Port.BaudRate, "Serial baud rate")
	fs.DurationVar(&cfg.Port.ReadTimeout, "reply-timeout", cfg.Port.ReadTimeout, "How long to wait for the controller's reply")
	terminator := fs.String("terminator", `\n`, `Command terminator: \n, \r\n or none`)
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Do not open the serial port; log commands only")

	preset := fs.String("preset", "", "Camera preset: "+fmt.Sprint(camera.PresetNames()))
	fs.StringVar(&cfg.Camera.Device, "camera", cfg.Camera.Device, "Camera index or path (LINE_CAMERA_DEVICE)")
	width := fs.Int("width", cfg.Camera.Width, "Capture width (overrides -preset)")
	height := fs.Int("height", cfg.Camera.Height, "Capture height (overrides -preset)")

	fs.BoolVar(&cfg.Display, "display", false, "Show frame and mask windows (press q to quit)")
	fs.Float64Var(&cfg.MinContourArea, "min-area", cfg.MinContourArea, "Regions must be larger than this to be drawn in the annotation")
	fs.StringVar(&cfg.DashboardAddr, "dashboard", cfg.DashboardAddr, "Dashboard listen address, empty to disable (LINE_DASHBOARD_ADDR)")

	mask := &cfg.Loop.Mask
	fs.IntVar(&mask.HueMin, "hue-min", mask.HueMin, "Lowest line hue (OpenCV units, 0-179)")
	fs.IntVar(&mask.HueMax, "hue-max", mask.HueMax, "Highest line hue (OpenCV units, 0-179)")
	fs.IntVar(&mask.SatMin, "sat-min", mask.SatMin, "Lowest line saturation")
	fs.IntVar(&mask.ValMin, "val-min", mask.ValMin, "Lowest line value")
	fs.BoolVar(&mask.Boost, "boost", mask.Boost, "Brighten frames before masking")
	fs.Float64Var(&mask.BoostAlpha, "boost-alpha", mask.BoostAlpha, "Brightness boost gain")
	fs.Float64Var(&mask.BoostBeta, "boost-beta", mask.BoostBeta, "Brightness boost offset")
	fs.Float64Var(&cfg.Loop.SlopeThreshold, "slope", cfg.Loop.SlopeThreshold, "Slope below which the line counts as straight")
	fs.IntVar(&cfg.Loop.DebounceThreshold, "debounce", cfg.Loop.DebounceThreshold, "Frames of disagreement before the direction changes")
	noDebounce := fs.Bool("no-debounce", false, "Send raw per-frame directions")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *preset != "" {
		p := camera.GetPreset(*preset)
		if p == nil {
			return cfg, fmt.Errorf("unknown camera preset %q", *preset)
		}
		p.Device = cfg.Camera.Device
		cfg.Camera = *p
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Camera.Width = *width
		case "height":
			cfg.Camera.Height = *height
		}
	})
	cfg.Loop.Debounce = !*noDebounce

	switch *terminator {
	case `\n`:
		cfg.Terminator = "\n"
	case `\r\n`:
		cfg.Terminator = "\r\n"
	case "none", "":
		cfg.Terminator = ""
	default:
		return cfg, fmt.Errorf("unsupported terminator %q", *terminator)
	}

	return cfg, nil
}
