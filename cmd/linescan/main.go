// linescan runs the line detection pipeline over still images and reports
// the trajectory fit, direction and command for each one. It needs no
// camera, serial port or OpenCV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/disintegration/imaging"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

func main() {
	cfg := follower.DefaultConfig()
	cfg.NoFrameBackoff = 0

	overlayDir := flag.String("overlay", "", "Write annotated copies of each image to this directory")
	asJSON := flag.Bool("json", false, "Print one JSON telemetry record per image")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.Debounce, "debounce", false, "Treat the images as consecutive frames and debounce")
	flag.IntVar(&cfg.DebounceThreshold, "debounce-frames", cfg.DebounceThreshold, "Frames of disagreement before the direction changes")
	flag.Float64Var(&cfg.SlopeThreshold, "slope", cfg.SlopeThreshold, "Slope below which the line counts as straight")
	flag.IntVar(&cfg.Mask.HueMin, "hue-min", cfg.Mask.HueMin, "Lowest line hue (OpenCV units, 0-179)")
	flag.IntVar(&cfg.Mask.HueMax, "hue-max", cfg.Mask.HueMax, "Highest line hue (OpenCV units, 0-179)")
	flag.IntVar(&cfg.Mask.SatMin, "sat-min", cfg.Mask.SatMin, "Lowest line saturation")
	flag.IntVar(&cfg.Mask.ValMin, "val-min", cfg.Mask.ValMin, "Lowest line value")
	flag.BoolVar(&cfg.Mask.Boost, "boost", cfg.Mask.Boost, "Brighten images before masking")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: linescan [flags] image...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Init(*logLevel)

	paths, err := expand(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "linescan: %v\n", err)
		os.Exit(2)
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *overlayDir != "" {
		if err := os.MkdirAll(*overlayDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "linescan: %v\n", err)
			os.Exit(1)
		}
	}

	src := vision.NewFileSource(paths)
	report := newReporter(src, *overlayDir, *asJSON)
	defer report.Flush()

	loop, err := follower.New(cfg, follower.Deps[image.Image]{
		Source:  src,
		Masker:  vision.NewHSVMasker(),
		Display: report,
		Sink:    report,
		Logger:  log.L(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "linescan: %v\n", err)
		os.Exit(2)
	}

	if err := loop.Run(context.Background()); err != nil {
		report.Flush()
		fmt.Fprintf(os.Stderr, "linescan: %v\n", err)
		os.Exit(1)
	}

	if s := loop.Stats(); s.Skipped > 0 || s.StageErrors > 0 {
		report.Flush()
		fmt.Fprintf(os.Stderr, "linescan: %d unreadable, %d failed\n", s.Skipped, s.StageErrors)
		os.Exit(1)
	}
}

// expand resolves directories to the images they contain.
func expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := imaging.FormatFromFilename(e.Name()); err == nil {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

// reporter prints one line per image and optionally saves the overlay.
// It serves as both the loop's display and its telemetry sink.
type reporter struct {
	src        *vision.FileSource
	overlayDir string
	asJSON     bool
	enc        *json.Encoder
	tw         *tabwriter.Writer
	header     bool
}

func newReporter(src *vision.FileSource, overlayDir string, asJSON bool) *reporter {
	return &reporter{
		src:        src,
		overlayDir: overlayDir,
		asJSON:     asJSON,
		enc:        json.NewEncoder(os.Stdout),
		tw:         tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0),
	}
}

// Show saves the overlay for the current image.
func (r *reporter) Show(frame image.Image, res *follower.Result) (bool, error) {
	if r.overlayDir == "" {
		return false, nil
	}
	out := vision.DrawTrajectory(frame, res.Mask, res.Trajectory)
	name := strings.TrimSuffix(filepath.Base(r.src.Current), filepath.Ext(r.src.Current)) + "_line.png"
	if err := imaging.Save(out, filepath.Join(r.overlayDir, name)); err != nil {
		log.Warn("overlay not saved", "image", r.src.Current, "error", err)
	}
	return false, nil
}

// Publish prints the record for the current image.
func (r *reporter) Publish(t follower.Telemetry, _ []byte) {
	if r.asJSON {
		record := struct {
			Image string `json:"image"`
			follower.Telemetry
		}{Image: r.src.Current, Telemetry: t}
		if err := r.enc.Encode(record); err != nil {
			log.Warn("record not written", "error", err)
		}
		return
	}

	if !r.header {
		fmt.Fprintln(r.tw, "IMAGE\tPOINTS\tSLOPE\tINTERCEPT\tRAW\tSTABLE\tCOMMAND\tERROR")
		r.header = true
	}
	fmt.Fprintf(r.tw, "%s\t%d\t%.4f\t%.2f\t%s\t%s\t%s\t%s\n",
		r.src.Current, t.Points, t.Slope, t.Intercept, t.Raw, t.Stable, t.Command, t.Error)
}

// Flush writes any buffered table rows.
func (r *reporter) Flush() {
	r.tw.Flush()
}
