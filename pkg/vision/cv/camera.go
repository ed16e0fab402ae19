package cv

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/camera"
)

// Camera reads BGR frames from a video device. Every Read fills the same
// buffer, so a frame is only valid until the next Read.
type Camera struct {
	cfg camera.Config
	vc  *gocv.VideoCapture
	buf gocv.Mat
}

// OpenCamera opens the device named in cfg: a numeric index or a path/URL.
func OpenCamera(cfg camera.Config) (*Camera, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("camera config: %v", problems)
	}

	var device any = cfg.Device
	if idx, ok := cfg.DeviceIndex(); ok {
		device = idx
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", cfg.Device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	log.Info("camera opened",
		"device", cfg.Device,
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)))

	return &Camera{cfg: cfg, vc: vc, buf: gocv.NewMat()}, nil
}

// Read grabs the next frame. A failed or empty grab is camera.ErrNoFrame.
func (c *Camera) Read(ctx context.Context) (gocv.Mat, error) {
	if err := ctx.Err(); err != nil {
		return c.buf, err
	}
	if ok := c.vc.Read(&c.buf); !ok || c.buf.Empty() {
		return c.buf, camera.ErrNoFrame
	}
	return c.buf, nil
}

// Close releases the device and the frame buffer.
func (c *Camera) Close() error {
	c.buf.Close()
	return c.vc.Close()
}
