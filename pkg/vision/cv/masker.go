// Package cv is the OpenCV backend of the vision pipeline: camera capture,
// HSV masking, contour and trajectory annotation, and on-screen display.
// Frames are BGR gocv.Mat values.
package cv

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// Masker thresholds BGR frames in HSV space and cleans the result with one
// morphological opening and one closing.
type Masker struct {
	mu      sync.Mutex
	kernels map[int]gocv.Mat

	hsv     gocv.Mat
	boosted gocv.Mat
	mask    gocv.Mat
}

// NewMasker allocates the working buffers. Call Close when done.
func NewMasker() *Masker {
	return &Masker{
		kernels: make(map[int]gocv.Mat),
		hsv:     gocv.NewMat(),
		boosted: gocv.NewMat(),
		mask:    gocv.NewMat(),
	}
}

// Mask computes the binary line mask of frame.
func (m *Masker) Mask(frame gocv.Mat, cfg vision.MaskConfig) (*vision.Mask, error) {
	if frame.Empty() {
		return nil, vision.ErrEmptyFrame
	}
	if frame.Channels() != 3 {
		return nil, fmt.Errorf("cv: expected 3-channel BGR frame, got %d channels", frame.Channels())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src := frame
	if cfg.Boost {
		gocv.ConvertScaleAbs(frame, &m.boosted, cfg.BoostAlpha, cfg.BoostBeta)
		src = m.boosted
	}

	gocv.CvtColor(src, &m.hsv, gocv.ColorBGRToHSV)

	lower := gocv.NewScalar(float64(cfg.HueMin), float64(cfg.SatMin), float64(cfg.ValMin), 0)
	upper := gocv.NewScalar(float64(cfg.HueMax), 255, 255, 0)
	gocv.InRangeWithScalar(m.hsv, lower, upper, &m.mask)

	kernel := m.kernel(cfg.KernelSize)
	gocv.MorphologyEx(m.mask, &m.mask, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(m.mask, &m.mask, gocv.MorphClose, kernel)

	return vision.MaskFromBytes(m.mask.Cols(), m.mask.Rows(), m.mask.ToBytes()), nil
}

func (m *Masker) kernel(size int) gocv.Mat {
	if k, ok := m.kernels[size]; ok {
		return k
	}
	k := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size))
	m.kernels[size] = k
	return k
}

// Close releases the OpenCV buffers.
func (m *Masker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for size, k := range m.kernels {
		k.Close()
		delete(m.kernels, size)
	}
	m.hsv.Close()
	m.boosted.Close()
	m.mask.Close()
	return nil
}

// MaskMat copies a vision mask into a new single-channel Mat.
// The caller owns the result.
func MaskMat(mask *vision.Mask) (gocv.Mat, error) {
	shared, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, mask.Pix)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer shared.Close()
	// detach from the Go slice
	return shared.Clone(), nil
}
