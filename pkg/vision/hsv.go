package vision

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrEmptyFrame is returned when a frame has no pixels.
var ErrEmptyFrame = errors.New("vision: empty frame")

// HSVMasker is the pure-Go masker. It works on any image.Image and uses a
// square structuring element, so results differ slightly from the OpenCV
// backend's ellipse around blob corners.
type HSVMasker struct{}

// NewHSVMasker returns a pure-Go masker.
func NewHSVMasker() *HSVMasker {
	return &HSVMasker{}
}

// Mask thresholds frame in HSV and applies one opening then one closing.
// It is a pure function of its inputs.
func (m *HSVMasker) Mask(frame image.Image, cfg MaskConfig) (*Mask, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}

	src := frame
	if cfg.Boost {
		src = Boost(frame, cfg.BoostAlpha, cfg.BoostBeta)
	}

	raw := threshold(src, cfg)

	radius := float64(cfg.KernelSize / 2)
	if radius <= 0 {
		return MaskFromImage(raw), nil
	}

	// open removes speckle, close fills pinholes in the tape
	opened := effect.Dilate(effect.Erode(raw, radius), radius)
	closed := effect.Erode(effect.Dilate(opened, radius), radius)

	return MaskFromImage(closed), nil
}

// Boost brightens an image with the linear transform used for dim floors.
func Boost(img image.Image, alpha, beta float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: BoostValue(c.R, alpha, beta),
			G: BoostValue(c.G, alpha, beta),
			B: BoostValue(c.B, alpha, beta),
			A: c.A,
		}
	})
}

// ToOpenCVHSV converts a color to OpenCV 8-bit HSV units.
func ToOpenCVHSV(c color.Color) (h, s, v int) {
	cf, _ := colorful.MakeColor(c)
	hf, sf, vf := cf.Hsv()

	h = int(math.Round(hf / 2))
	if h >= 180 {
		h -= 180
	}
	return h, int(math.Round(sf * 255)), int(math.Round(vf * 255))
}

func threshold(img image.Image, cfg MaskConfig) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			h, s, v := ToOpenCVHSV(img.At(b.Min.X+x, b.Min.Y+y))
			if cfg.Contains(h, s, v) {
				out.Pix[y*out.Stride+x] = Line
			}
		}
	}
	return out
}
