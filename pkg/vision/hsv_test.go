package vision

import (
	"image"
	"image/color"
	"testing"
)

var (
	blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// stripeFrame draws a vertical blue stripe on white, plus a single blue
// speck that the opening should remove.
func stripeFrame(w, h, x0, x1 int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := white
			if x >= x0 && x <= x1 {
				c = blue
			}
			img.SetRGBA(x, y, c)
		}
	}
	img.SetRGBA(w-5, 4, blue)
	return img
}

func TestToOpenCVHSV(t *testing.T) {
	tests := []struct {
		name    string
		c       color.Color
		h, s, v int
	}{
		{"pure blue", blue, 120, 255, 255},
		{"white", white, 0, 0, 255},
		{"black", color.RGBA{A: 255}, 0, 0, 0},
		{"pure red", color.RGBA{R: 255, A: 255}, 0, 255, 255},
		{"pure green", color.RGBA{G: 255, A: 255}, 60, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := ToOpenCVHSV(tt.c)
			if h != tt.h || s != tt.s || v != tt.v {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestHSVMasker_Stripe(t *testing.T) {
	frame := stripeFrame(40, 30, 10, 15)

	mask, err := NewHSVMasker().Mask(frame, DefaultMaskConfig())
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}

	if mask.Width != 40 || mask.Height != 30 {
		t.Fatalf("mask size %dx%d, want 40x30", mask.Width, mask.Height)
	}
	if mask.IsLine(35, 4) {
		t.Error("isolated speck should be removed by opening")
	}

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			want := x >= 10 && x <= 15
			if mask.IsLine(x, y) != want {
				t.Fatalf("pixel (%d,%d) line=%v, want %v", x, y, mask.IsLine(x, y), want)
			}
		}
	}

	traj := ExtractTrajectory(mask)
	if len(traj) != 30 {
		t.Fatalf("trajectory has %d points, want 30", len(traj))
	}
	for _, p := range traj {
		if p.X != 12.5 {
			t.Errorf("row %d: X = %v, want 12.5", p.Row, p.X)
		}
	}
}

func TestHSVMasker_NoLine(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	mask, err := NewHSVMasker().Mask(img, DefaultMaskConfig())
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if mask.Count() != 0 {
		t.Errorf("white frame produced %d line pixels", mask.Count())
	}
	if len(ExtractTrajectory(mask)) != 0 {
		t.Error("white frame should give an empty trajectory")
	}
}

func TestHSVMasker_Idempotent(t *testing.T) {
	frame := stripeFrame(32, 24, 4, 12)
	m := NewHSVMasker()
	cfg := DefaultMaskConfig()

	first, err := m.Mask(frame, cfg)
	if err != nil {
		t.Fatalf("first Mask: %v", err)
	}
	second, err := m.Mask(frame, cfg)
	if err != nil {
		t.Fatalf("second Mask: %v", err)
	}
	if !first.Equal(second) {
		t.Error("masking the same frame twice gave different masks")
	}
}

func TestHSVMasker_EmptyFrame(t *testing.T) {
	if _, err := NewHSVMasker().Mask(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultMaskConfig()); err != ErrEmptyFrame {
		t.Errorf("err = %v, want ErrEmptyFrame", err)
	}
	if _, err := NewHSVMasker().Mask(nil, DefaultMaskConfig()); err != ErrEmptyFrame {
		t.Errorf("nil frame: err = %v, want ErrEmptyFrame", err)
	}
}

func TestBoostValue(t *testing.T) {
	tests := []struct {
		in   uint8
		want uint8
	}{
		{0, 70},
		{100, 220},
		{123, 255}, // 254.5 rounds up
		{200, 255},
		{255, 255},
	}

	for _, tt := range tests {
		if got := BoostValue(tt.in, 1.5, 70); got != tt.want {
			t.Errorf("BoostValue(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if got := BoostValue(10, 1, -50); got != 40 {
		t.Errorf("negative result is folded by abs: got %d, want 40", got)
	}
}

func TestBoost_KeepsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out := Boost(img, 1.5, 70)
	got := out.NRGBAAt(0, 0)
	want := color.NRGBA{R: 85, G: 100, B: 115, A: 255}
	if got != want {
		t.Errorf("Boost = %+v, want %+v", got, want)
	}
}

func TestMaskConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MaskConfig)
		wantErr int
	}{
		{"default", func(c *MaskConfig) {}, 0},
		{"inverted hue", func(c *MaskConfig) { c.HueMin, c.HueMax = 130, 100 }, 1},
		{"hue too high", func(c *MaskConfig) { c.HueMax = 200 }, 1},
		{"even kernel", func(c *MaskConfig) { c.KernelSize = 4 }, 1},
		{"bad sat and val", func(c *MaskConfig) { c.SatMin, c.ValMin = -1, 300 }, 2},
		{"zero alpha", func(c *MaskConfig) { c.BoostAlpha = 0 }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMaskConfig()
			tt.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) != tt.wantErr {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.wantErr)
			}
		})
	}
}
