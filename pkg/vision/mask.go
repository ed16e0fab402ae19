package vision

import (
	"bytes"
	"image"
	"image/color"
)

// Mask pixel values.
const (
	Background uint8 = 0
	Line       uint8 = 255
)

// Mask is a single-channel binary image, row-major, one byte per pixel.
// Every byte is either Background or Line.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// MaskFromBytes wraps a row-major 8-bit buffer, binarizing at 128.
// The buffer is copied.
func MaskFromBytes(width, height int, data []byte) *Mask {
	m := NewMask(width, height)
	n := len(m.Pix)
	if len(data) < n {
		n = len(data)
	}
	for i := 0; i < n; i++ {
		if data[i] >= 128 {
			m.Pix[i] = Line
		}
	}
	return m
}

// MaskFromImage binarizes any image by luminance at 128.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= 128 {
				m.Pix[y*m.Width+x] = Line
			}
		}
	}
	return m
}

// IsLine reports whether (x, y) is a line pixel. Out of range is background.
func (m *Mask) IsLine(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] == Line
}

// Set marks (x, y) as line or background. Out of range is ignored.
func (m *Mask) Set(x, y int, line bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	v := Background
	if line {
		v = Line
	}
	m.Pix[y*m.Width+x] = v
}

// Row returns the pixels of row y. It aliases the mask storage.
func (m *Mask) Row(y int) []uint8 {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// Count returns the number of line pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == Line {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no pixels at all.
func (m *Mask) Empty() bool {
	return m == nil || m.Width == 0 || m.Height == 0
}

// Equal reports whether two masks are bit-identical.
func (m *Mask) Equal(other *Mask) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Width == other.Width && m.Height == other.Height && bytes.Equal(m.Pix, other.Pix)
}

// Gray returns the mask as an image, for encoding or display.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+m.Width], m.Row(y))
	}
	return img
}
