package cv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

// stripeMat is a BGR frame with a vertical blue stripe on white.
func stripeMat(t *testing.T, w, h, x0, x1 int) gocv.Mat {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= x0 && x <= x1 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	mat, err := gocv.ImageToMatRGB(img)
	require.NoError(t, err)
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestMaskerStripe(t *testing.T) {
	m := NewMasker()
	defer m.Close()

	mask, err := m.Mask(stripeMat(t, 40, 30, 10, 15), vision.DefaultMaskConfig())
	require.NoError(t, err)
	assert.Equal(t, 40, mask.Width)
	assert.Equal(t, 30, mask.Height)

	traj := vision.ExtractTrajectory(mask)
	require.Len(t, traj, 30)
	for _, p := range traj {
		assert.InDelta(t, 12.5, p.X, 1e-9, "row %d", p.Row)
	}
}

func TestMaskerDeterministic(t *testing.T) {
	m := NewMasker()
	defer m.Close()
	frame := stripeMat(t, 40, 30, 5, 12)

	a, err := m.Mask(frame, vision.DefaultMaskConfig())
	require.NoError(t, err)
	b, err := m.Mask(frame, vision.DefaultMaskConfig())
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestMaskerRejectsEmptyFrame(t *testing.T) {
	m := NewMasker()
	defer m.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	_, err := m.Mask(empty, vision.DefaultMaskConfig())
	assert.ErrorIs(t, err, vision.ErrEmptyFrame)
}

func TestMaskMatRoundTrip(t *testing.T) {
	mask := vision.NewMask(8, 4)
	mask.Set(3, 2, true)

	mat, err := MaskMat(mask)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 4, mat.Rows())
	assert.Equal(t, 8, mat.Cols())
	assert.Equal(t, uint8(vision.Line), mat.GetUCharAt(2, 3))
	assert.Equal(t, uint8(vision.Background), mat.GetUCharAt(0, 0))
}

func TestAnnotateSkipsSmallRegions(t *testing.T) {
	mask := vision.NewMask(100, 100)
	// 30x30 block passes, 3x3 speck does not
	for y := 10; y < 40; y++ {
		for x := 10; x < 40; x++ {
			mask.Set(x, y, true)
		}
	}
	for y := 80; y < 83; y++ {
		for x := 80; x < 83; x++ {
			mask.Set(x, y, true)
		}
	}
	frame := stripeMat(t, 100, 100, -1, -1)
	green := gocv.Vecb{0, 255, 0}

	a := NewAnnotator()
	out := a.Annotate(frame, mask, nil)
	defer out.Close()
	assert.Equal(t, green, out.GetVecbAt(25, 10), "block outline")
	assert.Equal(t, gocv.Vecb{255, 255, 255}, out.GetVecbAt(81, 80), "speck left alone")
	assert.Equal(t, gocv.Vecb{255, 255, 255}, frame.GetVecbAt(25, 10), "input untouched")

	a.MinContourArea = 1
	all := a.Annotate(frame, mask, nil)
	defer all.Close()
	assert.Equal(t, green, all.GetVecbAt(81, 80))
}

func TestContourAreaBoundIsStrict(t *testing.T) {
	a := NewAnnotator()
	assert.False(t, a.keep(DefaultMinContourArea))
	assert.False(t, a.keep(DefaultMinContourArea-1))
	assert.True(t, a.keep(DefaultMinContourArea+0.5))

	a.MinContourArea = 0
	assert.False(t, a.keep(0))
	assert.True(t, a.keep(1))
}

func TestEncodeProducesJPEG(t *testing.T) {
	frame := stripeMat(t, 40, 30, 10, 15)
	m := NewMasker()
	defer m.Close()

	mask, err := m.Mask(frame, vision.DefaultMaskConfig())
	require.NoError(t, err)
	res := &follower.Result{Mask: mask, Trajectory: vision.ExtractTrajectory(mask)}

	jpeg, err := NewJPEGEncoder(nil).Encode(frame, res)
	require.NoError(t, err)
	require.Greater(t, len(jpeg), 2)
	assert.Equal(t, []byte{0xff, 0xd8}, jpeg[:2])
}
