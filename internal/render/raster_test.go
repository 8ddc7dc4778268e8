package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sketchpad/internal/state"
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

func newTestRaster(t *testing.T) *Raster {
	t.Helper()
	r, err := NewRaster(100, 100, 1, white)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func assertRedish(t *testing.T, c color.RGBA) {
	t.Helper()
	assert.Greater(t, c.R, uint8(200), "%v", c)
	assert.Less(t, c.G, uint8(60), "%v", c)
	assert.Less(t, c.B, uint8(60), "%v", c)
}

func assertWhite(t *testing.T, c color.RGBA) {
	t.Helper()
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)
}

func TestNewRasterRejectsBadSize(t *testing.T) {
	_, err := NewRaster(0, 10, 1, white)
	assert.ErrorIs(t, err, ErrInvalidSize)

	r := newTestRaster(t)
	assert.ErrorIs(t, r.Resize(10, -1), ErrInvalidSize)
}

func TestNewRasterRejectsBadDensity(t *testing.T) {
	for _, d := range []float32{-1, float32(math.NaN()), float32(math.Inf(1))} {
		_, err := NewRaster(10, 10, d, white)
		assert.ErrorIs(t, err, ErrInvalidDensity, "density %v", d)
	}

	r, err := NewRaster(10, 10, 0, white)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, float32(1), r.Density())
}

func TestDrawStrokeUsesStrokeStyle(t *testing.T) {
	r := newTestRaster(t)
	r.Clear()
	s := state.Stroke{Points: []state.Point{{X: 10, Y: 50}, {X: 90, Y: 50}}, Color: red, Thickness: 10}
	require.NoError(t, r.DrawStroke(s))

	img, err := r.Image()
	require.NoError(t, err)
	assertRedish(t, rgbaAt(img, 50, 50))
	assertWhite(t, rgbaAt(img, 50, 10))
}

func TestDegenerateStrokeDrawsNothing(t *testing.T) {
	r := newTestRaster(t)
	r.Clear()
	before, err := r.Image()
	require.NoError(t, err)

	require.NoError(t, r.DrawStroke(state.Stroke{Points: []state.Point{{X: 50, Y: 50}}, Color: red, Thickness: 10}))
	require.NoError(t, r.DrawStroke(state.Stroke{Color: red, Thickness: 10}))

	after, err := r.Image()
	require.NoError(t, err)
	assert.Equal(t, before.Pix, after.Pix)
}

func TestRenderIsIdempotent(t *testing.T) {
	r := newTestRaster(t)
	strokes := []state.Stroke{
		{Points: []state.Point{{X: 5, Y: 5}, {X: 60, Y: 80}, {X: 90, Y: 10}}, Color: red, Thickness: 6},
		{Points: []state.Point{{X: 10, Y: 90}, {X: 90, Y: 90}}, Color: blue, Thickness: 3},
	}
	draw := func() []byte {
		r.Clear()
		for _, s := range strokes {
			require.NoError(t, r.DrawStroke(s))
		}
		img, err := r.Image()
		require.NoError(t, err)
		return img.Pix
	}
	assert.Equal(t, draw(), draw())
}

func TestDensityScalesGeometry(t *testing.T) {
	r := newTestRaster(t)
	r.SetDensity(2)
	r.SetDensity(-1)
	r.SetDensity(float32(math.NaN()))
	r.SetDensity(float32(math.Inf(1)))
	assert.Equal(t, float32(2), r.Density())

	r.Clear()
	require.NoError(t, r.DrawStroke(state.Stroke{Points: []state.Point{{X: 5, Y: 25}, {X: 45, Y: 25}}, Color: red, Thickness: 5}))
	img, err := r.Image()
	require.NoError(t, err)
	assertRedish(t, rgbaAt(img, 50, 50))
	assertWhite(t, rgbaAt(img, 50, 20))
}

func TestBackgroundImageFillsRaster(t *testing.T) {
	r := newTestRaster(t)
	bg := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i+2], bg.Pix[i+3] = 0xff, 0xff
	}
	r.SetBackground(bg)
	require.True(t, r.HasBackground())
	r.Clear()

	img, err := r.Image()
	require.NoError(t, err)
	c := rgbaAt(img, 50, 50)
	assert.Greater(t, c.B, uint8(200))
	assert.Less(t, c.R, uint8(60))

	r.SetBackground(nil)
	assert.False(t, r.HasBackground())
	r.Clear()
	img, err = r.Image()
	require.NoError(t, err)
	assertWhite(t, rgbaAt(img, 50, 50))
}

func TestResizeChangesSize(t *testing.T) {
	r := newTestRaster(t)
	require.NoError(t, r.Resize(40, 30))
	w, h := r.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())

	_, err = DecodeImage(strings.NewReader("not an image"))
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
