// Package render rasterizes strokes onto a pixel buffer with gg.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"Sketchpad/internal/state"
)

var (
	ErrInvalidSize    = errors.New("raster size must be positive")
	ErrInvalidDensity = errors.New("density must be a positive finite number")
)

// ValidDensity reports whether d can scale stroke geometry.
func ValidDensity(d float32) bool {
	f := float64(d)
	return f > 0 && !math.IsInf(f, 0)
}

// Raster is the pixel buffer the drawing is composed into. Stroke geometry
// is in dp and is multiplied by the density when drawn.
type Raster struct {
	dc         *gg.Context
	density    float32
	background color.NRGBA
	bgImage    *gg.ImageBuf
}

// NewRaster allocates a width x height pixel raster. A zero density means 1.
func NewRaster(width, height int, density float32, background color.NRGBA) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if density == 0 {
		density = 1
	}
	if !ValidDensity(density) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDensity, density)
	}
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &Raster{dc: dc, density: density, background: background}, nil
}

// Resize reallocates the pixel buffer. Content is lost until the next redraw.
func (r *Raster) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return r.dc.Resize(width, height)
}

// Size returns the raster dimensions in pixels.
func (r *Raster) Size() (width, height int) {
	return r.dc.Width(), r.dc.Height()
}

// SetDensity sets the pixels-per-dp factor. Invalid values are ignored.
func (r *Raster) SetDensity(d float32) {
	if ValidDensity(d) {
		r.density = d
	}
}

// Density returns the pixels-per-dp factor.
func (r *Raster) Density() float32 {
	return r.density
}

// SetBackground places img behind the drawing, scaled to fill the raster.
// A nil image restores the plain background color.
func (r *Raster) SetBackground(img image.Image) {
	if img == nil {
		r.bgImage = nil
		return
	}
	r.bgImage = gg.ImageBufFromImage(img)
}

// HasBackground reports whether a background image is set.
func (r *Raster) HasBackground() bool {
	return r.bgImage != nil
}

// Clear paints the background color and, if set, the background image.
func (r *Raster) Clear() {
	r.dc.ClearPath()
	r.dc.ClearWithColor(gg.FromColor(r.background))
	if r.bgImage == nil {
		return
	}
	r.dc.DrawImageEx(r.bgImage, gg.DrawImageOptions{
		DstWidth:      float64(r.dc.Width()),
		DstHeight:     float64(r.dc.Height()),
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// DrawStroke strokes s with its own color and thickness. Point-only strokes
// draw nothing.
func (r *Raster) DrawStroke(s state.Stroke) error {
	if s.Degenerate() {
		return nil
	}
	d := float64(r.density)
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(float64(s.Thickness) * d)
	r.dc.MoveTo(float64(s.Points[0].X)*d, float64(s.Points[0].Y)*d)
	for _, p := range s.Points[1:] {
		r.dc.LineTo(float64(p.X)*d, float64(p.Y)*d)
	}
	return r.dc.Stroke()
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() (*image.RGBA, error) {
	if err := r.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush raster: %w", err)
	}
	img, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected raster image type %T", r.dc.Image())
	}
	return img, nil
}

// Close releases the drawing context.
func (r *Raster) Close() error {
	return r.dc.Close()
}
