package state

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Preset brush sizes in dp.
const (
	BrushSmall  float32 = 10
	BrushMedium float32 = 20
	BrushLarge  float32 = 30
)

var (
	ErrUnknownColor     = errors.New("unknown color")
	ErrInvalidThickness = errors.New("thickness must be a positive number")
)

// Brush is the color and thickness the next stroke will start with.
type Brush struct {
	Color     color.NRGBA
	Thickness float32
}

// DefaultBrush is black at the medium preset.
func DefaultBrush() Brush {
	return Brush{Color: color.NRGBA{A: 0xff}, Thickness: BrushMedium}
}

// SetColor parses token and, if valid, makes it the brush color.
func (b *Brush) SetColor(token string) error {
	c, err := ParseColor(token)
	if err != nil {
		return err
	}
	b.Color = c
	return nil
}

// SetThickness sets the brush thickness in dp.
func (b *Brush) SetThickness(dp float32) error {
	if err := ValidThickness(dp); err != nil {
		return err
	}
	b.Thickness = dp
	return nil
}

// ValidThickness rejects zero, negative, NaN and infinite sizes.
func ValidThickness(dp float32) error {
	f := float64(dp)
	if math.IsNaN(f) || math.IsInf(f, 0) || dp <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThickness, dp)
	}
	return nil
}

// ParseColor accepts a CSS color name ("red", "steelblue") or a hex token
// "#RGB", "#RRGGBB" or "#AARRGGBB". The eight digit form puts alpha first.
func ParseColor(token string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrUnknownColor)
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:], token)
	}
	c, ok := colornames.Map[s]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, token)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

func parseHex(hex, token string) (color.NRGBA, error) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, token)
	}
	switch len(hex) {
	case 3:
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 0xff}, nil
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, token)
}

// FormatColor renders c as "#rrggbb", or "#aarrggbb" when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}
