package state

import (
	"image/color"
)

// Point is a pointer position in device-independent units.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Stroke is one continuous down-to-up freehand line.
type Stroke struct {
	ID        string      `json:"id"`
	Seq       uint64      `json:"seq"`
	Points    []Point     `json:"points"`
	Color     color.NRGBA `json:"color"`
	Thickness float32     `json:"thickness"`
}

// Clone returns a copy that shares no point storage with s.
func (s Stroke) Clone() Stroke {
	c := s
	if s.Points != nil {
		c.Points = make([]Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}

// Degenerate reports whether the stroke has no segment to draw.
func (s Stroke) Degenerate() bool {
	return len(s.Points) < 2
}

// Empty reports whether no point has been recorded yet.
func (s Stroke) Empty() bool {
	return len(s.Points) == 0
}

// StrokeRenderer draws a single stroke using the stroke's own color and thickness.
type StrokeRenderer interface {
	DrawStroke(s Stroke) error
}
