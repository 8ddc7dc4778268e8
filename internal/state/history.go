package state

import (
	"fmt"
)

// History is the ordered list of committed strokes. Index order is z-order.
type History struct {
	strokes []Stroke
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{strokes: make([]Stroke, 0, 64)}
}

// Append adds s on top of every earlier stroke.
func (h *History) Append(s Stroke) {
	h.strokes = append(h.strokes, s)
}

// UndoLast removes the most recent stroke. It reports false, and does
// nothing, when the history is empty.
func (h *History) UndoLast() (Stroke, bool) {
	n := len(h.strokes)
	if n == 0 {
		return Stroke{}, false
	}
	last := h.strokes[n-1]
	h.strokes[n-1] = Stroke{}
	h.strokes = h.strokes[:n-1]
	return last, true
}

// Clear drops every stroke.
func (h *History) Clear() {
	clear(h.strokes)
	h.strokes = h.strokes[:0]
}

// Len returns the number of committed strokes.
func (h *History) Len() int {
	return len(h.strokes)
}

// Strokes returns a deep copy of the history in z-order.
func (h *History) Strokes() []Stroke {
	out := make([]Stroke, len(h.strokes))
	for i, s := range h.strokes {
		out[i] = s.Clone()
	}
	return out
}

// RenderAll replays every stroke in insertion order through r.
func (h *History) RenderAll(r StrokeRenderer) error {
	for i, s := range h.strokes {
		if err := r.DrawStroke(s); err != nil {
			return fmt.Errorf("render stroke %d (%s): %w", i, s.ID, err)
		}
	}
	return nil
}
