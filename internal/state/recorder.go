package state

import (
	"image/color"
)

// Recorder accumulates the in-progress stroke. It always holds a valid,
// possibly empty, stroke so extending never needs a nil check.
type Recorder struct {
	current Stroke
	active  bool
}

// NewRecorder returns an idle recorder whose empty stroke carries c and thickness.
func NewRecorder(c color.NRGBA, thickness float32) *Recorder {
	return &Recorder{current: Stroke{Color: c, Thickness: thickness}}
}

// Begin discards any in-progress points and starts a new stroke at p.
func (r *Recorder) Begin(p Point, c color.NRGBA, thickness float32) {
	r.current = Stroke{
		Points:    []Point{p},
		Color:     c,
		Thickness: thickness,
	}
	stamp(&r.current)
	r.active = true
}

// Extend appends a segment from the current end to p. On an empty stroke it
// starts the stroke at p with the recorder's carried color and thickness.
func (r *Recorder) Extend(p Point) {
	if r.current.Empty() {
		r.Begin(p, r.current.Color, r.current.Thickness)
		return
	}
	r.current.Points = append(r.current.Points, p)
}

// Commit finalizes the current stroke and readies a fresh empty one with the
// same color and thickness.
func (r *Recorder) Commit() Stroke {
	done := r.current.Clone()
	r.current = Stroke{Color: done.Color, Thickness: done.Thickness}
	r.active = false
	return done
}

// Reset drops the in-progress stroke without committing it.
func (r *Recorder) Reset() {
	r.current = Stroke{Color: r.current.Color, Thickness: r.current.Thickness}
	r.active = false
}

// Current returns the in-progress stroke. The result must not be modified.
func (r *Recorder) Current() Stroke {
	return r.current
}

// Active reports whether a stroke has begun and not yet been committed.
func (r *Recorder) Active() bool {
	return r.active
}
