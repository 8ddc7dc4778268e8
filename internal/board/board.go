// Package board wires the stroke recorder, the stroke history and the
// brush to a raster and drives the redraw pass.
package board

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"Sketchpad/internal/render"
	"Sketchpad/internal/state"
)

// Options configures a new Board.
type Options struct {
	Width, Height int
	Density       float32
	Background    color.NRGBA
	Brush         state.Brush
	Logger        *slog.Logger
}

// Board is the drawing surface. It is not safe for concurrent use; every
// call must come from the same event context.
type Board struct {
	brush    state.Brush
	recorder *state.Recorder
	history  *state.History
	raster   *render.Raster
	log      *slog.Logger

	// OnInvalidate is called after any change that needs a redraw.
	OnInvalidate func()
}

// New builds a board with an empty history and an idle recorder.
func New(opts Options) (*Board, error) {
	if err := state.ValidThickness(opts.Brush.Thickness); err != nil {
		return nil, fmt.Errorf("board brush: %w", err)
	}
	raster, err := render.NewRaster(opts.Width, opts.Height, opts.Density, opts.Background)
	if err != nil {
		return nil, fmt.Errorf("board raster: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Board{
		brush:    opts.Brush,
		recorder: state.NewRecorder(opts.Brush.Color, opts.Brush.Thickness),
		history:  state.NewHistory(),
		raster:   raster,
		log:      log,
	}, nil
}

func (b *Board) invalidate() {
	if b.OnInvalidate != nil {
		b.OnInvalidate()
	}
}

// Down starts a stroke at (x, y) with a snapshot of the brush. A down while
// a stroke is active restarts it and drops its uncommitted points.
func (b *Board) Down(x, y float32) {
	if b.recorder.Active() {
		b.log.Debug("stroke restarted", slog.String("id", b.recorder.Current().ID))
	}
	b.recorder.Begin(state.Point{X: x, Y: y}, b.brush.Color, b.brush.Thickness)
	b.invalidate()
}

// Move extends the active stroke. It is ignored when no stroke is active.
func (b *Board) Move(x, y float32) {
	if !b.recorder.Active() {
		return
	}
	b.recorder.Extend(state.Point{X: x, Y: y})
	b.invalidate()
}

// Up commits the active stroke into the history. It is ignored when no
// stroke is active.
func (b *Board) Up(x, y float32) {
	if !b.recorder.Active() {
		return
	}
	s := b.recorder.Commit()
	b.history.Append(s)
	b.log.Debug("stroke committed",
		slog.String("id", s.ID),
		slog.Int("points", len(s.Points)),
		slog.Int("history", b.history.Len()))
	b.invalidate()
}

// Undo removes the most recently committed stroke. It reports false when
// there was nothing to undo.
func (b *Board) Undo() bool {
	s, ok := b.history.UndoLast()
	if !ok {
		return false
	}
	b.log.Debug("stroke undone", slog.String("id", s.ID))
	b.invalidate()
	return true
}

// Clear drops the in-progress stroke and the whole history.
func (b *Board) Clear() {
	b.recorder.Reset()
	b.history.Clear()
	b.invalidate()
}

// SetColor changes the brush color for strokes begun after the call.
func (b *Board) SetColor(token string) error {
	return b.brush.SetColor(token)
}

// SetThickness changes the brush thickness (dp) for strokes begun after the call.
func (b *Board) SetThickness(dp float32) error {
	return b.brush.SetThickness(dp)
}

// Brush returns the current brush.
func (b *Board) Brush() state.Brush {
	return b.brush
}

// Active reports whether a stroke is in progress.
func (b *Board) Active() bool {
	return b.recorder.Active()
}

// Current returns a copy of the in-progress stroke.
func (b *Board) Current() state.Stroke {
	return b.recorder.Current().Clone()
}

// Strokes returns a copy of the committed history.
func (b *Board) Strokes() []state.Stroke {
	return b.history.Strokes()
}

// Len returns the number of committed strokes.
func (b *Board) Len() int {
	return b.history.Len()
}

// Resize changes the raster size in pixels.
func (b *Board) Resize(width, height int) error {
	if w, h := b.raster.Size(); w == width && h == height {
		return nil
	}
	if err := b.raster.Resize(width, height); err != nil {
		return err
	}
	b.invalidate()
	return nil
}

// Size returns the raster size in pixels.
func (b *Board) Size() (width, height int) {
	return b.raster.Size()
}

// SetDensity sets the pixels-per-dp factor used when rendering.
func (b *Board) SetDensity(d float32) {
	if !render.ValidDensity(d) || d == b.raster.Density() {
		return
	}
	b.raster.SetDensity(d)
	b.invalidate()
}

// SetBackground places img behind the drawing. Nil removes it.
func (b *Board) SetBackground(img image.Image) {
	b.raster.SetBackground(img)
	b.invalidate()
}

// ClearBackground removes the background image.
func (b *Board) ClearBackground() {
	b.SetBackground(nil)
}

// Render runs the redraw pass: background, history in order, then the
// in-progress stroke on top. The returned image is a fresh copy.
func (b *Board) Render() (*image.RGBA, error) {
	b.raster.Clear()
	if err := b.history.RenderAll(b.raster); err != nil {
		return nil, err
	}
	if b.recorder.Active() {
		if err := b.raster.DrawStroke(b.recorder.Current()); err != nil {
			return nil, fmt.Errorf("render current stroke: %w", err)
		}
	}
	return b.raster.Image()
}

// Snapshot renders the composed drawing for hand-off to another goroutine.
func (b *Board) Snapshot() (*image.RGBA, error) {
	return b.Render()
}

// Close releases the raster.
func (b *Board) Close() error {
	return b.raster.Close()
}
