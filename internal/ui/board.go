package ui

import (
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"Sketchpad/internal/board"
)

// BoardWidget shows a board's raster and feeds it pointer input. Fyne
// positions are already device-independent, so they go to the board as is.
type BoardWidget struct {
	widget.BaseWidget
	board  *board.Board
	raster *canvas.Raster
	log    *slog.Logger

	last       fyne.Position
	generating bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget wraps b and takes over its OnInvalidate hook.
func NewBoardWidget(b *board.Board, log *slog.Logger) *BoardWidget {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &BoardWidget{board: b, log: log}
	w.raster = canvas.NewRaster(w.generate)
	w.raster.SetMinSize(fyne.NewSize(300, 300))
	b.OnInvalidate = w.invalidate
	w.ExtendBaseWidget(w)
	return w
}

func (w *BoardWidget) invalidate() {
	if w.generating {
		return
	}
	w.raster.Refresh()
}

// generate is the redraw pass as fyne sees it: size the board to the
// pixel buffer fyne wants, then render.
func (w *BoardWidget) generate(px, py int) image.Image {
	if px <= 0 || py <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	w.generating = true
	defer func() { w.generating = false }()

	if size := w.Size(); size.Width > 0 {
		w.board.SetDensity(float32(px) / size.Width)
	}
	if err := w.board.Resize(px, py); err != nil {
		w.log.Error("resize board", slog.Any("err", err))
	}
	img, err := w.board.Render()
	if err != nil {
		w.log.Error("render board", slog.Any("err", err))
		return image.NewRGBA(image.Rect(0, 0, px, py))
	}
	return img
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.last = e.Position
	w.board.Down(e.Position.X, e.Position.Y)
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.board.Up(e.Position.X, e.Position.Y)
}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *BoardWidget) MouseOut()                      {}
func (w *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

// Dragged extends the stroke. Touch devices deliver no MouseDown, so the
// first drag event starts the stroke where the finger went down.
func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !w.board.Active() {
		w.board.Down(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
	}
	w.last = e.Position
	w.board.Move(e.Position.X, e.Position.Y)
}

func (w *BoardWidget) DragEnd() {
	w.board.Up(w.last.X, w.last.Y)
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}
