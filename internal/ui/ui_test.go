package ui

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sketchpad/internal/board"
	"Sketchpad/internal/export"
	"Sketchpad/internal/state"
)

type memWriter struct{ names []string }

func (m *memWriter) WriteFile(name string, _ []byte) (string, error) {
	m.names = append(m.names, name)
	return "/mem/" + name, nil
}

type deniedWriter struct{ memWriter }

func (deniedWriter) Check() error { return export.ErrStorageDenied }

func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	b, err := board.New(board.Options{
		Width:      64,
		Height:     64,
		Density:    1,
		Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Brush:      state.DefaultBrush(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newTestController(t *testing.T, w export.FileWriter) (*Controller, *board.Board, *export.Exporter) {
	t.Helper()
	a := test.NewTempApp(t)
	b := newTestBoard(t)
	exp := export.New(w)
	c := NewController(a, b, exp, Options{Palette: []string{"black", "red"}})
	return c, b, exp
}

func TestDragDrawsStroke(t *testing.T) {
	test.NewTempApp(t)
	b := newTestBoard(t)
	w := NewBoardWidget(b, nil)

	w.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 20)}, Dragged: fyne.NewDelta(10, 10)})
	w.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(30, 25)}, Dragged: fyne.NewDelta(10, 5)})
	assert.True(t, b.Active())
	w.DragEnd()

	assert.False(t, b.Active())
	require.Equal(t, 1, b.Len())
	pts := b.Strokes()[0].Points
	assert.Equal(t, state.Point{X: 10, Y: 10}, pts[0])
	assert.Equal(t, state.Point{X: 30, Y: 25}, pts[len(pts)-1])
}

func TestSecondaryButtonIgnored(t *testing.T) {
	test.NewTempApp(t)
	b := newTestBoard(t)
	w := NewBoardWidget(b, nil)

	ev := &desktop.MouseEvent{Button: desktop.MouseButtonSecondary}
	ev.Position = fyne.NewPos(5, 5)
	w.MouseDown(ev)
	assert.False(t, b.Active())

	ev.Button = desktop.MouseButtonPrimary
	w.MouseDown(ev)
	assert.True(t, b.Active())
	ev.Position = fyne.NewPos(15, 5)
	w.MouseUp(ev)
	assert.Equal(t, 1, b.Len())
}

func TestGenerateSizesBoard(t *testing.T) {
	test.NewTempApp(t)
	b := newTestBoard(t)
	w := NewBoardWidget(b, nil)
	w.Resize(fyne.NewSize(50, 40))

	img := w.generate(100, 80)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
	width, height := b.Size()
	assert.Equal(t, 100, width)
	assert.Equal(t, 80, height)
}

func TestControllerBrushActions(t *testing.T) {
	c, b, _ := newTestController(t, &memWriter{})

	assert.True(t, c.SetColor("red"))
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, b.Brush().Color)
	assert.False(t, c.SetColor("not-a-color"))
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, b.Brush().Color)

	c.SetSize(state.BrushLarge)
	assert.Equal(t, float32(state.BrushLarge), b.Brush().Thickness)
	c.SetSize(-1)
	assert.Equal(t, float32(state.BrushLarge), b.Brush().Thickness)

	c.SetFormat("pdf")
	assert.Equal(t, export.FormatPDF, c.format)
	c.SetFormat("gif")
	assert.Equal(t, export.FormatPDF, c.format)
}

func TestControllerExport(t *testing.T) {
	w := &memWriter{}
	c, b, exp := newTestController(t, w)
	b.Down(5, 5)
	b.Move(30, 30)
	b.Up(30, 30)

	c.Export()
	assert.Equal(t, "Saving...", c.status.Text)

	path, err := exp.Export(t.Context(), mustSnapshot(t, b), export.FormatPNG)
	require.NoError(t, err)
	c.exportDone(export.Result{Path: path, Format: export.FormatPNG})
	assert.Equal(t, "File saved successfully: "+path, c.status.Text)

	c.exportDone(export.Result{Err: errors.New("disk full")})
	assert.Equal(t, "Something went wrong while saving the file", c.status.Text)
	assert.True(t, c.exportEnabled)
}

func TestStorageDeniedDisablesExport(t *testing.T) {
	c, b, _ := newTestController(t, &deniedWriter{})
	assert.False(t, c.exportEnabled)

	b.Down(5, 5)
	b.Move(30, 30)
	b.Up(30, 30)
	c.Export()
	assert.Equal(t, 1, b.Len(), "drawing keeps working without storage")
	assert.NotEqual(t, "Saving...", c.status.Text)
}

func mustSnapshot(t *testing.T, b *board.Board) *image.RGBA {
	t.Helper()
	img, err := b.Snapshot()
	require.NoError(t, err)
	return img
}
