package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"Sketchpad/internal/export"
	"Sketchpad/internal/state"
)

// --- Color swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Token    string
	Color    color.Color
	OnTapped func(*colorSwatch)

	selected bool
	border   *canvas.Rectangle
}

func newColorSwatch(token string, c color.Color, tapped func(*colorSwatch)) *colorSwatch {
	s := &colorSwatch{Token: token, Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	s.border = canvas.NewRectangle(color.Transparent)
	s.applyBorder()
	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) applyBorder() {
	if s.border == nil {
		return
	}
	if s.selected {
		s.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		s.border.StrokeWidth = 3
	} else {
		s.border.StrokeColor = color.Gray{Y: 150}
		s.border.StrokeWidth = 1
	}
	s.border.Refresh()
}

func (s *colorSwatch) SetSelected(v bool) {
	s.selected = v
	s.applyBorder()
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s)
	}
}

// --- Brush size picker ---
func (c *Controller) showBrushSizeDialog() {
	var d dialog.Dialog
	preset := func(label string, size float32) *widget.Button {
		return widget.NewButton(fmt.Sprintf("%s (%g)", label, size), func() {
			c.SetSize(size)
			d.Hide()
		})
	}

	current := c.board.Brush().Thickness
	value := widget.NewLabel(fmt.Sprintf("%.0f dp", current))
	slider := widget.NewSlider(1, 60)
	slider.Step = 1
	slider.SetValue(float64(current))
	slider.OnChanged = func(v float64) {
		value.SetText(fmt.Sprintf("%.0f dp", v))
	}
	slider.OnChangeEnded = func(v float64) {
		c.SetSize(float32(v))
	}

	content := container.NewVBox(
		preset("Small", state.BrushSmall),
		preset("Medium", state.BrushMedium),
		preset("Large", state.BrushLarge),
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, value, slider),
	)
	d = dialog.NewCustom("Brush size", "Close", content, c.window)
	d.Show()
}

// --- The main toolbar ---
func (c *Controller) newToolbar(palette []string) fyne.CanvasObject {
	var swatches []*colorSwatch
	onColorTapped := func(s *colorSwatch) {
		if !c.SetColor(s.Token) {
			return
		}
		for _, other := range swatches {
			other.SetSelected(other == s)
		}
	}
	brush := c.board.Brush()
	colorBox := container.NewHBox()
	for _, token := range palette {
		col, err := state.ParseColor(token)
		if err != nil {
			c.log.Warn("palette color skipped", "token", token, "err", err)
			continue
		}
		s := newColorSwatch(token, col, onColorTapped)
		s.selected = col == brush.Color
		swatches = append(swatches, s)
		colorBox.Add(s)
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), c.showBrushSizeDialog),
		widget.NewToolbarAction(theme.ContentUndoIcon(), c.Undo),
		widget.NewToolbarAction(theme.DeleteIcon(), c.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), c.PickBackground),
		widget.NewToolbarAction(theme.CancelIcon(), c.RemoveBackground),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), c.Export),
	)

	formats := widget.NewSelect(
		[]string{string(export.FormatPNG), string(export.FormatJPEG), string(export.FormatPDF)},
		func(s string) { c.SetFormat(s) },
	)
	formats.SetSelected(string(c.format))

	return container.NewHBox(
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		tb,
		formats,
		layout.NewSpacer(),
	)
}
