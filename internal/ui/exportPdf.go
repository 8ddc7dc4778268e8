package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"Sketchpad/internal/export"
	"Sketchpad/internal/render"
)

// Export snapshots the drawing and queues it for the background worker.
func (c *Controller) Export() {
	if !c.exportEnabled {
		// Storage may have become writable since start-up.
		c.checkStorage()
		if !c.exportEnabled {
			return
		}
	}
	img, err := c.board.Snapshot()
	if err != nil {
		c.showError(err)
		return
	}
	if err := c.exporter.Submit(img, c.format); err != nil {
		if errors.Is(err, export.ErrBusy) {
			c.notify("Export", "Still saving the previous drawing, try again shortly.")
			return
		}
		c.showError(err)
		return
	}
	c.setStatus("Saving...")
}

func (c *Controller) exportDone(res export.Result) {
	if res.Err != nil {
		c.log.Error("export failed", slog.Any("err", res.Err))
		if errors.Is(res.Err, export.ErrStorageDenied) {
			c.exportEnabled = false
			c.notify("Export", "Permission denied for storage.")
			return
		}
		c.notify("Export", "Something went wrong while saving the file")
		return
	}
	c.notify("Export", "File saved successfully: "+res.Path)
}

// PickBackground opens a file dialog and places the chosen image behind
// the drawing.
func (c *Controller) PickBackground() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			c.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				c.log.Warn("close background", slog.Any("err", err))
			}
		}()
		img, err := render.DecodeImage(reader)
		if err != nil {
			c.showError(err)
			return
		}
		c.board.SetBackground(img)
		c.setStatus("Background: " + reader.URI().Name())
	}, c.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".webp"}))
	fd.Show()
}

func (c *Controller) RemoveBackground() {
	c.board.ClearBackground()
}

func (c *Controller) showError(err error) {
	c.log.Warn("ui error", slog.Any("err", err))
	dialog.ShowError(err, c.window)
}
