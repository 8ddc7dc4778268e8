package ui

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"Sketchpad/internal/board"
	"Sketchpad/internal/export"
)

const appID = "io.sketchpad.app"

// Options holds what the window needs beyond the board itself.
type Options struct {
	Palette   []string
	Format    export.Format
	RemoteURL string
	Logger    *slog.Logger
}

// Controller owns the window-level actions: brush picking, undo, background
// import and export. Everything runs on the fyne event goroutine.
type Controller struct {
	window   fyne.Window
	app      fyne.App
	board    *board.Board
	canvas   *BoardWidget
	exporter *export.Exporter
	status   *widget.Label
	log      *slog.Logger

	format        export.Format
	exportEnabled bool
}

// NewApp creates the fyne application. It must be called on the main goroutine.
func NewApp() fyne.App {
	return app.NewWithID(appID)
}

// Post runs fn on the fyne event goroutine. Background workers use it to
// hand results back to the UI.
func Post(fn func()) {
	fyne.Do(fn)
}

// NewController builds the window contents around b.
func NewController(a fyne.App, b *board.Board, exp *export.Exporter, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := a.NewWindow("Sketchpad")
	w.Resize(fyne.NewSize(720, 960))

	c := &Controller{
		window:   w,
		app:      a,
		board:    b,
		canvas:   NewBoardWidget(b, log),
		exporter: exp,
		status:   widget.NewLabel("Ready"),
		log:      log,
		format:   opts.Format,
	}
	if c.format == "" {
		c.format = export.FormatPNG
	}

	exp.OnResult = c.exportDone
	c.checkStorage()

	toolbar := c.newToolbar(opts.Palette)
	content := container.NewBorder(toolbar, c.status, nil, nil, c.canvas)
	w.SetContent(content)

	if opts.RemoteURL != "" {
		c.setStatus("Remote pointer: " + opts.RemoteURL)
	}
	return c
}

// ShowAndRun blocks until the window is closed.
func (c *Controller) ShowAndRun() {
	c.window.ShowAndRun()
}

// Window returns the main window.
func (c *Controller) Window() fyne.Window {
	return c.window
}

func (c *Controller) setStatus(text string) {
	c.status.SetText(text)
}

// notify shows a short non-fatal message in the status bar and as a
// system notification.
func (c *Controller) notify(title, text string) {
	c.setStatus(text)
	c.app.SendNotification(fyne.NewNotification(title, text))
}

// SetColor changes the brush color. It reports whether the token was accepted.
func (c *Controller) SetColor(token string) bool {
	if err := c.board.SetColor(token); err != nil {
		c.showError(err)
		return false
	}
	return true
}

// SetSize changes the brush thickness in dp.
func (c *Controller) SetSize(dp float32) {
	if err := c.board.SetThickness(dp); err != nil {
		c.showError(err)
		return
	}
	c.setStatus(fmt.Sprintf("Brush size %g", dp))
}

// SetFormat changes the export format.
func (c *Controller) SetFormat(s string) {
	f, err := export.ParseFormat(s)
	if err != nil {
		c.showError(err)
		return
	}
	c.format = f
}

func (c *Controller) Undo() {
	c.board.Undo()
}

func (c *Controller) Clear() {
	c.board.Clear()
}

// RemoteConnected and RemoteDisconnected update the status bar for the
// remote pointer.
func (c *Controller) RemoteConnected(addr string) {
	c.setStatus("Remote pointer connected: " + addr)
}

func (c *Controller) RemoteDisconnected(addr string) {
	c.setStatus("Remote pointer disconnected: " + addr)
}

func (c *Controller) checkStorage() {
	err := c.exporter.Check()
	c.exportEnabled = err == nil
	if err == nil {
		return
	}
	c.log.Warn("export unavailable", slog.Any("err", err))
	if errors.Is(err, export.ErrStorageDenied) {
		c.notify("Storage", "Permission denied for storage. Export is unavailable.")
		return
	}
	c.notify("Storage", "Export is unavailable: "+err.Error())
}
