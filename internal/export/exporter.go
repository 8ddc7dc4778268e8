// Package export encodes raster snapshots and hands them to storage on a
// background worker.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"Sketchpad/internal/state"
)

var (
	ErrBusy   = errors.New("export queue is full")
	ErrClosed = errors.New("exporter stopped")
)

const queueSize = 4

// Job is a snapshot waiting to be saved. The image must not be modified
// after submission.
type Job struct {
	Image  *image.RGBA
	Format Format
}

// Result reports the outcome of a job.
type Result struct {
	Path   string
	Format Format
	Err    error
}

// Recorder stores successful exports. *Catalog implements it.
type Recorder interface {
	Record(ctx context.Context, e Entry) (Entry, error)
}

// Checker is implemented by writers that can probe their storage.
type Checker interface {
	Check() error
}

// Exporter saves snapshots off the caller's goroutine. It never sees the
// stroke history, only rendered pixels.
type Exporter struct {
	writer  FileWriter
	catalog Recorder
	jobs    chan Job

	mu     sync.Mutex
	closed bool
	log     *slog.Logger
	now     func() time.Time

	// Post runs fn on the UI event context. Defaults to calling fn directly.
	Post func(fn func())
	// OnResult receives every job outcome via Post.
	OnResult func(Result)
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithCatalog records successful exports in r.
func WithCatalog(r Recorder) Option {
	return func(e *Exporter) { e.catalog = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New returns an exporter writing through w. Call Run to start the worker.
func New(w FileWriter, opts ...Option) *Exporter {
	e := &Exporter{
		writer: w,
		jobs:   make(chan Job, queueSize),
		log:    slog.New(slog.DiscardHandler),
		now:    time.Now,
		Post:   func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check probes the storage if the writer supports it.
func (e *Exporter) Check() error {
	if c, ok := e.writer.(Checker); ok {
		return c.Check()
	}
	return nil
}

// Submit queues a snapshot without blocking. Once Run has begun shutting
// down it returns ErrClosed.
func (e *Exporter) Submit(img *image.RGBA, f Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	select {
	case e.jobs <- Job{Image: img, Format: f}:
		return nil
	default:
		return ErrBusy
	}
}

// Run processes jobs until ctx is cancelled, then drains what is already
// queued and returns.
func (e *Exporter) Run(ctx context.Context) error {
	for {
		select {
		case job := <-e.jobs:
			e.deliver(e.process(ctx, job))
		case <-ctx.Done():
			// Jobs are enqueued under mu, so nothing can arrive after closed is set.
			e.mu.Lock()
			e.closed = true
			e.mu.Unlock()
			e.drain(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (e *Exporter) drain(ctx context.Context) {
	for {
		select {
		case job := <-e.jobs:
			e.deliver(e.process(ctx, job))
		default:
			return
		}
	}
}

func (e *Exporter) process(ctx context.Context, job Job) Result {
	path, err := e.Export(ctx, job.Image, job.Format)
	return Result{Path: path, Format: job.Format, Err: err}
}

func (e *Exporter) deliver(res Result) {
	if e.OnResult == nil {
		return
	}
	e.Post(func() { e.OnResult(res) })
}

// Export encodes and writes img synchronously and returns the saved path.
func (e *Exporter) Export(ctx context.Context, img *image.RGBA, f Format) (string, error) {
	if img == nil {
		return "", errors.New("export: nil image")
	}
	data, err := Encode(img, f)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	now := e.now()
	name := FileName(now, f)
	path, err := e.writer.WriteFile(name, data)
	if err != nil {
		e.log.Warn("export failed", slog.String("name", name), slog.Any("err", err))
		return "", fmt.Errorf("export: write %s: %w", name, err)
	}
	e.log.Info("export saved", slog.String("path", path), slog.Int("bytes", len(data)))

	if e.catalog != nil {
		b := img.Bounds()
		_, err := e.catalog.Record(ctx, Entry{
			Path:      path,
			Format:    f,
			Width:     b.Dx(),
			Height:    b.Dy(),
			Session:   state.SessionID(),
			CreatedAt: now,
		})
		if err != nil {
			e.log.Warn("export not cataloged", slog.String("path", path), slog.Any("err", err))
		}
	}
	return path, nil
}
