package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"Sketchpad/internal/board"
	"Sketchpad/internal/config"
	"Sketchpad/internal/export"
	"Sketchpad/internal/net"
	"Sketchpad/internal/state"
	"Sketchpad/internal/ui"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "sketchpad",
		Short:         "Freehand drawing board",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHost,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	root.AddCommand(renderCmd(), discoverCmd(), pushCmd(), exportsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sketchpad:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the process logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	gg.SetLogger(log.With("component", "gg"))
	return cfg, log, nil
}

func newBoard(cfg config.Config, log *slog.Logger) (*board.Board, error) {
	bg, err := state.ParseColor(cfg.Canvas.Background)
	if err != nil {
		return nil, err
	}
	return board.New(board.Options{
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		Density:    cfg.Canvas.Density,
		Background: bg,
		Brush:      cfg.InitialBrush(),
		Logger:     log.With("component", "board"),
	})
}

// newExporter wires the directory writer and, when it opens, the catalog.
// The returned cleanup closes the catalog.
func newExporter(ctx context.Context, cfg config.Config, log *slog.Logger) (*export.Exporter, func()) {
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		log.Warn("create export dir", slog.String("dir", cfg.Export.Dir), slog.Any("err", err))
	}
	opts := []export.Option{export.WithLogger(log.With("component", "export"))}
	cleanup := func() {}

	catalog, err := export.OpenCatalog(ctx, cfg.Export.Catalog)
	if err != nil {
		log.Warn("export catalog unavailable", slog.Any("err", err))
	} else {
		opts = append(opts, export.WithCatalog(catalog))
		cleanup = func() {
			if err := catalog.Close(); err != nil {
				log.Warn("close catalog", slog.Any("err", err))
			}
		}
	}
	return export.New(export.DirWriter{Dir: cfg.Export.Dir}, opts...), cleanup
}

// optional wraps a peripheral service so that its failure is logged and
// leaves the rest of the errgroup running.
func optional(log *slog.Logger, name string, run func() error) func() error {
	return func() error {
		if err := run(); err != nil {
			log.Warn(name+" unavailable", slog.Any("err", err))
		}
		return nil
	}
}

// runHost starts the drawing window. The exporter and the optional remote
// pointer endpoint run beside it until the window closes.
func runHost(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBoard(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("close board", slog.Any("err", err))
		}
	}()

	exp, closeCatalog := newExporter(ctx, cfg, log)
	defer closeCatalog()

	// Results that arrive after the window is gone are dropped; the
	// exporter has already logged them.
	var closed atomic.Bool
	post := func(fn func()) {
		if !closed.Load() {
			ui.Post(fn)
		}
	}
	exp.Post = post

	a := ui.NewApp()
	var remoteURL string
	if cfg.Remote.Enabled {
		remoteURL = net.InputURL(net.OutgoingIP(), cfg.Remote.Port)
	}
	c := ui.NewController(a, b, exp, ui.Options{
		Palette:   cfg.Brush.Palette,
		Format:    format,
		RemoteURL: remoteURL,
		Logger:    log.With("component", "ui"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return exp.Run(gctx) })

	if cfg.Remote.Enabled {
		input := net.NewInputServer(b.Apply, log.With("component", "remote"))
		input.Post = post
		input.OnConnect = c.RemoteConnected
		input.OnDisconnect = c.RemoteDisconnected
		addr := fmt.Sprintf(":%d", cfg.Remote.Port)
		g.Go(optional(log, "remote pointer", func() error {
			return net.Serve(gctx, addr, input.Handler())
		}))

		if cfg.Remote.Advertise {
			srv, err := net.Advertise(cfg.Remote.Port)
			if err != nil {
				log.Warn("mdns advertise", slog.Any("err", err))
			} else {
				g.Go(optional(log, "mdns", func() error {
					<-gctx.Done()
					return srv.Shutdown()
				}))
			}
		}
		log.Info("remote pointer enabled", slog.String("url", remoteURL))
	}

	// A failing exporter or a signal closes the window.
	go func() {
		<-gctx.Done()
		post(func() { c.Window().Close() })
	}()

	c.ShowAndRun()
	closed.Store(true)
	stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
