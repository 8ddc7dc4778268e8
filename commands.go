package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"Sketchpad/internal/board"
	"Sketchpad/internal/export"
	"Sketchpad/internal/net"
	"Sketchpad/internal/render"
)

func readScript(path string) ([]board.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return board.ReadScript(f)
}

// formatFor picks the export format from an explicit flag or the file extension.
func formatFor(flag, out string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	return export.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
}

func renderCmd() *cobra.Command {
	var (
		script, out, background, format string
		width, height                   int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Replay an event script without a window and save the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			f, err := formatFor(format, out)
			if err != nil {
				return err
			}
			events, err := readScript(script)
			if err != nil {
				return err
			}
			if width > 0 {
				cfg.Canvas.Width = width
			}
			if height > 0 {
				cfg.Canvas.Height = height
			}

			b, err := newBoard(cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			if background != "" {
				img, err := render.LoadImage(background)
				if err != nil {
					return err
				}
				b.SetBackground(img)
			}
			if err := b.ApplyAll(events); err != nil {
				return err
			}
			img, err := b.Snapshot()
			if err != nil {
				return err
			}
			data, err := export.Encode(img, f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info("rendered", slog.String("out", out), slog.Int("strokes", b.Len()))
			return nil
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "JSON event script")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().StringVar(&background, "background", "", "background image")
	cmd.Flags().StringVar(&format, "format", "", "png, jpeg or pdf (default from --out extension)")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height in pixels")
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func discoverCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List Sketchpad boards on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := setup(); err != nil {
				return err
			}
			peers, err := net.Browse(cmd.Context(), timeout)
			if err != nil {
				return err
			}
			if len(peers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no boards found")
				return nil
			}
			for _, p := range peers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Addr, p.Name)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to wait for answers")
	return cmd
}

func pushCmd() *cobra.Command {
	var (
		addr string
		pace time.Duration
	)
	cmd := &cobra.Command{
		Use:   "push [events.json]",
		Short: "Send an event script to a running board as its remote pointer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup()
			if err != nil {
				return err
			}
			events, err := readScript(args[0])
			if err != nil {
				return err
			}
			if err := net.Push(cmd.Context(), addr, events, pace); err != nil {
				return err
			}
			log.Info("pushed", slog.String("addr", addr), slog.Int("events", len(events)))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "board address as host:port")
	cmd.Flags().DurationVar(&pace, "pace", 10*time.Millisecond, "delay between events")
	_ = cmd.MarkFlagRequired("addr")
	return cmd
}

func exportsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Show recently saved drawings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			catalog, err := export.OpenCatalog(cmd.Context(), cfg.Export.Catalog)
			if err != nil {
				return err
			}
			defer catalog.Close()

			entries, err := catalog.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tFORMAT\tSIZE\tPATH")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n",
					e.CreatedAt.Local().Format(time.DateTime), e.Format, e.Width, e.Height, e.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
