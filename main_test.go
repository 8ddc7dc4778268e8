package main

import (
	"context"
	"errors"
	"image/png"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"Sketchpad/internal/export"
	sknet "Sketchpad/internal/net"
)

func TestFormatFor(t *testing.T) {
	f, err := formatFor("", "out.JPG")
	require.NoError(t, err)
	assert.Equal(t, export.FormatJPEG, f)

	f, err = formatFor("pdf", "out.png")
	require.NoError(t, err)
	assert.Equal(t, export.FormatPDF, f)

	_, err = formatFor("", "out.gif")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "events.json")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(script, []byte(`[
		{"type":"color","color":"red"},
		{"type":"size","size":8},
		{"type":"down","x":10,"y":30},
		{"type":"move","x":50,"y":30},
		{"type":"up","x":50,"y":30}
	]`), 0o644))

	cmd := renderCmd()
	cmd.SetArgs([]string{"--script", script, "--out", out, "--width", "60", "--height", "60"})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())

	r, g, b, _ := img.At(30, 30).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))
}

func TestRenderCommandRejectsBadScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(script, []byte(`[{"type":"spin"}]`), 0o644))

	cmd := renderCmd()
	cmd.SetArgs([]string{"--script", script, "--out", filepath.Join(dir, "out.png")})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}

func TestRemoteBindFailureKeepsGroupRunning(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	log := slog.New(slog.DiscardHandler)

	served := make(chan struct{})
	g.Go(optional(log, "remote pointer", func() error {
		defer close(served)
		return sknet.Serve(gctx, taken.Addr().String(), nil)
	}))
	<-served
	select {
	case <-gctx.Done():
		t.Fatal("bind failure cancelled the other services")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	require.NoError(t, g.Wait())
}

func TestOptionalSwallowsError(t *testing.T) {
	run := optional(slog.New(slog.DiscardHandler), "mdns", func() error { return errors.New("boom") })
	assert.NoError(t, run())
}
