package config

import (
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sketchpad/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sketchpad.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, state.BrushMedium, cfg.Brush.Size)
	assert.Equal(t, "png", cfg.Export.Format)
	assert.Equal(t, state.Brush{Color: color.NRGBA{A: 0xff}, Thickness: 20}, cfg.InitialBrush())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[canvas]
width = 640
height = 480
density = 2.0

[brush]
color = "#ff0000"
size = 10.0
palette = ["red", "blue"]

[export]
dir = "/tmp/sketches"
format = "pdf"

[remote]
enabled = true
port = 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Canvas.Width)
	assert.Equal(t, float32(2), cfg.Canvas.Density)
	assert.Equal(t, "white", cfg.Canvas.Background)
	assert.Equal(t, []string{"red", "blue"}, cfg.Brush.Palette)
	assert.Equal(t, "pdf", cfg.Export.Format)
	assert.True(t, cfg.Remote.Enabled)
	assert.True(t, cfg.Remote.Advertise)
	assert.Equal(t, 9000, cfg.Remote.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[brush]\nsize = 10.0\n")
	t.Setenv("SKETCHPAD_BRUSH_SIZE", "30")
	t.Setenv("SKETCHPAD_EXPORT_DIR", "/srv/out")
	t.Setenv("SKETCHPAD_REMOTE_ENABLED", "true")
	t.Setenv("SKETCHPAD_CANVAS_WIDTH", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, state.BrushLarge, cfg.Brush.Size)
	assert.Equal(t, "/srv/out", cfg.Export.Dir)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 1080, cfg.Canvas.Width)
}

func TestNonFiniteDensityRejected(t *testing.T) {
	t.Setenv("SKETCHPAD_CANVAS_DENSITY", "NaN")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas density")

	cfg := Default()
	cfg.Canvas.Density = float32(math.Inf(1))
	assert.Error(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "[canvas\nwidth = 1"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Canvas.Width = 0
	cfg.Brush.Color = "mauve-ish"
	cfg.Brush.Size = -1
	cfg.Export.Format = "gif"
	cfg.Remote.Port = 70000
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrUnknownColor)
	assert.ErrorIs(t, err, state.ErrInvalidThickness)
	for _, want := range []string{"canvas size", "export format", "remote port", "log level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
