// Package config loads Sketchpad settings from defaults, an optional TOML
// file and SKETCHPAD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"Sketchpad/internal/export"
	"Sketchpad/internal/state"
)

type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Brush  BrushConfig  `toml:"brush"`
	Export ExportConfig `toml:"export"`
	Remote RemoteConfig `toml:"remote"`
	Log    LogConfig    `toml:"log"`
}

type CanvasConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Density    float32 `toml:"density"`
	Background string  `toml:"background"`
}

type BrushConfig struct {
	Color   string   `toml:"color"`
	Size    float32  `toml:"size"`
	Palette []string `toml:"palette"`
}

type ExportConfig struct {
	Dir     string `toml:"dir"`
	Format  string `toml:"format"`
	Catalog string `toml:"catalog"`
}

type RemoteConfig struct {
	Enabled   bool `toml:"enabled"`
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Canvas: CanvasConfig{
			Width:      1080,
			Height:     1600,
			Density:    1,
			Background: "white",
		},
		Brush: BrushConfig{
			Color:   "black",
			Size:    state.BrushMedium,
			Palette: []string{"black", "#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff7f00", "#8b4513", "white"},
		},
		Export: ExportConfig{
			Dir:     filepath.Join(dataDir, "exports"),
			Format:  string(export.FormatPNG),
			Catalog: filepath.Join(dataDir, "exports.db"),
		},
		Remote: RemoteConfig{
			Enabled:   false,
			Port:      8888,
			Advertise: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "sketchpad")
	}
	return filepath.Join(os.TempDir(), "sketchpad")
}

// Load builds the configuration. An empty path skips the file; a missing
// file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Canvas.Width = getEnvAsInt("SKETCHPAD_CANVAS_WIDTH", c.Canvas.Width)
	c.Canvas.Height = getEnvAsInt("SKETCHPAD_CANVAS_HEIGHT", c.Canvas.Height)
	c.Canvas.Density = getEnvAsFloat("SKETCHPAD_CANVAS_DENSITY", c.Canvas.Density)
	c.Canvas.Background = getEnv("SKETCHPAD_CANVAS_BACKGROUND", c.Canvas.Background)
	c.Brush.Color = getEnv("SKETCHPAD_BRUSH_COLOR", c.Brush.Color)
	c.Brush.Size = getEnvAsFloat("SKETCHPAD_BRUSH_SIZE", c.Brush.Size)
	c.Export.Dir = getEnv("SKETCHPAD_EXPORT_DIR", c.Export.Dir)
	c.Export.Format = getEnv("SKETCHPAD_EXPORT_FORMAT", c.Export.Format)
	c.Export.Catalog = getEnv("SKETCHPAD_EXPORT_CATALOG", c.Export.Catalog)
	c.Remote.Enabled = getEnvAsBool("SKETCHPAD_REMOTE_ENABLED", c.Remote.Enabled)
	c.Remote.Port = getEnvAsInt("SKETCHPAD_REMOTE_PORT", c.Remote.Port)
	c.Remote.Advertise = getEnvAsBool("SKETCHPAD_REMOTE_ADVERTISE", c.Remote.Advertise)
	c.Log.Level = getEnv("SKETCHPAD_LOG_LEVEL", c.Log.Level)
}

// Validate checks every field that would otherwise fail later at runtime.
func (c Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if d := float64(c.Canvas.Density); d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		errs = append(errs, fmt.Errorf("canvas density must be positive, got %v", c.Canvas.Density))
	}
	if _, err := state.ParseColor(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas background: %w", err))
	}
	if _, err := state.ParseColor(c.Brush.Color); err != nil {
		errs = append(errs, fmt.Errorf("brush color: %w", err))
	}
	if err := state.ValidThickness(c.Brush.Size); err != nil {
		errs = append(errs, fmt.Errorf("brush size: %w", err))
	}
	for _, p := range c.Brush.Palette {
		if _, err := state.ParseColor(p); err != nil {
			errs = append(errs, fmt.Errorf("brush palette: %w", err))
		}
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export format: %w", err))
	}
	if c.Export.Dir == "" {
		errs = append(errs, errors.New("export dir must be set"))
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		errs = append(errs, fmt.Errorf("remote port out of range: %d", c.Remote.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// InitialBrush returns the configured starting brush. Call after Validate.
func (c Config) InitialBrush() state.Brush {
	col, _ := state.ParseColor(c.Brush.Color)
	return state.Brush{Color: col, Thickness: c.Brush.Size}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float32) float32 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
