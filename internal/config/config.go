package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/1broseidon/lumiwin/windowing"
)

const (
	BackendAuto     = "auto"
	BackendX11      = "x11"
	BackendTTY      = "tty"
	BackendHeadless = "headless"
)

// MaxFPS caps loop.fps.
const MaxFPS = 1000

type WindowConfig struct {
	Dimension  windowing.WindowDim `yaml:"dimension"`
	Title      string              `yaml:"title"`
	HideCursor bool                `yaml:"hide_cursor"`
}

type LoopConfig struct {
	MaxFrames  int  `yaml:"max_frames"`
	FPS        int  `yaml:"fps"`
	WaitEvents bool `yaml:"wait_events"`
}

type HeadlessConfig struct {
	// Display is the simulated display resolution, "WIDTHxHEIGHT".
	Display string `yaml:"display"`
}

type X11Config struct {
	Display string `yaml:"display"`
}

type Config struct {
	Backend     string         `yaml:"backend"`
	Window      WindowConfig   `yaml:"window"`
	Loop        LoopConfig     `yaml:"loop"`
	Headless    HeadlessConfig `yaml:"headless"`
	X11         X11Config      `yaml:"x11"`
	LogLevel    string         `yaml:"log_level"`
	LogFormat   string         `yaml:"log_format"`
	SnapshotDir string         `yaml:"snapshot_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendAuto,
		Window: WindowConfig{
			Dimension: windowing.Windowed(800, 600),
			Title:     "lumiwin",
		},
		Loop: LoopConfig{
			FPS: 60,
		},
		Headless: HeadlessConfig{
			Display: "1920x1080",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// OpenWindow returns the arguments a backend constructor is called with.
func (c *Config) OpenWindow() (windowing.WindowDim, string, windowing.WindowOpt) {
	return c.Window.Dimension, c.Window.Title, windowing.DefaultWindowOpt().HideCursor(c.Window.HideCursor)
}

// FrameInterval converts loop.fps into the time between two frames.
func (c *Config) FrameInterval() time.Duration {
	if c.Loop.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Loop.FPS)
}

// HeadlessDisplay parses headless.display.
func (c *Config) HeadlessDisplay() (uint32, uint32, error) {
	return windowing.ParseResolution(c.Headless.Display)
}

// Logger builds the logger described by log_level and log_format. The
// color format only emits escape codes when w is a terminal.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := parseLevel(c.LogLevel)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case "color":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendX11, BackendTTY, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, x11, tty, headless")}
	}
	if c.Window.Dimension.Kind() != windowing.KindFullscreen {
		if w, h, _ := c.Window.Dimension.Size(); w == 0 || h == 0 {
			return &ValidationError{Path: "window.dimension", Err: fmt.Errorf("width and height must be > 0")}
		}
	}
	if c.Loop.MaxFrames < 0 {
		return &ValidationError{Path: "loop.max_frames", Err: fmt.Errorf("max_frames must be >= 0")}
	}
	if c.Loop.FPS < 0 || c.Loop.FPS > MaxFPS {
		return &ValidationError{Path: "loop.fps", Err: fmt.Errorf("fps must be between 0 and %d", MaxFPS)}
	}
	if w, h, err := c.HeadlessDisplay(); err != nil {
		return &ValidationError{Path: "headless.display", Err: err}
	} else if w == 0 || h == 0 {
		return &ValidationError{Path: "headless.display", Err: fmt.Errorf("width and height must be > 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.LogFormat {
	case "text", "json", "color":
	default:
		return &ValidationError{Path: "log_format", Err: fmt.Errorf("log_format must be one of: text, json, color")}
	}
	return nil
}
