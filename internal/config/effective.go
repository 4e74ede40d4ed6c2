package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/lumiwin/windowing"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*raw.Backend))
	}
	if raw.Window != nil {
		if raw.Window.Dimension != nil {
			dim, err := windowing.ParseWindowDim(*raw.Window.Dimension)
			if err != nil {
				return nil, &ValidationError{Path: "window.dimension", Err: err}
			}
			cfg.Window.Dimension = dim
		}
		if raw.Window.Title != nil {
			cfg.Window.Title = *raw.Window.Title
		}
		if raw.Window.HideCursor != nil {
			cfg.Window.HideCursor = *raw.Window.HideCursor
		}
	}
	if raw.Loop != nil {
		if raw.Loop.MaxFrames != nil {
			cfg.Loop.MaxFrames = *raw.Loop.MaxFrames
		}
		if raw.Loop.FPS != nil {
			cfg.Loop.FPS = *raw.Loop.FPS
		}
		if raw.Loop.WaitEvents != nil {
			cfg.Loop.WaitEvents = *raw.Loop.WaitEvents
		}
	}
	if raw.Headless != nil && raw.Headless.Display != nil {
		cfg.Headless.Display = strings.TrimSpace(*raw.Headless.Display)
	}
	if raw.X11 != nil && raw.X11.Display != nil {
		cfg.X11.Display = strings.TrimSpace(*raw.X11.Display)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.LogFormat != nil {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(*raw.LogFormat))
	}
	if raw.SnapshotDir != nil {
		cfg.SnapshotDir = *raw.SnapshotDir
	}

	return cfg, nil
}
