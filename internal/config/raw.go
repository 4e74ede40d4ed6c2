package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawWindowConfig struct {
	Dimension  *string `yaml:"dimension"`
	Title      *string `yaml:"title"`
	HideCursor *bool   `yaml:"hide_cursor"`
}

type RawLoopConfig struct {
	MaxFrames  *int  `yaml:"max_frames"`
	FPS        *int  `yaml:"fps"`
	WaitEvents *bool `yaml:"wait_events"`
}

type RawHeadlessConfig struct {
	Display *string `yaml:"display"`
}

type RawX11Config struct {
	Display *string `yaml:"display"`
}

type RawConfig struct {
	Include     IncludeList        `yaml:"include"`
	Backend     *string            `yaml:"backend"`
	Window      *RawWindowConfig   `yaml:"window"`
	Loop        *RawLoopConfig     `yaml:"loop"`
	Headless    *RawHeadlessConfig `yaml:"headless"`
	X11         *RawX11Config      `yaml:"x11"`
	LogLevel    *string            `yaml:"log_level"`
	LogFormat   *string            `yaml:"log_format"`
	SnapshotDir *string            `yaml:"snapshot_dir"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Window != nil {
		if out.Window == nil {
			out.Window = &RawWindowConfig{}
		}
		merged := mergeRawWindow(*out.Window, *overlay.Window)
		out.Window = &merged
	}
	if overlay.Loop != nil {
		if out.Loop == nil {
			out.Loop = &RawLoopConfig{}
		}
		merged := mergeRawLoop(*out.Loop, *overlay.Loop)
		out.Loop = &merged
	}
	if overlay.Headless != nil && overlay.Headless.Display != nil {
		out.Headless = &RawHeadlessConfig{Display: overlay.Headless.Display}
	}
	if overlay.X11 != nil && overlay.X11.Display != nil {
		out.X11 = &RawX11Config{Display: overlay.X11.Display}
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != nil {
		out.LogFormat = overlay.LogFormat
	}
	if overlay.SnapshotDir != nil {
		out.SnapshotDir = overlay.SnapshotDir
	}

	return out
}

func mergeRawWindow(base RawWindowConfig, overlay RawWindowConfig) RawWindowConfig {
	out := base
	if overlay.Dimension != nil {
		out.Dimension = overlay.Dimension
	}
	if overlay.Title != nil {
		out.Title = overlay.Title
	}
	if overlay.HideCursor != nil {
		out.HideCursor = overlay.HideCursor
	}
	return out
}

func mergeRawLoop(base RawLoopConfig, overlay RawLoopConfig) RawLoopConfig {
	out := base
	if overlay.MaxFrames != nil {
		out.MaxFrames = overlay.MaxFrames
	}
	if overlay.FPS != nil {
		out.FPS = overlay.FPS
	}
	if overlay.WaitEvents != nil {
		out.WaitEvents = overlay.WaitEvents
	}
	return out
}
