package config

import (
	"fmt"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	backend
//	window.dimension
//	window.title
//	window.hide_cursor
//	loop.max_frames
//	loop.fps
//	loop.wait_events
//	headless.display
//	x11.display
//	log_level
//	log_format
//	snapshot_dir
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "backend":
		return cfg.Backend, nil
	case "window":
		return cfg.Window, nil
	case "window.dimension":
		return cfg.Window.Dimension.String(), nil
	case "window.title":
		return cfg.Window.Title, nil
	case "window.hide_cursor":
		return cfg.Window.HideCursor, nil
	case "loop":
		return cfg.Loop, nil
	case "loop.max_frames":
		return cfg.Loop.MaxFrames, nil
	case "loop.fps":
		return cfg.Loop.FPS, nil
	case "loop.wait_events":
		return cfg.Loop.WaitEvents, nil
	case "headless.display":
		return cfg.Headless.Display, nil
	case "x11.display":
		return cfg.X11.Display, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_format":
		return cfg.LogFormat, nil
	case "snapshot_dir":
		return cfg.SnapshotDir, nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
