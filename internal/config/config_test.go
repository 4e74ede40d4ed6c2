package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/lumiwin/windowing"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Window.Dimension != windowing.Windowed(800, 600) {
		t.Fatalf("unexpected default dimension %v", cfg.Window.Dimension)
	}
	if cfg.Window.HideCursor {
		t.Fatalf("expected cursor to be shown by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Backend != BackendAuto || len(res.Files) != 0 {
		t.Fatalf("expected defaults with no files, got %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Loop.FPS != 60 {
		t.Fatalf("expected default fps 60, got %d", res.Config.Loop.FPS)
	}
}

func TestLoadFromPath_AllKeys(t *testing.T) {
	data := strings.Join([]string{
		"backend: headless",
		"window:",
		"  dimension: fullscreen-restricted 1280x720",
		"  title: demo",
		"  hide_cursor: true",
		"loop:",
		"  max_frames: 10",
		"  fps: 30",
		"  wait_events: true",
		"headless:",
		"  display: 2560x1440",
		"x11:",
		"  display: \":1\"",
		"log_level: debug",
		"log_format: json",
		"snapshot_dir: /tmp/shots",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Backend != BackendHeadless {
		t.Fatalf("expected headless backend, got %q", cfg.Backend)
	}
	dim, title, opt := cfg.OpenWindow()
	if dim != windowing.FullscreenRestricted(1280, 720) || title != "demo" || !opt.IsCursorHidden() {
		t.Fatalf("unexpected window %v %q %v", dim, title, opt)
	}
	if cfg.Loop.MaxFrames != 10 || cfg.Loop.FPS != 30 || !cfg.Loop.WaitEvents {
		t.Fatalf("unexpected loop config %+v", cfg.Loop)
	}
	if w, h, err := cfg.HeadlessDisplay(); err != nil || w != 2560 || h != 1440 {
		t.Fatalf("unexpected headless display %dx%d (%v)", w, h, err)
	}
	if cfg.X11.Display != ":1" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.SnapshotDir != "/tmp/shots" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := cfg.FrameInterval(); got != time.Second/30 {
		t.Fatalf("expected 1/30s interval, got %v", got)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "window:\n  colour: red\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "colour") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	cases := []struct {
		data string
		path string
		line int
	}{
		{"backend: wayland\n", "backend", 1},
		{"window:\n  title: x\n  dimension: sideways\n", "window.dimension", 3},
		{"loop:\n  fps: -1\n", "loop.fps", 2},
		{"headless:\n  display: big\n", "headless.display", 2},
		{"log_level: verbose\n", "log_level", 1},
		{"log_format: xml\n", "log_format", 1},
	}

	for _, tc := range cases {
		path := writeConfig(t, t.TempDir(), "config.yaml", tc.data)
		_, err := LoadFromPath(path)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%q: expected ValidationError, got %v", tc.data, err)
		}
		if verr.Path != tc.path {
			t.Fatalf("%q: expected path %q, got %q", tc.data, tc.path, verr.Path)
		}
		if verr.Source.Kind != SourceFile || verr.Source.Line != tc.line {
			t.Fatalf("%q: expected source line %d, got %+v", tc.data, tc.line, verr.Source)
		}
		if !strings.HasPrefix(err.Error(), verr.Source.File+":") {
			t.Fatalf("%q: expected file:line:col prefix, got %v", tc.data, err)
		}
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "loop:\n  fps: 10\n  max_frames: 5\n")
	writeConfig(t, configD, "20-override.yaml", "loop:\n  fps: 20\n")

	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"window:",
		"  title: main",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Loop.FPS != 20 || res.Config.Loop.MaxFrames != 5 {
		t.Fatalf("expected merged loop fps=20 max_frames=5, got %+v", res.Config.Loop)
	}
	if res.Config.Window.Title != "main" {
		t.Fatalf("expected title main, got %q", res.Config.Window.Title)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}

	_, src, err := Explain(res, "loop.fps")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.HasSuffix(src.File, "20-override.yaml") {
		t.Fatalf("expected fps to come from 20-override.yaml, got %+v", src)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_SharedIncludeLoadedOnce(t *testing.T) {
	dir := t.TempDir()
	common := writeConfig(t, dir, "common.yaml", "loop:\n  fps: 30\n")
	writeConfig(t, dir, "a.yaml", "include: common.yaml\nwindow:\n  title: a\n")
	writeConfig(t, dir, "b.yaml", "include: "+common+"\nloop:\n  max_frames: 7\n")
	main := writeConfig(t, dir, "config.yaml", "include:\n  - a.yaml\n  - b.yaml\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("expected common.yaml loaded once, got %v", res.Files)
	}
	if res.Config.Window.Title != "a" || res.Config.Loop.FPS != 30 || res.Config.Loop.MaxFrames != 7 {
		t.Fatalf("unexpected merged config %+v", res.Config)
	}
	if src := res.Sources["loop.max_frames"]; !strings.HasSuffix(src.File, "b.yaml") || src.Line != 3 {
		t.Fatalf("expected max_frames from b.yaml:3, got %+v", src)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain_DefaultSource(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	val, src, err := Explain(res, "window.dimension")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "windowed 800x600" || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result %#v %+v", val, src)
	}
	if _, _, err := Explain(res, "window.colour"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Dimension = windowing.Fullscreen()
	cfg.Loop.WaitEvents = true

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "dimension: fullscreen") {
		t.Fatalf("expected textual dimension, got:\n%s", data)
	}

	raw, err := decodeRaw(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back, err := BuildEffectiveConfig(raw)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if *back != *cfg {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", back, cfg)
	}
}

func TestConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warning"
	cfg.LogFormat = "json"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected json record, got %q", out)
	}
}

func TestConfig_ColorLoggerWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogFormat = "color"

	cfg.Logger(&buf).Info("frame loop started", "fps", 60)

	out := buf.String()
	if !strings.Contains(out, "frame loop started") || !strings.Contains(out, "fps=60") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes for a non-terminal writer, got %q", out)
	}
}
