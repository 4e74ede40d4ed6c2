package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/1broseidon/lumiwin/internal/config"
	"github.com/1broseidon/lumiwin/internal/demo"
	"github.com/1broseidon/lumiwin/internal/frameloop"
	"github.com/1broseidon/lumiwin/internal/runtimepath"
	"github.com/1broseidon/lumiwin/windowing"
)

func runSnapshot(args []string) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lumiwin/config.yaml)")
	var dim windowing.WindowDim
	fs.TextVar(&dim, "dim", windowing.Windowed(800, 600), "Framebuffer dimension")
	title := fs.String("title", "", "Caption drawn on the pattern")
	frames := fs.Int("frames", 1, "Number of frames to render; the last one is saved")
	out := fs.String("out", "", "Output PNG (default: snapshot_dir or the runtime dir)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumiwin snapshot [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Renders the test pattern without a display and writes it as PNG.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *frames <= 0 {
		fmt.Fprintln(os.Stderr, "--frames must be > 0")
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	set := flagsSet(fs)
	if set["dim"] {
		cfg.Window.Dimension = dim
	}
	if set["title"] {
		cfg.Window.Title = *title
	}
	logger := cfg.Logger(os.Stderr)

	dst := *out
	if dst == "" {
		dst, err = defaultSnapshotPath(cfg, time.Now())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := snapshot(cfg, logger, *frames, dst); err != nil {
		logger.Error("snapshot failed", "error", err)
		return 1
	}
	fmt.Println(dst)
	return 0
}

func defaultSnapshotPath(cfg *config.Config, now time.Time) (string, error) {
	name := fmt.Sprintf("snapshot-%s.png", now.Format("20060102-150405"))
	if cfg.SnapshotDir == "" {
		return runtimepath.SnapshotPath(name)
	}
	if err := os.MkdirAll(cfg.SnapshotDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return filepath.Join(cfg.SnapshotDir, name), nil
}

// snapshot renders frames frames of the demo pattern offscreen and writes
// the last one to path.
func snapshot(cfg *config.Config, logger *slog.Logger, frames int, path string) error {
	dim, title, opt := cfg.OpenWindow()
	s, err := openHeadless(cfg, logger, dim, title, opt)
	if err != nil {
		return err
	}
	defer s.Close()

	loop := frameloop.New(frameloop.Config{MaxFrames: frames, Logger: logger}, s, demo.Pattern{Title: title})
	if _, err := loop.Run(context.Background()); err != nil {
		return err
	}

	img := s.Snapshot()
	if img == nil {
		return fmt.Errorf("no frame rendered")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
