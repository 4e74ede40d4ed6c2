package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/1broseidon/lumiwin/backend/headless"
	"github.com/1broseidon/lumiwin/backend/tty"
	"github.com/1broseidon/lumiwin/backend/x11"
	"github.com/1broseidon/lumiwin/internal/config"
	"github.com/1broseidon/lumiwin/internal/demo"
	"github.com/1broseidon/lumiwin/internal/frameloop"
	"github.com/1broseidon/lumiwin/internal/runtimepath"
	"github.com/1broseidon/lumiwin/windowing"
)

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/lumiwin/config.yaml)")
	backend := fs.String("backend", "", "Backend: auto, x11, tty or headless")
	var dim windowing.WindowDim
	fs.TextVar(&dim, "dim", windowing.Windowed(800, 600), `Window dimension, e.g. "windowed 800x600", "fullscreen"`)
	title := fs.String("title", "", "Window title")
	hideCursor := fs.Bool("hide-cursor", false, "Hide the mouse cursor over the window")
	frames := fs.Int("frames", 0, "Stop after N frames (0: until closed)")
	wait := fs.Bool("wait", false, "Redraw only when events arrive")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lumiwin run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Opens a window and animates the test pattern until the window is")
		fmt.Fprintln(os.Stderr, "closed or the process is interrupted.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	set := flagsSet(fs)
	if set["backend"] {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*backend))
	}
	if set["dim"] {
		cfg.Window.Dimension = dim
	}
	if set["title"] {
		cfg.Window.Title = *title
	}
	if set["hide-cursor"] {
		cfg.Window.HideCursor = *hideCursor
	}
	if set["frames"] {
		cfg.Loop.MaxFrames = *frames
	}
	if set["wait"] {
		cfg.Loop.WaitEvents = *wait
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	name := resolveBackend(cfg.Backend, cfg.X11.Display)
	logFile, err := logOutput(name, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if logFile != os.Stderr {
		defer logFile.Close()
	}

	out, err := runSurface(cfg, name, cfg.Logger(logFile))

	// The surface is closed; stderr is ours again.
	logger := cfg.Logger(os.Stderr)
	if err != nil {
		logger.Error("run failed", "backend", name, "error", err)
		return 1
	}
	attrs := []any{
		"backend", name,
		"frames", out.stats.Frames,
		"events", out.stats.Events,
		"size", fmt.Sprintf("%dx%d", out.width, out.height),
	}
	if logFile != os.Stderr {
		attrs = append(attrs, "log", logFile.Name())
	}
	logger.Info("done", attrs...)
	return 0
}

type runResult struct {
	stats         frameloop.Stats
	width, height uint32
}

// runSurface opens the surface, animates the test pattern on it and closes
// it again before returning.
func runSurface(cfg *config.Config, name string, logger *slog.Logger) (runResult, error) {
	surface, err := openSurface(cfg, name, logger)
	if err != nil {
		return runResult{}, fmt.Errorf("failed to open window: %w", err)
	}
	defer surface.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := frameloop.New(frameloop.Config{
		MaxFrames:  cfg.Loop.MaxFrames,
		Interval:   cfg.FrameInterval(),
		WaitEvents: cfg.Loop.WaitEvents,
		Logger:     logger,
	}, surface, demo.Pattern{Title: cfg.Window.Title})

	stats, err := loop.Run(ctx)
	if err != nil {
		return runResult{}, fmt.Errorf("frame loop failed: %w", err)
	}
	w, h := surface.Size()
	return runResult{stats: stats, width: w, height: h}, nil
}

// logOutput returns where run logs go for backend. A terminal surface takes
// over the terminal, so when stderr is that terminal logs are appended to a
// file in the runtime directory instead.
func logOutput(backend string, stderr *os.File) (*os.File, error) {
	if backend != config.BackendTTY {
		return stderr, nil
	}
	if !isatty.IsTerminal(stderr.Fd()) && !isatty.IsCygwinTerminal(stderr.Fd()) {
		return stderr, nil
	}
	path, err := runtimepath.LogPath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// resolveBackend turns "auto" into a concrete backend name.
func resolveBackend(name string, display string) string {
	if name != config.BackendAuto {
		return name
	}
	if display != "" || os.Getenv("DISPLAY") != "" {
		return config.BackendX11
	}
	return config.BackendTTY
}

// openSurface creates the surface of the resolved backend name.
func openSurface(cfg *config.Config, name string, logger *slog.Logger) (frameloop.Surface, error) {
	dim, title, opt := cfg.OpenWindow()
	logger.Debug("opening window", "backend", name, "dim", dim.String(), "title", title, "options", opt.String())

	switch name {
	case config.BackendX11:
		s, err := x11.NewWithConfig(x11.Config{Display: cfg.X11.Display, Logger: logger}, dim, title, opt)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendTTY:
		s, err := tty.NewWithConfig(tty.Config{Logger: logger}, dim, title, opt)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendHeadless:
		s, err := openHeadless(cfg, logger, dim, title, opt)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func openHeadless(cfg *config.Config, logger *slog.Logger, dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*headless.Surface, error) {
	w, h, err := cfg.HeadlessDisplay()
	if err != nil {
		return nil, err
	}
	return headless.NewWithConfig(headless.Config{
		Display: headless.Size{Width: w, Height: h},
		Logger:  logger,
	}, dim, title, opt)
}
