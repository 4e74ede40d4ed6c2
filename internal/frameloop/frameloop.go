// Package frameloop drives a windowing surface: it drains events, renders
// frames and paces them until the window closes or the caller stops it.
package frameloop

import (
	"context"
	"errors"
	"fmt"
	"image/draw"
	"log/slog"
	"time"

	"github.com/1broseidon/lumiwin/event"
	"github.com/1broseidon/lumiwin/windowing"
)

// ErrRendererPanic is returned by Run when the renderer panicked.
var ErrRendererPanic = errors.New("renderer panicked")

// Surface is a windowing surface with a software framebuffer.
type Surface interface {
	windowing.Surface[event.Event]
	windowing.Canvas
}

// Renderer paints one frame into dst.
type Renderer interface {
	Render(dst draw.Image, frame int)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(dst draw.Image, frame int)

func (f RendererFunc) Render(dst draw.Image, frame int) { f(dst, frame) }

// Config holds configuration for the loop.
type Config struct {
	// MaxFrames stops the loop after that many frames; 0 means no limit.
	MaxFrames int
	// Interval is the minimum time between two frames. It is ignored when
	// WaitEvents is set.
	Interval time.Duration
	// WaitEvents blocks for input between frames instead of polling.
	WaitEvents bool
	Logger     *slog.Logger
}

// Stats summarizes a finished run.
type Stats struct {
	Frames int
	Events int
}

// Loop renders frames on a surface.
type Loop struct {
	surface   Surface
	renderer  Renderer
	maxFrames int
	interval  time.Duration
	wait      bool
	logger    *slog.Logger
}

// New creates a loop drawing r on s.
func New(cfg Config, s Surface, r Renderer) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		surface:   s,
		renderer:  r,
		maxFrames: cfg.MaxFrames,
		interval:  cfg.Interval,
		wait:      cfg.WaitEvents,
		logger:    logger,
	}
}

// Run blocks until the window is closed, MaxFrames frames were drawn or
// ctx is cancelled. Only a renderer panic is reported as an error.
func (l *Loop) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if l.wait {
		// WaitEvents only returns once the surface is closed.
		stop := context.AfterFunc(ctx, func() {
			if err := l.surface.Close(); err != nil {
				l.logger.Warn("frame loop: close on cancel failed", "error", err)
			}
		})
		defer stop()
	}

	var tick <-chan time.Time
	if !l.wait && l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.logger.Info("frame loop started",
		"max_frames", l.maxFrames,
		"interval", l.interval,
		"wait_events", l.wait)

	for frame := 0; ; frame++ {
		if ctx.Err() != nil {
			l.logger.Info("frame loop stopped", "frames", stats.Frames, "events", stats.Events)
			return stats, nil
		}

		closed, n := l.drain()
		stats.Events += n
		if closed {
			l.logger.Info("window closed", "frames", stats.Frames, "events", stats.Events)
			return stats, nil
		}
		if l.wait && (n == 0 || ctx.Err() != nil) {
			l.logger.Info("frame loop stopped", "frames", stats.Frames, "events", stats.Events)
			return stats, nil
		}

		if err := l.draw(frame); err != nil {
			return stats, err
		}
		stats.Frames++
		if l.maxFrames > 0 && stats.Frames >= l.maxFrames {
			l.logger.Info("frame limit reached", "frames", stats.Frames, "events", stats.Events)
			return stats, nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
}

// drain consumes the pending events and reports whether one of them
// closed the window.
func (l *Loop) drain() (closed bool, n int) {
	events := l.surface.PollEvents()
	if l.wait {
		events = l.surface.WaitEvents()
	}
	for ev := range events {
		n++
		l.logger.Debug("event", "event", event.Describe(ev))
		if _, ok := ev.(event.WindowClose); ok {
			return true, n
		}
	}
	return false, n
}

func (l *Loop) draw(frame int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("renderer panic recovered", "frame", frame, "panic", r)
			err = fmt.Errorf("%w: frame %d: %v", ErrRendererPanic, frame, r)
		}
	}()

	l.surface.Draw(func() {
		l.renderer.Render(l.surface.Framebuffer(), frame)
	})
	return nil
}
