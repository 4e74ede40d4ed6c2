// Package headless implements an in-memory surface with no display server.
//
// Events are injected with Push and Resize, frames are kept in memory and
// can be inspected with Snapshot. It backs offscreen rendering and the test
// suites of code written against the windowing contract.
package headless

import (
	"errors"
	"image"
	"image/draw"
	"iter"
	"log/slog"
	"sync"

	"github.com/1broseidon/lumiwin/event"
	"github.com/1broseidon/lumiwin/windowing"
)

const backendName = "headless"

var (
	ErrNoDisplay   = errors.New("no display attached")
	ErrInvalidSize = errors.New("invalid framebuffer size")
)

// Size is a width/height pair.
type Size struct {
	Width  uint32
	Height uint32
}

// Config holds the options of a headless surface.
type Config struct {
	// Display is the size of the simulated display. Fullscreen surfaces
	// require one.
	Display Size
	Logger  *slog.Logger
}

// Surface is an in-memory windowing surface.
type Surface struct {
	dim    windowing.WindowDim
	title  string
	opt    windowing.WindowOpt
	logger *slog.Logger

	drawMu sync.Mutex

	mu     sync.Mutex
	width  uint32
	height uint32
	queue  []event.Event
	notify chan struct{}
	closed bool
	fb     *image.RGBA
	last   *image.RGBA
	frames int
}

var (
	_ windowing.Surface[event.Event]               = (*Surface)(nil)
	_ windowing.Canvas                             = (*Surface)(nil)
	_ windowing.Constructor[event.Event, *Surface] = New
)

// New creates a headless surface with no display attached, so only
// windowed dimensions succeed.
func New(dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	return NewWithConfig(Config{}, dim, title, opt)
}

// NewWithConfig creates a headless surface using cfg.
func NewWithConfig(cfg Config, dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	w, h, err := framebufferSize(cfg.Display, dim)
	if err != nil {
		return nil, &windowing.CreateError{Backend: backendName, Dim: dim, Title: title, Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Surface{
		dim:    dim,
		title:  title,
		opt:    opt,
		logger: logger,
		width:  w,
		height: h,
		notify: make(chan struct{}, 1),
	}
	s.logger.Debug("headless surface created", "dim", dim.String(), "title", title, "options", opt.String())
	return s, nil
}

func framebufferSize(display Size, dim windowing.WindowDim) (uint32, uint32, error) {
	switch dim.Kind() {
	case windowing.KindFullscreen:
		if display.Width == 0 || display.Height == 0 {
			return 0, 0, ErrNoDisplay
		}
		return display.Width, display.Height, nil
	case windowing.KindFullscreenRestricted:
		if display.Width == 0 || display.Height == 0 {
			return 0, 0, ErrNoDisplay
		}
		w, h, _ := dim.Size()
		if w == 0 || h == 0 || w > display.Width || h > display.Height {
			return 0, 0, ErrInvalidSize
		}
		return w, h, nil
	default:
		w, h, _ := dim.Size()
		if w == 0 || h == 0 {
			return 0, 0, ErrInvalidSize
		}
		return w, h, nil
	}
}

func (s *Surface) Size() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize changes the framebuffer size and queues a WindowResize event.
func (s *Surface) Resize(width, height uint32) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.width, s.height = width, height
	s.mu.Unlock()
	s.Push(event.WindowResize{Width: width, Height: height})
}

// Push queues events for the next PollEvents or WaitEvents call. It may be
// called from any goroutine.
func (s *Surface) Push(evs ...event.Event) {
	if len(evs) == 0 {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, evs...)
	select {
	case s.notify <- struct{}{}:
	default:
	}
	s.mu.Unlock()
}

func (s *Surface) PollEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		s.mu.Lock()
		n := len(s.queue)
		s.mu.Unlock()
		s.yieldQueued(n, yield)
	}
}

func (s *Surface) WaitEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		for {
			s.mu.Lock()
			n, closed := len(s.queue), s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			if n > 0 {
				s.yieldQueued(n, yield)
				return
			}
			<-s.notify
		}
	}
}

// yieldQueued pops at most n events off the queue, stopping early when
// yield asks to.
func (s *Surface) yieldQueued(n int, yield func(event.Event) bool) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		if !yield(ev) {
			return
		}
	}
}

// Framebuffer returns the image the render callback of Draw paints into.
func (s *Surface) Framebuffer() draw.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framebufferLocked()
}

func (s *Surface) framebufferLocked() *image.RGBA {
	r := image.Rect(0, 0, int(s.width), int(s.height))
	if s.fb == nil || !s.fb.Bounds().Eq(r) {
		s.fb = image.NewRGBA(r)
	}
	return s.fb
}

func (s *Surface) Draw(render func()) {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("draw on closed headless surface ignored")
		return
	}
	// A Resize during render must not swap the image being presented.
	fb := s.framebufferLocked()
	s.mu.Unlock()

	render()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || !s.last.Bounds().Eq(fb.Bounds()) {
		s.last = image.NewRGBA(fb.Bounds())
	}
	copy(s.last.Pix, fb.Pix)
	s.frames++
}

// Frames returns how many frames have been presented.
func (s *Surface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Snapshot returns a copy of the last presented frame, or nil when nothing
// has been drawn yet.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	out := image.NewRGBA(s.last.Bounds())
	copy(out.Pix, s.last.Pix)
	return out
}

func (s *Surface) Title() string                { return s.title }
func (s *Surface) Options() windowing.WindowOpt { return s.opt }
func (s *Surface) Dim() windowing.WindowDim     { return s.dim }

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.fb = nil
	frames := s.frames
	close(s.notify)
	s.mu.Unlock()
	s.logger.Debug("headless surface closed", "title", s.title, "frames", frames)
	return nil
}
