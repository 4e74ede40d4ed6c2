// Package tty implements a windowing surface inside a terminal emulator.
//
// Every character cell shows two framebuffer pixels with the upper half
// block glyph: the foreground paints the upper pixel and the background the
// lower one. Colors are degraded to what the terminal supports.
package tty

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"iter"
	"log/slog"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/1broseidon/lumiwin/event"
	"github.com/1broseidon/lumiwin/windowing"
)

const (
	backendName = "tty"
	eventBuffer = 256
)

var (
	ErrNotTerminal = errors.New("not a terminal")
	ErrInvalidSize = errors.New("invalid framebuffer size")
)

// Config holds the options of a terminal surface.
type Config struct {
	// In and Out default to os.Stdin and os.Stdout.
	In     *os.File
	Out    *os.File
	Logger *slog.Logger
}

// Surface draws into the terminal attached to Config.Out.
type Surface struct {
	dim    windowing.WindowDim
	logger *slog.Logger

	in       *os.File
	out      *os.File
	reader   cancelreader.CancelReader
	oldState *term.State
	w        *bufio.Writer
	screen   *termenv.Output
	profile  termenv.Profile

	events     chan event.Event
	done       chan struct{}
	stopResize func()
	wg         sync.WaitGroup

	drawMu sync.Mutex

	mu     sync.Mutex
	cols   int
	rows   int
	fb     *image.RGBA
	cells  *image.RGBA
	closed bool
}

var (
	_ windowing.Surface[event.Event]               = (*Surface)(nil)
	_ windowing.Canvas                             = (*Surface)(nil)
	_ windowing.Constructor[event.Event, *Surface] = New
)

// New opens a surface on the controlling terminal.
func New(dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	return NewWithConfig(Config{}, dim, title, opt)
}

// NewWithConfig opens a surface on cfg.In and cfg.Out.
func NewWithConfig(cfg Config, dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fail := func(err error) (*Surface, error) {
		return nil, &windowing.CreateError{Backend: backendName, Dim: dim, Title: title, Err: err}
	}

	if !term.IsTerminal(int(cfg.In.Fd())) || !term.IsTerminal(int(cfg.Out.Fd())) {
		return fail(ErrNotTerminal)
	}
	cols, rows, err := term.GetSize(int(cfg.Out.Fd()))
	if err != nil {
		return fail(fmt.Errorf("failed to get terminal size: %w", err))
	}
	if _, _, err := framebufferSize(dim, cols, rows); err != nil {
		return fail(err)
	}

	reader, err := cancelreader.NewReader(cfg.In)
	if err != nil {
		return fail(fmt.Errorf("failed to set up input reader: %w", err))
	}
	oldState, err := term.MakeRaw(int(cfg.In.Fd()))
	if err != nil {
		reader.Close()
		return fail(fmt.Errorf("failed to enter raw mode: %w", err))
	}

	profile := termenv.NewOutput(cfg.Out).EnvColorProfile()
	w := bufio.NewWriter(cfg.Out)

	s := &Surface{
		dim:      dim,
		logger:   logger,
		in:       cfg.In,
		out:      cfg.Out,
		reader:   reader,
		oldState: oldState,
		w:        w,
		screen:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		profile:  profile,
		events:   make(chan event.Event, eventBuffer),
		done:     make(chan struct{}),
		cols:     cols,
		rows:     rows,
	}

	s.screen.AltScreen()
	s.screen.SetWindowTitle(title)
	s.screen.ClearScreen()
	if opt.IsCursorHidden() {
		s.screen.HideCursor()
	}
	if err := w.Flush(); err != nil {
		s.restore()
		return fail(fmt.Errorf("failed to set up screen: %w", err))
	}

	s.wg.Add(1)
	go s.readInput()
	s.stopResize = notifyResize(s.onResize)

	logger.Debug("terminal surface created",
		"dim", dim.String(),
		"title", title,
		"cells", fmt.Sprintf("%dx%d", cols, rows),
		"profile", profileName(profile),
		"options", opt.String())
	return s, nil
}

// framebufferSize returns the framebuffer size for dim on a terminal of
// cols by rows cells.
func framebufferSize(dim windowing.WindowDim, cols, rows int) (int, int, error) {
	if dim.Kind() == windowing.KindFullscreen {
		if cols <= 0 || rows <= 0 {
			return 0, 0, fmt.Errorf("%w: terminal is %dx%d", ErrInvalidSize, cols, rows)
		}
		return cols, rows * 2, nil
	}
	w, h, _ := dim.Size()
	if w == 0 || h == 0 || w > 1<<15 || h > 1<<15 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return int(w), int(h), nil
}

func (s *Surface) Size() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h, _ := framebufferSize(s.dim, s.cols, s.rows)
	return uint32(w), uint32(h)
}

func (s *Surface) onResize() {
	cols, rows, err := term.GetSize(int(s.out.Fd()))
	if err != nil {
		s.logger.Warn("terminal size query failed", "error", err)
		return
	}
	s.mu.Lock()
	changed := cols != s.cols || rows != s.rows
	s.cols, s.rows = cols, rows
	s.mu.Unlock()
	if !changed {
		return
	}
	if s.dim.Kind() == windowing.KindFullscreen {
		w, h, _ := framebufferSize(s.dim, cols, rows)
		s.push(event.WindowResize{Width: uint32(w), Height: uint32(h)})
		return
	}
	s.push(event.WindowExpose{})
}

func (s *Surface) readInput() {
	defer s.wg.Done()
	buf := make([]byte, 256)
	var pending []byte
	for {
		n, err := s.reader.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			evs, rest := decodeKeys(pending)
			for _, ev := range evs {
				s.push(ev)
			}
			pending = append(pending[:0], rest...)
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) {
				s.logger.Warn("terminal input closed", "error", err)
				s.push(event.WindowClose{})
			}
			return
		}
	}
}

// push queues ev, dropping it when the queue is full.
func (s *Surface) push(ev event.Event) {
	select {
	case <-s.done:
	case s.events <- ev:
	default:
		s.logger.Warn("terminal event queue full, dropping event", "event", event.Describe(ev))
	}
}

func (s *Surface) PollEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		n := len(s.events)
		for i := 0; i < n; i++ {
			select {
			case ev := <-s.events:
				if !yield(ev) {
					return
				}
			default:
				return
			}
		}
	}
}

func (s *Surface) WaitEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			if !yield(ev) {
				return
			}
		}
		for ev := range s.PollEvents() {
			if !yield(ev) {
				return
			}
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
	w, h, _ := framebufferSize(s.dim, s.cols, s.rows)
	r := image.Rect(0, 0, w, h)
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
		return
	}
	fb := s.framebufferLocked()
	s.mu.Unlock()

	render()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	cellRect := image.Rect(0, 0, s.cols, s.rows*2)
	if s.cells == nil || !s.cells.Bounds().Eq(cellRect) {
		s.cells = image.NewRGBA(cellRect)
	}
	fit(s.cells, fb)

	s.screen.MoveCursor(1, 1)
	encodeCells(s.w, s.profile, s.cells)
	if err := s.w.Flush(); err != nil {
		s.logger.Error("terminal frame write failed", "error", err)
	}
}

// restore puts the terminal back the way New found it.
func (s *Surface) restore() {
	s.screen.ShowCursor()
	s.screen.ExitAltScreen()
	s.w.Flush()
	if err := term.Restore(int(s.in.Fd()), s.oldState); err != nil {
		s.logger.Warn("failed to restore terminal mode", "error", err)
	}
	s.reader.Close()
}

func (s *Surface) Close() error {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	if s.stopResize != nil {
		s.stopResize()
	}
	s.reader.Cancel()
	s.wg.Wait()
	s.restore()
	s.logger.Debug("terminal surface closed")
	return nil
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "ansi256"
	case termenv.ANSI:
		return "ansi"
	default:
		return "ascii"
	}
}
