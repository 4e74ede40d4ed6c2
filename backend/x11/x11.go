// Package x11 implements a windowing surface on an X11 server.
//
// The surface owns its own connection. Frames are rendered into a client
// side image, uploaded to a pixmap and copied onto the window.
package x11

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"iter"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/lumiwin/event"
	internalx11 "github.com/1broseidon/lumiwin/internal/x11"
	"github.com/1broseidon/lumiwin/windowing"
)

const (
	backendName = "x11"
	windowClass = "lumiwin"
)

var (
	ErrConnect     = errors.New("cannot connect to X server")
	ErrInvalidSize = errors.New("invalid window size")
)

// Monitor describes a display attached to the X server.
type Monitor = internalx11.Monitor

// Config holds the options of an X11 surface.
type Config struct {
	// Display is the X display name; empty uses $DISPLAY.
	Display string
	Logger  *slog.Logger
}

// Surface is a window on an X11 server.
type Surface struct {
	conn   *internalx11.Connection
	win    *internalx11.Window
	tr     *internalx11.Translator
	dim    windowing.WindowDim
	logger *slog.Logger

	drawMu sync.Mutex

	mu       sync.Mutex
	fbWidth  int
	fbHeight int
	fb       *xgraphics.Image
	closed   bool
	// lost is set once the server connection has gone away; no further
	// requests may be sent on it.
	lost bool
}

var (
	_ windowing.Surface[event.Event]               = (*Surface)(nil)
	_ windowing.Canvas                             = (*Surface)(nil)
	_ windowing.Constructor[event.Event, *Surface] = New
)

// New opens a window on $DISPLAY.
func New(dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	return NewWithConfig(Config{}, dim, title, opt)
}

// NewWithConfig opens a window on cfg.Display.
func NewWithConfig(cfg Config, dim windowing.WindowDim, title string, opt windowing.WindowOpt) (*Surface, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fail := func(err error) (*Surface, error) {
		return nil, &windowing.CreateError{Backend: backendName, Dim: dim, Title: title, Err: err}
	}

	conn, err := internalx11.NewConnection(cfg.Display)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrConnect, err))
	}

	geom, err := layout(conn.PrimaryMonitor(), dim)
	if err != nil {
		conn.Close()
		return fail(err)
	}

	win, err := conn.CreateWindow(internalx11.WindowParams{
		X:          geom.x,
		Y:          geom.y,
		Width:      geom.winWidth,
		Height:     geom.winHeight,
		Title:      title,
		Class:      windowClass,
		Fullscreen: dim.IsFullscreen(),
		HideCursor: opt.IsCursorHidden(),
	})
	if err != nil {
		conn.Close()
		return fail(err)
	}

	s := &Surface{
		conn: conn,
		win:  win,
		tr: &internalx11.Translator{
			Window:        win.Id,
			ProtocolsAtom: win.ProtocolsAtom,
			DeleteAtom:    win.DeleteAtom,
			KeyName:       conn.KeybindNamer(),
			Width:         geom.winWidth,
			Height:        geom.winHeight,
		},
		dim:      dim,
		logger:   logger,
		fbWidth:  geom.fbWidth,
		fbHeight: geom.fbHeight,
	}
	logger.Debug("x11 surface created",
		"window", uint32(win.Id),
		"dim", dim.String(),
		"title", title,
		"framebuffer", fmt.Sprintf("%dx%d", geom.fbWidth, geom.fbHeight),
		"options", opt.String())
	return s, nil
}

type geometry struct {
	x, y                int
	winWidth, winHeight int
	fbWidth, fbHeight   int
}

// layout places the window for dim on the given monitor.
func layout(mon internalx11.Monitor, dim windowing.WindowDim) (geometry, error) {
	switch dim.Kind() {
	case windowing.KindFullscreen:
		return geometry{
			x: mon.X, y: mon.Y,
			winWidth: mon.Width, winHeight: mon.Height,
			fbWidth: mon.Width, fbHeight: mon.Height,
		}, nil
	case windowing.KindFullscreenRestricted:
		w, h, _ := dim.Size()
		if w == 0 || h == 0 || int64(w) > int64(mon.Width) || int64(h) > int64(mon.Height) {
			return geometry{}, fmt.Errorf("%w: %dx%d does not fit monitor %s (%dx%d)", ErrInvalidSize, w, h, mon.Name, mon.Width, mon.Height)
		}
		return geometry{
			x: mon.X, y: mon.Y,
			winWidth: mon.Width, winHeight: mon.Height,
			fbWidth: int(w), fbHeight: int(h),
		}, nil
	default:
		w, h, _ := dim.Size()
		if w == 0 || h == 0 || w > 0x7fff || h > 0x7fff {
			return geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
		}
		return geometry{
			winWidth: int(w), winHeight: int(h),
			fbWidth: int(w), fbHeight: int(h),
		}, nil
	}
}

func (s *Surface) Size() (uint32, uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(s.fbWidth), uint32(s.fbHeight)
}

func (s *Surface) Width() uint32 {
	w, _ := s.Size()
	return w
}

func (s *Surface) Height() uint32 {
	_, h := s.Size()
	return h
}

func (s *Surface) PollEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		s.drain(yield)
	}
}

func (s *Surface) WaitEvents() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		for {
			conn, ok := s.xconn()
			if !ok {
				return
			}
			xev, xerr := conn.WaitForEvent()
			if s.isClosed() {
				return
			}
			ev, ok := s.handle(xev, xerr)
			if !ok {
				continue
			}
			if !yield(ev) {
				return
			}
			break
		}
		s.drain(yield)
	}
}

// drain yields translated events until the connection queue is empty.
func (s *Surface) drain(yield func(event.Event) bool) {
	for {
		conn, ok := s.xconn()
		if !ok {
			return
		}
		xev, xerr := conn.PollForEvent()
		if xev == nil && xerr == nil {
			return
		}
		ev, ok := s.handle(xev, xerr)
		if !ok {
			continue
		}
		if !yield(ev) {
			return
		}
	}
}

func (s *Surface) xconn() (*xgb.Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	return s.conn.XUtil.Conn(), true
}

// handle translates one reply of the connection's event queue. A nil event
// with a nil error from WaitForEvent means the connection is gone.
func (s *Surface) handle(xev xgb.Event, xerr xgb.Error) (event.Event, bool) {
	if xerr != nil {
		s.logger.Warn("x11 protocol error", "error", xerr.Error())
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if xev == nil {
		s.logger.Warn("x11 connection lost")
		s.closed = true
		s.lost = true
		return event.WindowClose{}, true
	}

	ev, ok := s.tr.Translate(xev)
	if !ok {
		return nil, false
	}
	if r, isResize := ev.(event.WindowResize); isResize {
		// The restricted framebuffer keeps its size; only the window
		// around it changes.
		if s.dim.Kind() == windowing.KindFullscreenRestricted {
			return event.WindowExpose{}, true
		}
		s.fbWidth, s.fbHeight = int(r.Width), int(r.Height)
	}
	return ev, true
}

// Framebuffer returns the image the render callback of Draw paints into.
func (s *Surface) Framebuffer() draw.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framebufferLocked()
}

func (s *Surface) framebufferLocked() *xgraphics.Image {
	r := image.Rect(0, 0, s.fbWidth, s.fbHeight)
	if s.fb != nil && s.fb.Bounds().Eq(r) {
		return s.fb
	}
	if s.fb != nil {
		s.fb.Destroy()
	}
	s.fb = xgraphics.New(s.conn.XUtil, r)
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
	s.framebufferLocked()
	s.mu.Unlock()

	render()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.fb == nil {
		return
	}
	// Present what was rendered even if a resize arrived meanwhile; the
	// next frame picks up the new size.
	fb := s.fb
	if fb.Pixmap == 0 {
		if err := fb.XSurfaceSet(s.win.Id); err != nil {
			s.logger.Error("x11 framebuffer pixmap allocation failed", "error", err)
			return
		}
	}
	fb.XDraw()

	b := fb.Bounds()
	dx := max((s.tr.Width-b.Dx())/2, 0)
	dy := max((s.tr.Height-b.Dy())/2, 0)
	s.conn.Present(s.win, fb.Pixmap, dx, dy, b.Dx(), b.Dy())
}

func (s *Surface) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Surface) Close() error {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.win == nil {
		return nil
	}
	s.closed = true
	if s.lost {
		s.fb = nil
		s.win = nil
		s.logger.Debug("x11 surface closed after connection loss")
		return nil
	}
	if s.fb != nil {
		s.fb.Destroy()
		s.fb = nil
	}
	s.conn.DestroyWindow(s.win)
	s.conn.Close()
	s.win = nil
	s.logger.Debug("x11 surface closed")
	return nil
}

// Displays lists the monitors of the X server named by display.
func Displays(display string) ([]Monitor, error) {
	conn, err := internalx11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer conn.Close()
	return conn.GetMonitors()
}
