package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventMask is the set of events a surface window listens to.
const EventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskFocusChange |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// WindowParams describes a top-level window to create.
type WindowParams struct {
	X, Y          int
	Width, Height int
	Title         string
	Class         string
	Fullscreen    bool
	HideCursor    bool
}

// Window is a mapped top-level window with a graphics context for
// presenting pixmaps.
type Window struct {
	*xwindow.Window
	GC xproto.Gcontext

	// Atoms used to recognize WM_DELETE_WINDOW client messages.
	ProtocolsAtom xproto.Atom
	DeleteAtom    xproto.Atom

	cursor xproto.Cursor
}

// CreateWindow creates, configures and maps a window.
func (c *Connection) CreateWindow(p WindowParams) (*Window, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("window size %dx%d must be positive", p.Width, p.Height)
	}

	xw, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// mask/values order is defined by the protocol
	err = xw.CreateChecked(c.Root,
		p.X, p.Y, p.Width, p.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		c.XUtil.Screen().BlackPixel, EventMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	win := &Window{Window: xw}
	if err := c.configureWindow(win, p); err != nil {
		xw.Destroy()
		return nil, err
	}

	xw.Map()
	return win, nil
}

func (c *Connection) configureWindow(win *Window, p WindowParams) error {
	xu := c.XUtil
	id := win.Id

	if err := ewmh.WmNameSet(xu, id, p.Title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(xu, id, p.Title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if p.Class != "" {
		class := &icccm.WmClass{Instance: p.Class, Class: p.Class}
		if err := icccm.WmClassSet(xu, id, class); err != nil {
			return fmt.Errorf("failed to set WM_CLASS: %w", err)
		}
	}

	if err := icccm.WmProtocolsSet(xu, id, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	protocols, err := xprop.Atm(xu, "WM_PROTOCOLS")
	if err != nil {
		return err
	}
	deleteWin, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	win.ProtocolsAtom, win.DeleteAtom = protocols, deleteWin

	// Set before mapping so the window manager maps it fullscreen directly.
	if p.Fullscreen {
		if err := ewmh.WmStateSet(xu, id, []string{"_NET_WM_STATE_FULLSCREEN"}); err != nil {
			return fmt.Errorf("failed to request fullscreen: %w", err)
		}
	}

	if p.HideCursor {
		cursor, err := c.blankCursor()
		if err != nil {
			return fmt.Errorf("failed to hide cursor: %w", err)
		}
		win.cursor = cursor
		xproto.ChangeWindowAttributes(xu.Conn(), id, xproto.CwCursor, []uint32{uint32(cursor)})
	}

	gc, err := xproto.NewGcontextId(xu.Conn())
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(xu.Conn(), gc, xproto.Drawable(id), 0, nil).Check(); err != nil {
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	win.GC = gc
	return nil
}

// blankCursor builds an invisible cursor from an empty 1x1 bitmap.
func (c *Connection) blankCursor() (xproto.Cursor, error) {
	conn := c.XUtil.Conn()

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(c.Root), 1, 1).Check(); err != nil {
		return 0, err
	}
	defer xproto.FreePixmap(conn, pix)

	cursor, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateCursorChecked(conn, cursor,
		pix, pix,
		0, 0, 0,
		0, 0, 0,
		0, 0).Check()
	if err != nil {
		return 0, err
	}
	return cursor, nil
}

// Present copies a region of pixmap onto the window.
func (c *Connection) Present(win *Window, pixmap xproto.Pixmap, dstX, dstY, width, height int) {
	xproto.CopyArea(c.XUtil.Conn(),
		xproto.Drawable(pixmap), xproto.Drawable(win.Id), win.GC,
		0, 0,
		int16(dstX), int16(dstY),
		uint16(width), uint16(height))
}

// DestroyWindow releases the window and its server-side resources.
func (c *Connection) DestroyWindow(win *Window) {
	conn := c.XUtil.Conn()
	if win.GC != 0 {
		xproto.FreeGC(conn, win.GC)
	}
	if win.cursor != 0 {
		xproto.FreeCursor(conn, win.cursor)
	}
	win.Destroy()
}
