package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/1broseidon/lumiwin/event"
)

// KeyNamer returns the keysym name of a key code under the given modifier
// state.
type KeyNamer func(state uint16, code xproto.Keycode) string

// KeybindNamer names keys with the keybind lookup tables of c.
func (c *Connection) KeybindNamer() KeyNamer {
	return func(state uint16, code xproto.Keycode) string {
		return keybind.LookupString(c.XUtil, state, code)
	}
}

// Translator turns core protocol events for one window into lumiwin events
// and tracks the window size reported by the server.
type Translator struct {
	Window        xproto.Window
	ProtocolsAtom xproto.Atom
	DeleteAtom    xproto.Atom
	KeyName       KeyNamer

	Width, Height int
}

// Translate converts ev. ok is false for events with no lumiwin
// counterpart.
func (t *Translator) Translate(ev xgb.Event) (out event.Event, ok bool) {
	switch e := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if e.Window != t.Window {
			return nil, false
		}
		w, h := int(e.Width), int(e.Height)
		if w == t.Width && h == t.Height {
			return nil, false
		}
		t.Width, t.Height = w, h
		return event.WindowResize{Width: uint32(w), Height: uint32(h)}, true

	case xproto.ExposeEvent:
		// Only the last expose of a series.
		if e.Count != 0 {
			return nil, false
		}
		return event.WindowExpose{}, true

	case xproto.FocusInEvent:
		return event.WindowFocus{Focused: true}, true
	case xproto.FocusOutEvent:
		return event.WindowFocus{Focused: false}, true

	case xproto.ClientMessageEvent:
		if e.Type != t.ProtocolsAtom || e.Format != 32 {
			return nil, false
		}
		data := e.Data.Data32
		if len(data) > 0 && xproto.Atom(data[0]) == t.DeleteAtom {
			return event.WindowClose{}, true
		}
		return nil, false

	case xproto.DestroyNotifyEvent:
		if e.Window == t.Window {
			return event.WindowClose{}, true
		}
		return nil, false

	case xproto.KeyPressEvent:
		return event.KeyDown{Code: uint32(e.Detail), Name: t.keyName(e.State, e.Detail), Mods: Mods(e.State)}, true
	case xproto.KeyReleaseEvent:
		return event.KeyUp{Code: uint32(e.Detail), Name: t.keyName(e.State, e.Detail), Mods: Mods(e.State)}, true

	case xproto.ButtonPressEvent:
		return event.MouseDown{Button: event.Button(e.Detail), X: int(e.EventX), Y: int(e.EventY), Mods: Mods(e.State)}, true
	case xproto.ButtonReleaseEvent:
		return event.MouseUp{Button: event.Button(e.Detail), X: int(e.EventX), Y: int(e.EventY), Mods: Mods(e.State)}, true
	case xproto.MotionNotifyEvent:
		return event.MouseMove{X: int(e.EventX), Y: int(e.EventY), Mods: Mods(e.State)}, true
	}
	return nil, false
}

func (t *Translator) keyName(state uint16, code xproto.Keycode) string {
	if t.KeyName == nil {
		return ""
	}
	return t.KeyName(state, code)
}

// Mods converts a core protocol modifier state.
func Mods(state uint16) event.Mods {
	var m event.Mods
	if state&xproto.ModMaskShift != 0 {
		m |= event.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= event.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= event.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= event.ModSuper
	}
	return m
}
