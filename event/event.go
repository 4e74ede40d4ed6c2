// Package event holds the events emitted by the lumiwin backends.
package event

import (
	"fmt"
	"strings"
)

// Event is any of the types declared in this package.
type Event interface{}

// WindowResize reports a new framebuffer size.
type WindowResize struct {
	Width, Height uint32
}

// WindowExpose asks for the window contents to be painted again.
type WindowExpose struct{}

// WindowClose is sent when the user or the system asks the window to close.
type WindowClose struct{}

type WindowFocus struct {
	Focused bool
}

type KeyDown struct {
	Code uint32
	Name string
	Mods Mods
}

type KeyUp struct {
	Code uint32
	Name string
	Mods Mods
}

type MouseDown struct {
	Button Button
	X, Y   int
	Mods   Mods
}

type MouseUp struct {
	Button Button
	X, Y   int
	Mods   Mods
}

type MouseMove struct {
	X, Y int
	Mods Mods
}

//----------

// Mods is a set of keyboard modifiers.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Mods) Has(o Mods) bool {
	return m&o == o
}

func (m Mods) String() string {
	if m == 0 {
		return ""
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModSuper) {
		parts = append(parts, "super")
	}
	return strings.Join(parts, "+")
}

// Button numbering follows the X11 core protocol.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonWheelUp:
		return "wheel-up"
	case ButtonWheelDown:
		return "wheel-down"
	default:
		return fmt.Sprintf("button%d", uint8(b))
	}
}

//----------

// Describe returns a short single-line description of ev.
func Describe(ev Event) string {
	switch t := ev.(type) {
	case WindowResize:
		return fmt.Sprintf("resize %dx%d", t.Width, t.Height)
	case WindowExpose:
		return "expose"
	case WindowClose:
		return "close"
	case WindowFocus:
		if t.Focused {
			return "focus in"
		}
		return "focus out"
	case KeyDown:
		return "key down " + keyName(t.Name, t.Mods)
	case KeyUp:
		return "key up " + keyName(t.Name, t.Mods)
	case MouseDown:
		return fmt.Sprintf("mouse down %s at %d,%d", t.Button, t.X, t.Y)
	case MouseUp:
		return fmt.Sprintf("mouse up %s at %d,%d", t.Button, t.X, t.Y)
	case MouseMove:
		return fmt.Sprintf("mouse move %d,%d", t.X, t.Y)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", ev)
	}
}

func keyName(name string, mods Mods) string {
	if mods == 0 {
		return name
	}
	return mods.String() + "+" + name
}
