package windowing

import "fmt"

// WindowOpt holds hints that customize how a backend integrates the window.
// The zero value is the default configuration.
type WindowOpt struct {
	hideCursor bool
}

// DefaultWindowOpt returns the default options: the cursor is visible.
func DefaultWindowOpt() WindowOpt {
	return WindowOpt{hideCursor: false}
}

// HideCursor returns a copy of o with the cursor hidden or shown.
func (o WindowOpt) HideCursor(hide bool) WindowOpt {
	o.hideCursor = hide
	return o
}

// IsCursorHidden reports whether the cursor should be hidden over the window.
func (o WindowOpt) IsCursorHidden() bool {
	return o.hideCursor
}

func (o WindowOpt) String() string {
	return fmt.Sprintf("hide_cursor=%t", o.hideCursor)
}
