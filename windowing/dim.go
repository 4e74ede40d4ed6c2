package windowing

import (
	"fmt"
	"strconv"
	"strings"
)

// DimKind identifies which WindowDim variant is active.
type DimKind uint8

const (
	KindWindowed DimKind = iota
	KindFullscreen
	KindFullscreenRestricted
)

func (k DimKind) String() string {
	switch k {
	case KindWindowed:
		return "windowed"
	case KindFullscreen:
		return "fullscreen"
	case KindFullscreenRestricted:
		return "fullscreen-restricted"
	default:
		return fmt.Sprintf("DimKind(%d)", uint8(k))
	}
}

// WindowDim describes the dimension of a window and its mode.
//
// Width and height are passed through as given; backends decide whether a
// size is acceptable. The zero value is Windowed(0, 0).
type WindowDim struct {
	kind   DimKind
	width  uint32
	height uint32
}

// Windowed is a regular window of the given size.
func Windowed(width, height uint32) WindowDim {
	return WindowDim{kind: KindWindowed, width: width, height: height}
}

// Fullscreen covers the primary display at its resolution at creation time.
func Fullscreen() WindowDim {
	return WindowDim{kind: KindFullscreen}
}

// FullscreenRestricted is a fullscreen window whose framebuffer is restricted
// to the given resolution.
func FullscreenRestricted(width, height uint32) WindowDim {
	return WindowDim{kind: KindFullscreenRestricted, width: width, height: height}
}

// Kind reports the active variant.
func (d WindowDim) Kind() DimKind {
	return d.kind
}

// Size returns the requested width and height. ok is false for Fullscreen,
// which carries no payload.
func (d WindowDim) Size() (width, height uint32, ok bool) {
	if d.kind == KindFullscreen {
		return 0, 0, false
	}
	return d.width, d.height, true
}

// IsFullscreen reports whether d is one of the fullscreen variants.
func (d WindowDim) IsFullscreen() bool {
	return d.kind == KindFullscreen || d.kind == KindFullscreenRestricted
}

func (d WindowDim) String() string {
	if d.kind == KindFullscreen {
		return d.kind.String()
	}
	return fmt.Sprintf("%s %dx%d", d.kind, d.width, d.height)
}

// ParseWindowDim parses the String form of a WindowDim:
//
//	windowed 800x600
//	800x600
//	fullscreen
//	fullscreen-restricted 1920x1080
func ParseWindowDim(s string) (WindowDim, error) {
	fields := strings.Fields(strings.ToLower(s))
	switch len(fields) {
	case 1:
		if fields[0] == KindFullscreen.String() {
			return Fullscreen(), nil
		}
		w, h, err := parseResolution(fields[0])
		if err != nil {
			return WindowDim{}, fmt.Errorf("invalid window dimension %q: %w", s, err)
		}
		return Windowed(w, h), nil
	case 2:
		w, h, err := parseResolution(fields[1])
		if err != nil {
			return WindowDim{}, fmt.Errorf("invalid window dimension %q: %w", s, err)
		}
		switch fields[0] {
		case KindWindowed.String():
			return Windowed(w, h), nil
		case KindFullscreenRestricted.String():
			return FullscreenRestricted(w, h), nil
		case KindFullscreen.String():
			return WindowDim{}, fmt.Errorf("invalid window dimension %q: fullscreen takes no size, use fullscreen-restricted", s)
		}
		return WindowDim{}, fmt.Errorf("invalid window dimension %q: unknown mode %q", s, fields[0])
	default:
		return WindowDim{}, fmt.Errorf("invalid window dimension %q: expected \"<mode> <width>x<height>\" or \"fullscreen\"", s)
	}
}

// ParseResolution parses a "<width>x<height>" pair.
func ParseResolution(s string) (width, height uint32, err error) {
	return parseResolution(strings.ToLower(strings.TrimSpace(s)))
}

func parseResolution(s string) (uint32, uint32, error) {
	ws, hs, found := strings.Cut(s, "x")
	if !found {
		return 0, 0, fmt.Errorf("resolution %q must be <width>x<height>", s)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad width %q: %w", ws, err)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad height %q: %w", hs, err)
	}
	return uint32(w), uint32(h), nil
}

func (d WindowDim) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *WindowDim) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowDim(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
