package tty

import (
	"unicode/utf8"

	"github.com/1broseidon/lumiwin/event"
)

// Escape sequences sent by common terminals for special keys.
var escapeKeys = map[string]string{
	"[A":  "Up",
	"[B":  "Down",
	"[C":  "Right",
	"[D":  "Left",
	"[H":  "Home",
	"[F":  "End",
	"OA":  "Up",
	"OB":  "Down",
	"OC":  "Right",
	"OD":  "Left",
	"OH":  "Home",
	"OF":  "End",
	"[1~": "Home",
	"[2~": "Insert",
	"[3~": "Delete",
	"[4~": "End",
	"[5~": "Prior",
	"[6~": "Next",
}

// maxEscape bounds how long an unterminated CSI/SS3 sequence is held back
// waiting for its final byte.
const maxEscape = 16

// decodeKeys turns raw terminal input into key events. Ctrl-C and Ctrl-D
// close the surface. An escape sequence cut off at the end of b is returned
// undecoded in rest so the caller can prepend it to the next read.
func decodeKeys(b []byte) (out []event.Event, rest []byte) {
	for len(b) > 0 {
		c := b[0]
		switch {
		case c == 0x03 || c == 0x04:
			out = append(out, event.WindowClose{})
			b = b[1:]
		case c == '\r' || c == '\n':
			out = append(out, key(uint32(c), "Return", 0))
			b = b[1:]
		case c == '\t':
			out = append(out, key(uint32(c), "Tab", 0))
			b = b[1:]
		case c == 0x7f || c == 0x08:
			out = append(out, key(uint32(c), "BackSpace", 0))
			b = b[1:]
		case c == 0x1b:
			ev, n := decodeEscape(b)
			if n == 0 {
				return out, b
			}
			out = append(out, ev)
			b = b[n:]
		case c >= 0x01 && c <= 0x1a:
			out = append(out, key(uint32(c), string(rune('a'+c-1)), event.ModCtrl))
			b = b[1:]
		case c < 0x20:
			out = append(out, key(uint32(c), "Unknown", event.ModCtrl))
			b = b[1:]
		default:
			r, n := utf8.DecodeRune(b)
			if r == utf8.RuneError && n <= 1 {
				b = b[1:]
				continue
			}
			out = append(out, key(uint32(r), string(r), 0))
			b = b[n:]
		}
	}
	return out, nil
}

// decodeEscape decodes a sequence starting with ESC and reports how many
// bytes it used. It uses none when b ends inside a CSI/SS3 sequence.
func decodeEscape(b []byte) (event.Event, int) {
	if len(b) == 1 {
		return key(0x1b, "Escape", 0), 1
	}
	if b[1] == '[' || b[1] == 'O' {
		// CSI/SS3: parameters then a final byte in 0x40..0x7e.
		for i := 2; i < len(b); i++ {
			if b[i] >= 0x40 && b[i] <= 0x7e {
				seq := string(b[1 : i+1])
				if name, ok := escapeKeys[seq]; ok {
					return key(0, name, 0), i + 1
				}
				return key(0, "Unknown", 0), i + 1
			}
		}
		if len(b) < maxEscape {
			return nil, 0
		}
		return key(0x1b, "Escape", 0), 1
	}
	if b[1] == 0x1b {
		return key(0x1b, "Escape", 0), 1
	}
	// ESC followed by a key is how terminals send Alt.
	inner, _ := decodeKeys(b[1:2])
	if len(inner) == 1 {
		if k, ok := inner[0].(event.KeyDown); ok {
			k.Mods |= event.ModAlt
			return k, 2
		}
	}
	return key(0x1b, "Escape", 0), 1
}

func key(code uint32, name string, mods event.Mods) event.KeyDown {
	return event.KeyDown{Code: code, Name: name, Mods: mods}
}
