// Package windowingtest provides checks shared by the backend test suites.
package windowingtest

import (
	"iter"
	"testing"

	"github.com/1broseidon/lumiwin/windowing"
)

// Collect drains seq into a slice.
func Collect[E any](seq iter.Seq[E]) []E {
	var out []E
	for ev := range seq {
		out = append(out, ev)
	}
	return out
}

// CheckSize verifies that s reports the given size and that the derived
// accessors agree with it.
func CheckSize(t testing.TB, s windowing.Sizer, wantW, wantH uint32) {
	t.Helper()
	w, h := s.Size()
	if w != wantW || h != wantH {
		t.Fatalf("expected size %dx%d, got %dx%d", wantW, wantH, w, h)
	}
	if windowing.Width(s) != w {
		t.Fatalf("Width() = %d, Size() width = %d", windowing.Width(s), w)
	}
	if windowing.Height(s) != h {
		t.Fatalf("Height() = %d, Size() height = %d", windowing.Height(s), h)
	}
}

// CheckDraw runs one Draw on s and verifies the render callback ran exactly
// once. When s is a Canvas the framebuffer bounds must match Size while
// rendering.
func CheckDraw[E any](t testing.TB, s windowing.Surface[E]) {
	t.Helper()
	calls := 0
	s.Draw(func() {
		calls++
		c, ok := s.(windowing.Canvas)
		if !ok {
			return
		}
		w, h := s.Size()
		b := c.Framebuffer().Bounds()
		if b.Dx() != int(w) || b.Dy() != int(h) {
			t.Errorf("framebuffer %v does not match size %dx%d", b, w, h)
		}
	})
	if calls != 1 {
		t.Fatalf("expected render to run once, ran %d times", calls)
	}
}

// CheckDrained verifies that polling s yields nothing.
func CheckDrained[E any](t testing.TB, s windowing.Surface[E]) {
	t.Helper()
	if evs := Collect(s.PollEvents()); len(evs) != 0 {
		t.Fatalf("expected no pending events, got %v", evs)
	}
}
