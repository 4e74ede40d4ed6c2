//go:build linux

package tty

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/1broseidon/lumiwin/event"
	"github.com/1broseidon/lumiwin/windowing"
)

// lockedBuffer collects what the surface writes to the terminal.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type ptyPair struct {
	master *os.File
	slave  *os.File
	output *lockedBuffer
	done   chan struct{}
}

func openPTY(t *testing.T, cols, rows uint16) *ptyPair {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if err := pty.Setsize(slave, &pty.Winsize{Cols: cols, Rows: rows}); err != nil {
		master.Close()
		slave.Close()
		t.Fatalf("setsize: %v", err)
	}
	p := &ptyPair{master: master, slave: slave, output: &lockedBuffer{}, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		io.Copy(p.output, master)
	}()
	t.Cleanup(func() {
		slave.Close()
		master.Close()
		select {
		case <-p.done:
		case <-time.After(time.Second):
		}
	})
	return p
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// collect polls s until n events have arrived.
func collect(t *testing.T, s *Surface, n int) []event.Event {
	t.Helper()
	var got []event.Event
	waitFor(t, "events", func() bool {
		for ev := range s.PollEvents() {
			got = append(got, ev)
		}
		return len(got) >= n
	})
	return got
}

func TestSurface_PTY(t *testing.T) {
	p := openPTY(t, 40, 10)

	s, err := NewWithConfig(Config{In: p.slave, Out: p.slave, Logger: quietLogger()}, windowing.Fullscreen(), "pty", windowing.DefaultWindowOpt())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer s.Close()

	if w, h := s.Size(); w != 40 || h != 20 {
		t.Fatalf("expected 40x20, got %dx%d", w, h)
	}
	waitFor(t, "alternate screen", func() bool {
		return strings.Contains(p.output.String(), "\x1b[?1049h")
	})

	if _, err := p.master.Write([]byte("ab\x1b[A\x03")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := collect(t, s, 4)
	want := []event.Event{
		event.KeyDown{Code: 'a', Name: "a"},
		event.KeyDown{Code: 'b', Name: "b"},
		event.KeyDown{Name: "Up"},
		event.WindowClose{},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %#v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %#v, got %#v", i, want[i], got[i])
		}
	}

	if err := pty.Setsize(p.slave, &pty.Winsize{Cols: 20, Rows: 5}); err != nil {
		t.Fatalf("setsize: %v", err)
	}
	s.onResize()
	got = collect(t, s, 1)
	if got[0] != (event.WindowResize{Width: 20, Height: 10}) {
		t.Fatalf("expected resize to 20x10, got %#v", got[0])
	}
	if w, h := s.Size(); w != 20 || h != 10 {
		t.Fatalf("expected 20x10 after resize, got %dx%d", w, h)
	}

	s.Draw(func() {
		fb := s.Framebuffer()
		b := fb.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				fb.Set(x, y, color.RGBA{R: 255, A: 255})
			}
		}
	})
	waitFor(t, "frame", func() bool {
		return strings.Count(p.output.String(), halfBlock) >= 20*5
	})

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	waitFor(t, "alternate screen exit", func() bool {
		return strings.Contains(p.output.String(), "\x1b[?1049l")
	})

	// Drawing after Close writes nothing.
	before := p.output.String()
	rendered := false
	s.Draw(func() { rendered = true })
	if rendered {
		t.Fatalf("render called after Close")
	}
	time.Sleep(20 * time.Millisecond)
	if p.output.String() != before {
		t.Fatalf("Draw after Close wrote to the terminal")
	}
}

func TestSurface_PTYFixedDimExposes(t *testing.T) {
	p := openPTY(t, 40, 10)

	s, err := NewWithConfig(Config{In: p.slave, Out: p.slave, Logger: quietLogger()}, windowing.Windowed(64, 48), "pty", windowing.DefaultWindowOpt())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer s.Close()

	if w, h := s.Size(); w != 64 || h != 48 {
		t.Fatalf("expected 64x48, got %dx%d", w, h)
	}
	if b := s.Framebuffer().Bounds(); b != image.Rect(0, 0, 64, 48) {
		t.Fatalf("unexpected framebuffer bounds %v", b)
	}

	if err := pty.Setsize(p.slave, &pty.Winsize{Cols: 30, Rows: 8}); err != nil {
		t.Fatalf("setsize: %v", err)
	}
	s.onResize()
	got := collect(t, s, 1)
	if _, ok := got[0].(event.WindowExpose); !ok {
		t.Fatalf("expected WindowExpose, got %#v", got[0])
	}
	if w, h := s.Size(); w != 64 || h != 48 {
		t.Fatalf("fixed size changed to %dx%d", w, h)
	}
}

func TestSurface_PTYSplitEscape(t *testing.T) {
	p := openPTY(t, 40, 10)

	s, err := NewWithConfig(Config{In: p.slave, Out: p.slave, Logger: quietLogger()}, windowing.Fullscreen(), "pty", windowing.DefaultWindowOpt())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer s.Close()

	if _, err := p.master.Write([]byte("\x1b[")); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	for ev := range s.PollEvents() {
		t.Fatalf("expected no event for a partial sequence, got %#v", ev)
	}
	if _, err := p.master.Write([]byte("B")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := collect(t, s, 1)
	if len(got) != 1 || got[0] != (event.KeyDown{Name: "Down"}) {
		t.Fatalf("expected a single Down key, got %#v", got)
	}
}

func TestSurface_WaitEventsReturnsAfterClose(t *testing.T) {
	p := openPTY(t, 40, 10)

	s, err := NewWithConfig(Config{In: p.slave, Out: p.slave, Logger: quietLogger()}, windowing.Fullscreen(), "pty", windowing.DefaultWindowOpt())
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range s.WaitEvents() {
		}
	}()
	time.Sleep(20 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("WaitEvents still blocked after Close")
	}
}
