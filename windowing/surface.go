package windowing

import (
	"image/draw"
	"iter"
)

// Sizer reports the live size of a framebuffer.
type Sizer interface {
	Size() (width, height uint32)
}

// Surface is implemented by windowing backends so rendering code can be
// written once and run on any of them.
//
// E is the backend's event type. All methods are meant to be called from the
// goroutine that created the surface; Draw is never run concurrently with
// itself.
type Surface[E any] interface {
	Sizer

	// PollEvents returns the events queued so far without blocking. The
	// sequence may be empty and is single-use. Breaking out of the loop
	// leaves the remaining events queued.
	PollEvents() iter.Seq[E]

	// WaitEvents blocks until at least one event is available, then yields
	// it along with whatever else is queued. A closed surface yields nothing.
	WaitEvents() iter.Seq[E]

	// Draw runs render to produce one frame, then presents it.
	Draw(render func())

	// Close releases the window and its context. It is safe to call more
	// than once.
	Close() error
}

// Device is the single-accessor form of a surface: Events never blocks.
type Device[E any] interface {
	Sizer
	Events() iter.Seq[E]
	Draw(render func())
	Close() error
}

// Constructor creates a surface. Every backend exports a New function of
// this shape.
type Constructor[E any, S Surface[E]] func(dim WindowDim, title string, opt WindowOpt) (S, error)

// Canvas is implemented by backends that present a software framebuffer.
// During Draw the framebuffer bounds match Size.
type Canvas interface {
	Framebuffer() draw.Image
}

// Width returns the framebuffer width of s.
func Width(s Sizer) uint32 {
	if w, ok := s.(interface{ Width() uint32 }); ok {
		return w.Width()
	}
	w, _ := s.Size()
	return w
}

// Height returns the framebuffer height of s.
func Height(s Sizer) uint32 {
	if h, ok := s.(interface{ Height() uint32 }); ok {
		return h.Height()
	}
	_, h := s.Size()
	return h
}

// AsDevice exposes s through the Device interface; Events polls.
func AsDevice[E any](s Surface[E]) Device[E] {
	return device[E]{s: s}
}

type device[E any] struct {
	s Surface[E]
}

func (d device[E]) Size() (uint32, uint32) { return d.s.Size() }
func (d device[E]) Events() iter.Seq[E]    { return d.s.PollEvents() }
func (d device[E]) Draw(render func())     { d.s.Draw(render) }
func (d device[E]) Close() error           { return d.s.Close() }
