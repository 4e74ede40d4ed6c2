// Package windowing defines the contract between a rendering library and
// the platform backends that open its window.
//
// A backend creates a window and its framebuffer from a WindowDim, a title
// and a WindowOpt, reports the framebuffer size, hands out the events it
// has received and presents frames:
//
//	s, err := headless.New(windowing.Windowed(800, 600), "demo", windowing.DefaultWindowOpt())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	for {
//		for ev := range s.PollEvents() {
//			// handle ev
//		}
//		s.Draw(func() {
//			// render into s.Framebuffer()
//		})
//	}
//
// Construction is the only fallible operation. Everything else a backend
// cannot do is either handled internally or reported as an event.
package windowing
