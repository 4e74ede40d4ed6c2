//go:build !unix

package tty

// Terminals without SIGWINCH never report resizes.
func notifyResize(fn func()) (stop func()) {
	return func() {}
}
