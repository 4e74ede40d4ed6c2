package windowing

import "fmt"

// CreateError reports a failed surface construction.
type CreateError struct {
	Backend string
	Dim     WindowDim
	Title   string
	Err     error
}

func (e *CreateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: create %q (%s): %v", e.Backend, e.Title, e.Dim, e.Err)
}

func (e *CreateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
