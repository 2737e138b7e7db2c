package comic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested comic id does not exist.
	ErrNotFound = errors.New("comic not found")
	// ErrSelectionCancelled is returned when the user aborts the title picker.
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// UnknownIDError reports a requested comic number that xkcd.com does not
// have. It matches ErrNotFound.
type UnknownIDError struct {
	ID int
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("no comic with number %d exists", e.ID)
}

func (e *UnknownIDError) Is(target error) bool { return target == ErrNotFound }

// FetchError reports a network, HTTP or response parsing failure.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError reports an image decode, resize, encode or display failure.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
