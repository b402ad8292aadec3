package source

import (
	"errors"
	"fmt"
)

// Sentinel kinds for source errors.
var (
	ErrFetch         = errors.New("fetch failed")
	ErrUnexpectedDoc = errors.New("unexpected document shape")
)

// FetchError reports a failed fetch. It matches ErrFetch with errors.Is and
// unwraps to the underlying cause.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrFetch, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

func fetchErr(op string, err error) error {
	return &FetchError{Op: op, Err: err}
}
