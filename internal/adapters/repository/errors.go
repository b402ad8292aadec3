package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNoSnapshot  = errors.New("no snapshot published yet")
	ErrNilSnapshot = errors.New("nil snapshot")
)
