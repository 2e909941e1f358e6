package persistence

import "errors"

var (
	// ErrMalformed is returned when a stored string cannot be parsed.
	ErrMalformed = errors.New("persistence: malformed value")

	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("persistence: store closed")
)
