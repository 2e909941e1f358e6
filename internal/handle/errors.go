package handle

import "errors"

var (
	// ErrAlreadyBound is returned when a handle is bound twice.
	ErrAlreadyBound = errors.New("handle: already bound")

	// ErrNilWaiter is returned when binding a handle to nothing.
	ErrNilWaiter = errors.New("handle: nil waiter")
)
