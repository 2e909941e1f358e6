package routing

import "errors"

var (
	// ErrUnknownHandle is returned for acks that match no in-flight command.
	ErrUnknownHandle = errors.New("routing: unknown handle")

	// ErrUnknownEvent is returned for events the adapter does not understand.
	ErrUnknownEvent = errors.New("routing: unknown event")

	// ErrNoBus is returned when an element's domain has no bus to talk to.
	ErrNoBus = errors.New("routing: no bus for element")

	// ErrNotStarted is returned for traffic arriving before Start.
	ErrNotStarted = errors.New("routing: adapter not started")
)
