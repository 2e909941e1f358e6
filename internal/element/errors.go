package element

import "errors"

// Validation errors for element configuration. Registry failures use the
// shared codes in package audio (ErrAlreadyExists, ErrNonExistent, ErrDatabase).
var (
	// ErrInvalidName is returned when a name is empty, too long or contains
	// one of the characters reserved by the persistence format.
	ErrInvalidName = errors.New("element: invalid name")

	// ErrInvalidConfig is returned when a configuration is inconsistent.
	ErrInvalidConfig = errors.New("element: invalid config")

	// ErrInvalidKind is returned when a kind string is not recognised.
	ErrInvalidKind = errors.New("element: invalid kind")
)
