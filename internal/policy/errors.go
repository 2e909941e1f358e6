package policy

import "errors"

var (
	// ErrInvalidStatic is returned when the static configuration is inconsistent.
	ErrInvalidStatic = errors.New("policy: invalid static configuration")

	// ErrMissingParam is returned when an action lacks a required parameter.
	ErrMissingParam = errors.New("policy: missing action parameter")

	// ErrInvalidParam is returned when an action parameter cannot be parsed.
	ErrInvalidParam = errors.New("policy: invalid action parameter")

	// ErrNotStarted is returned when an engine is used before Startup.
	ErrNotStarted = errors.New("policy: engine not started")
)
