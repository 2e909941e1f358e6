package controller

import "errors"

var (
	// ErrRunnerStopped is returned by Runner.Do once the runner has stopped.
	ErrRunnerStopped = errors.New("controller: runner stopped")

	// ErrUnknownAction is returned for an action name the factory cannot build.
	ErrUnknownAction = errors.New("controller: unknown action")

	// ErrNotStarted is returned when the controller is used before Startup.
	ErrNotStarted = errors.New("controller: not started")
)
