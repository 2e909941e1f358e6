package audio

import (
	"errors"
	"strings"
)

// Error codes shared by the registry, the actions and both wire adapters.
//
// Every error returned across a package boundary wraps exactly one of these
// so callers can use errors.Is:
//
//	if errors.Is(err, audio.ErrAlreadyExists) {
//	    // duplicate registration
//	}
var (
	// ErrNotPossible is the generic refusal.
	ErrNotPossible = errors.New("audio: not possible")

	// ErrNoChange is returned when a request would not change anything.
	ErrNoChange = errors.New("audio: no change")

	// ErrAlreadyExists is returned when a name is already registered for a kind.
	ErrAlreadyExists = errors.New("audio: already exists")

	// ErrNonExistent is returned when a name or ID is not registered.
	ErrNonExistent = errors.New("audio: non existent")

	// ErrDatabase is returned when the routing side's element database
	// rejects a registration or unregistration.
	ErrDatabase = errors.New("audio: database error")

	// ErrOutOfRange is returned for values outside their permitted range.
	ErrOutOfRange = errors.New("audio: out of range")

	// ErrAborted is reported for asynchronous operations that were aborted.
	ErrAborted = errors.New("audio: aborted")

	// ErrUnknown is the catch-all for unrecognised failures.
	ErrUnknown = errors.New("audio: unknown error")

	// ErrWrongFormat is returned when a value or message cannot be parsed.
	ErrWrongFormat = errors.New("audio: wrong format")

	// ErrCommunication is returned when a collaborator cannot be reached.
	ErrCommunication = errors.New("audio: communication error")

	// ErrTimeout is reported for asynchronous operations that never completed.
	ErrTimeout = errors.New("audio: timeout")
)

// CodeOK is the wire code for success.
const CodeOK = "E_OK"

var errorCodes = []struct {
	code string
	err  error
}{
	{"E_NOT_POSSIBLE", ErrNotPossible},
	{"E_NO_CHANGE", ErrNoChange},
	{"E_ALREADY_EXISTS", ErrAlreadyExists},
	{"E_NON_EXISTENT", ErrNonExistent},
	{"E_DATABASE_ERROR", ErrDatabase},
	{"E_OUT_OF_RANGE", ErrOutOfRange},
	{"E_ABORTED", ErrAborted},
	{"E_UNKNOWN", ErrUnknown},
	{"E_WRONG_FORMAT", ErrWrongFormat},
	{"E_COMMUNICATION", ErrCommunication},
	{"E_TIMEOUT", ErrTimeout},
}

// Code returns the wire code for err. nil maps to CodeOK and errors that wrap
// none of the package sentinels map to E_UNKNOWN.
func Code(err error) string {
	if err == nil {
		return CodeOK
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "E_UNKNOWN"
}

// FromCode is the inverse of Code. Empty strings and CodeOK return nil,
// unrecognised codes return ErrUnknown.
func FromCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == CodeOK {
		return nil
	}
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	return ErrUnknown
}
