package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
)

// Error is the body of every failed request:
//
//	{"error": {"code": "not_found", "message": "..."}}
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error Error `json:"error"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeNoChange    = "no_change"
	ErrCodeNotPossible = "not_possible"
	ErrCodeOutOfRange  = "out_of_range"
	ErrCodeWrongFormat = "wrong_format"
	ErrCodeUnknownKind = "unknown_kind"
	ErrCodeUnavailable = "unavailable"
	ErrCodeBadGateway  = "bad_gateway"
	ErrCodeInternal    = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: Error{Code: code, Message: message}})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeUnavailable writes a 503 error response.
func writeUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// writeAudioError maps a controller error to a response.
func writeAudioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, audio.ErrNonExistent):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, audio.ErrAlreadyExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, audio.ErrNoChange):
		writeError(w, http.StatusConflict, ErrCodeNoChange, err.Error())
	case errors.Is(err, audio.ErrNotPossible):
		writeError(w, http.StatusConflict, ErrCodeNotPossible, err.Error())
	case errors.Is(err, audio.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, ErrCodeOutOfRange, err.Error())
	case errors.Is(err, audio.ErrWrongFormat):
		writeError(w, http.StatusBadRequest, ErrCodeWrongFormat, err.Error())
	case errors.Is(err, audio.ErrCommunication), errors.Is(err, audio.ErrTimeout):
		writeError(w, http.StatusBadGateway, ErrCodeBadGateway, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
