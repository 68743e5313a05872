// Package response provides the JSON response helpers for the FleetSync API.
// Every endpoint answers with a flat envelope carrying a success flag plus
// operation-specific counters or data.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// Envelope is one response body. Helpers add the "success" key.
type Envelope map[string]any

// JSON writes an envelope with the given status code. Encoding errors are
// ignored; headers are already sent.
func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a successful response, merging fields into the envelope.
func OK(w http.ResponseWriter, fields Envelope) {
	body := Envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Data writes a successful response with a single data payload.
func Data(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{"success": true, "data": data})
}

// Fail writes an error response with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{"success": false, "error": message})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message)
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Fail(w, http.StatusMethodNotAllowed, "method not allowed: "+method)
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, message string) {
	Fail(w, http.StatusConflict, message)
}

// InternalError writes a 500 error response without leaking details.
func InternalError(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, "internal server error")
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	Fail(w, http.StatusServiceUnavailable, message)
}

// FromError maps a typed error to the matching HTTP response. Lock
// contention is the distinct "already running" outcome.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsLocked(err):
		Conflict(w, "job already running")
	case errors.IsValidation(err):
		BadRequest(w, err.Error())
	case errors.IsNotFound(err):
		NotFound(w, err.Error())
	default:
		InternalError(w)
	}
}
