// Package apperr defines the typed API errors returned by services and the
// single place where they are mapped to HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// DefaultCode is used when an error carries no machine-readable code
const DefaultCode = "UNKNOWN_ERROR"

// Error is a domain error with an HTTP status and machine-readable code
type Error struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// WithCode returns a copy of the error carrying the given code
func (e *Error) WithCode(code string) *Error {
	return &Error{Status: e.Status, Code: code, Message: e.Message}
}

// BadRequest creates a 400 error: malformed input or business-rule conflict
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized creates a 401 error: missing or invalid credentials
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden creates a 403 error: authenticated but insufficient role
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound creates a 404 error: referenced entity absent
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Internal creates a 500 error: unexpected or storage failure
func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}

// response is the uniform error body shape
type response struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	ErrorCode string `json:"errorCode"`
}

// Write maps an error to the uniform JSON error body. Typed errors keep
// their status, message and code; anything else becomes a generic 500
// without leaking internals.
func Write(w http.ResponseWriter, logger *slog.Logger, err error) {
	resp := response{
		Status:    http.StatusInternalServerError,
		Message:   "Internal Server Error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ErrorCode: DefaultCode,
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		resp.Status = apiErr.Status
		resp.Message = apiErr.Message
		if apiErr.Code != "" {
			resp.ErrorCode = apiErr.Code
		}
	} else {
		logger.Error("unexpected error", slog.Any("error", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
