// Package errors defines the error type every transport renders for a failed
// request.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API clients
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// AppError carries a client-facing code and message, the HTTP status a
// transport should use, and optionally structured details and the cause.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e caused by err
func (e *AppError) Wrap(err error) *AppError {
	wrapped := *e
	wrapped.Err = err
	return &wrapped
}

// Validation reports rejected input. details lists the individual violations.
func Validation(details any) *AppError {
	return &AppError{Code: CodeValidationError, Message: "validation failed", Details: details, Status: http.StatusBadRequest}
}

// BadRequest reports a request that could not be read at all
func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

// Conflict reports a write rejected by a store constraint
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

// Unavailable reports that a backing store cannot be reached
func Unavailable(message string) *AppError {
	return &AppError{Code: CodeServiceUnavailable, Message: message, Status: http.StatusServiceUnavailable}
}

// Internal reports an unexpected failure. The cause is never shown to clients.
func Internal() *AppError {
	return &AppError{Code: CodeInternalError, Message: "internal server error", Status: http.StatusInternalServerError}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with code
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// StatusOf returns the HTTP status for err, defaulting to 500
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
