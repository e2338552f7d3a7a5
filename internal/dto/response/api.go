// Package response holds the envelope written for failed requests. Successful
// calls return their result as the bare JSON body.
package response

import (
	"time"

	apperrors "github.com/jrjohn/outreach-api/pkg/errors"
)

// ErrorResponse is the body of every non-2xx HTTP response
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Errors    any       `json:"errors,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FromAppError renders appErr for the client. The wrapped cause stays
// server-side.
func FromAppError(appErr *apperrors.AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Errors:    appErr.Details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}
