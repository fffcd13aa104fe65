package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstreamError  = errors.New("upstream error")
	ErrRateLimited    = errors.New("rate limited")
	ErrDecode         = errors.New("malformed response")

	// ErrLoginRequired marks a guard condition: the action needs a token
	// and none is set. Stores never return it from their own actions; the
	// storefront server uses it to translate a missing session into a 401.
	ErrLoginRequired = errors.New("login required")
)

// APIError is the error returned for any failed call to the remote API.
// Message carries the user-facing text shown in notifications.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for rejected input.
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        ErrInvalidRequest,
	}
}

// NewUnauthorizedError creates a 401 error for auth failures.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrUnauthorized,
	}
}

// NewUpstreamError creates a 502 error for transport failures and
// unexpected statuses from the remote API.
func NewUpstreamError(message string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        wrapCause(ErrUpstreamError, err),
	}
}

// NewDecodeError creates a 502 error for bodies that fail to parse.
func NewDecodeError(message string, err error) *APIError {
	return &APIError{
		Code:       "DECODE_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        wrapCause(ErrDecode, err),
	}
}

// NewRateLimitError creates a 429 error for rate limiting.
func NewRateLimitError(message string) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Err:        ErrRateLimited,
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// wrapCause chains sentinel and cause so errors.Is matches either.
func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// UserMessage returns the text to show the user for err, falling back to
// fallback when err carries no message of its own.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
