package errors

import (
	"errors"
	"fmt"
)

// Common error types for the broker client
var (
	// Token errors
	ErrDecodeFailure = errors.New("token decode failure")

	// Transport errors
	ErrRequestTimeout     = errors.New("request timeout")
	ErrNetworkUnavailable = errors.New("network unavailable")

	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoCredential         = errors.New("no stored credential")
	ErrNoRefreshToken       = errors.New("no refresh token available")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// APIError represents a non-2xx HTTP response from the backend. The message
// prefers a server-supplied "message" or "error" field and falls back to
// "HTTP <status>".
type APIError struct {
	StatusCode int
	Message    string
	RawBody    []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError builds an APIError, defaulting the message from the status code
// when the server supplied none.
func NewAPIError(statusCode int, message string, rawBody []byte) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		RawBody:    rawBody,
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
