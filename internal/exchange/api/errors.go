package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrUnexpectedResponse marks an HTTP-success whose body is missing an
	// expected field. Shape problems are failures, never degraded successes.
	ErrUnexpectedResponse = errors.New("unexpected response format")
)

// APIError provides detailed context for a failed request
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewError builds an APIError and wires the sentinel matching the status
// code, so errors.Is works across package boundaries.
func NewError(endpoint string, statusCode int, message string) *APIError {
	e := &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
	switch statusCode {
	case 401:
		e.cause = ErrUnauthorized
	case 503:
		e.cause = ErrServiceUnavailable
	}
	return e
}
