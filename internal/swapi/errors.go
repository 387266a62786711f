package swapi

import (
	"errors"
	"fmt"
)

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("swapi rate limit exceeded")

// ServerError represents a 5xx error from the GraphQL endpoint
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("swapi server error: HTTP %d", e.StatusCode)
}

// NetworkError is a transient connectivity failure; the same request may
// succeed later.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("swapi network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError is a malformed or unexpected response.
type ProtocolError struct {
	Msg string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("swapi protocol error: %s: %v", e.Msg, e.Err)
	}
	return "swapi protocol error: " + e.Msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
