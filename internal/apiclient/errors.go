package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from a backend, carrying the server's message.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// ShapeError is a 2xx response whose body is not the expected JSON shape.
type ShapeError struct {
	Path  string
	Cause error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape from %s: %v", e.Path, e.Cause)
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}

// TransportError wraps failures that happen before a response is read.
type TransportError struct {
	Path    string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request to %s failed: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("request to %s failed: %s", e.Path, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthError reports whether err is a 401 or 403 from a backend.
func IsAuthError(err error) bool {
	status := StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
