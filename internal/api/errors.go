package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for any non-2xx response from the StackIt API.
type Error struct {
	Method string
	Path   string
	Status int

	// Message is the server-supplied "message" field, if any.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *Error) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// AsError unwraps err into an *Error if it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// MessageOf returns the server-supplied message carried by err, or
// fallback when err is not an API error or the server sent no message.
func MessageOf(err error, fallback string) string {
	apiErr, ok := AsError(err)
	if !ok || apiErr.Message == "" {
		return fallback
	}
	return apiErr.Message
}
