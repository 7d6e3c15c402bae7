package mailchimp

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrEmptyAPIKey indicates the client was constructed without an API key
	ErrEmptyAPIKey = errors.New("mailchimp API key cannot be empty")
	// ErrInvalidAPIKey indicates the key carries no datacenter suffix
	ErrInvalidAPIKey = errors.New("mailchimp API key has no datacenter suffix")
	// ErrUnauthorized indicates the API rejected the key during construction
	ErrUnauthorized = errors.New("unauthorized: invalid mailchimp API key")
	// ErrMissingContext indicates an identifier was omitted and none was stored
	ErrMissingContext = errors.New("missing context")
	// ErrTransport indicates no usable response was received
	ErrTransport = errors.New("transport failure")
)

// MissingContextError is returned when an operation needs a list, campaign
// or email that was neither passed nor set by an earlier call.
type MissingContextError struct {
	Kind Kind
}

// Error implements the error interface
func (e *MissingContextError) Error() string {
	return fmt.Sprintf("no %s provided", e.Kind)
}

// Is reports whether target is ErrMissingContext
func (e *MissingContextError) Is(target error) bool {
	return target == ErrMissingContext
}

// TransportError wraps a connection, timeout or decode failure.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("mailchimp %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIError represents an error envelope converted into a Go error
type APIError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mailchimp API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mailchimp error: %s: %s", e.Code, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
