package status

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("session: not authenticated")
	ErrNotFound        = errors.New("api: not found")
	ErrSoldOut         = errors.New("tickets: sold out")
)

// ValidationError is a client-side rejection: the request was never sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// APIError carries the backend's error message verbatim, together with
// the HTTP status code it arrived with.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
	}
	return e.Message
}

// IsConflict reports whether err is a server-reported business conflict
// (sold out, not your ticket, already resold).
func IsConflict(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode == 400 || ae.StatusCode == 403 || ae.StatusCode == 409
	}
	return errors.Is(err, ErrSoldOut)
}

// NetworkError wraps a transport failure: the request never reached the
// backend or no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
