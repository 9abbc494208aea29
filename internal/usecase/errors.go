package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrDataIntegrity         = errors.New("data integrity violation")
	ErrConflict              = errors.New("conflict")
)

// TransportError is a failed provider request. StatusCode is zero when no
// response was received.
type TransportError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("provider request failed url=%s", e.URL)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("provider request failed status=%d url=%s", e.StatusCode, e.URL)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrDependencyUnavailable}
	}
	return []error{ErrDependencyUnavailable, e.Err}
}
