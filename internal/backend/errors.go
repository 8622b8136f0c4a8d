package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for 401 responses; handlers turn it into the
	// login redirect envelope.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("backend: not found")
)

// StatusError carries a non-2xx backend response outside the mapped cases.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// statusToError maps a response status to the client error taxonomy.
func statusToError(status int, message string) error {
	switch status {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	default:
		return &StatusError{Status: status, Message: message}
	}
}
