package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound signals an unknown or already unmounted search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidRecord signals a record that fails boundary validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidQuery signals a query that fails validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidFilter signals a malformed filter option.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnknownScreen signals a screen name with no registered preset.
	ErrUnknownScreen = errors.New("unknown screen")
	// ErrUnknownCategory signals a filter category the screen does not offer.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSessionLimit signals that no more sessions can be mounted.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrSessionClosed signals an operation on a session after unmount.
	ErrSessionClosed = errors.New("session closed")
)

// RecordError wraps ErrInvalidRecord with the offending record ID and reason.
type RecordError struct {
	ID     string
	Reason string
}

func (e *RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRecord.Error(), e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidRecord.Error(), e.ID, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// NewRecordError creates a record validation error.
func NewRecordError(id, reason string) error {
	return &RecordError{ID: id, Reason: reason}
}
