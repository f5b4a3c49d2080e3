package booking

import (
	"errors"
	"fmt"
)

// ErrSlotTaken reports that a confirmed booking already holds the requested
// tutor/date/time. Callers are expected to re-fetch availability and retry
// with another slot; the service never retries on their behalf.
var ErrSlotTaken = errors.New("this time slot is already booked")

// ValidationError reports a malformed or missing booking request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request: %s %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
