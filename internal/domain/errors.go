package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing profile field")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDoseNotFound = errors.New("daily dose not found")
	ErrUpstream     = errors.New("nightscout request failed")
	ErrInvalidRange = errors.New("invalid date range")
	ErrHistoryOff   = errors.New("dose history is not configured")
)

// MissingFieldError reports a profile field that the dose calculation cannot do without.
// It matches ErrMissingField with errors.Is.
type MissingFieldError struct {
	Field string
}

func NewMissingFieldError(field string) *MissingFieldError {
	return &MissingFieldError{Field: field}
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField.Error(), e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
