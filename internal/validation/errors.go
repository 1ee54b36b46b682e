package validation

import (
	"errors"
)

var (
	// ErrInvalid marks input the caller has to correct.
	ErrInvalid = errors.New("invalid input")
	// ErrDuplicate marks a value colliding with an existing record.
	ErrDuplicate = errors.New("already exists")
)

// FieldError is a client error attributable to one payload field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func Invalid(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Err: ErrInvalid}
}

func Duplicate(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Err: ErrDuplicate}
}
