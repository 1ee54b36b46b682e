package service

import (
	"errors"

	"github.com/templui/showcase/internal/validation"
)

var (
	// ErrValidation matches every client input error, including FieldError.
	ErrValidation = validation.ErrInvalid
	// ErrDuplicate matches uniqueness violations on names, titles and slugs.
	ErrDuplicate = validation.ErrDuplicate

	ErrMediaInUse         = errors.New("media is still referenced")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// FieldError is a client error attributable to one payload field.
type FieldError = validation.FieldError
