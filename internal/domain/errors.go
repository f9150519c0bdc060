package domain

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyVerified = errors.New("donation already verified")
	ErrStore           = errors.New("store failure")
	ErrUpload          = errors.New("upload failure")
)

// ValidationError carries a user-facing message alongside ErrValidation so
// handlers can surface it inline on the submission form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a ValidationError from a plain message.
func Validationf(msg string) error {
	return &ValidationError{Message: msg}
}
