package prediction

import (
	"errors"
)

// ErrValidation is the sentinel kind for client-side range checks.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first field that failed client-side checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}
