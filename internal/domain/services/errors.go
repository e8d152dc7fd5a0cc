package services

import (
	"errors"
	"fmt"

	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrJobNotFound     = errors.New("job not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports malformed or semantically invalid input. Field names
// the offending input so handlers can surface it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidStateError reports an operation that is well-formed but illegal for
// the entity's current status, such as attaching a pending file.
type InvalidStateError struct {
	Operation string
	Status    models.FileStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while file is %s", e.Operation, e.Status)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}
