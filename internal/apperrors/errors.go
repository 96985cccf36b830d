package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that forbids the requested change.
var ErrConflict = errors.New("resource state conflict")

// ErrLockTimeout indicates that exclusive access to a resource could not be
// obtained within the bounded wait. It is the only error class that is safe
// to retry blindly.
var ErrLockTimeout = errors.New("timed out waiting for resource lock")

// ErrInternal indicates an unexpected failure inside the application.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with an application status code and
// message. Repositories use it to surface storage failures without leaking
// driver details into the services layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
