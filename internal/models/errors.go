package models

import (
	"errors"
	"fmt"
)

// Common error types
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicate          = errors.New("resource already exists")
	ErrNoChanges          = errors.New("no data changes found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLockedOut          = errors.New("too many failed login attempts")
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
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

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrDuplicateWithMsg creates a conflict error for uniqueness violations
func ErrDuplicateWithMsg(message string) error {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Err:     ErrDuplicate,
	}
}

// ErrNoChangesWithMsg creates an error for updates that request nothing new
func ErrNoChangesWithMsg(message string) error {
	return &AppError{
		Code:    "NO_CHANGES",
		Message: message,
		Err:     ErrNoChanges,
	}
}
