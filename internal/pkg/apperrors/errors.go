package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrStore covers any failure of the underlying document store
	ErrStore = errors.New("store error")
)

// Student errors
var (
	ErrMissingRequiredField = fmt.Errorf("missing required field: %w", ErrValidationFailed)
	ErrStudentNotFound      = fmt.Errorf("student not found: %w", ErrResourceNotFound)
	ErrDuplicateConflict    = fmt.Errorf("duplicate student: %w", ErrConflict)
)

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewMissingFieldError reports a required field that is absent after cleaning
func NewMissingFieldError(field, message string) error {
	return &CustomError{
		Err:     ErrMissingRequiredField,
		Message: message,
		Field:   field,
	}
}

// NewStudentNotFoundError reports a student lookup that found nothing
func NewStudentNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrStudentNotFound,
		Message: message,
	}
}

// NewDuplicateError reports a roll number or registration number collision
func NewDuplicateError(field, message string) error {
	return &CustomError{
		Err:     ErrDuplicateConflict,
		Message: message,
		Field:   field,
	}
}

// NewStoreError wraps a document store failure
func NewStoreError(op string, err error) error {
	return &CustomError{
		Err:     ErrStore,
		Message: fmt.Sprintf("%s failed", op),
		Cause:   err,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
	// Cause is the underlying failure. It is logged but never shown to clients.
	Cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// PublicMessage returns the message safe to show to API clients
func PublicMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}

// FieldOf returns the field a CustomError refers to, if any
func FieldOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
