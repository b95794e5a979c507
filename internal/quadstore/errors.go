package quadstore

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates a quad or pattern failed the term position rules.
	// No storage call was made.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConnection indicates the backing collection could not be established.
	ErrCodeConnection ErrorCode = "CONNECTION"

	// ErrCodeStorage indicates the backing collection rejected or failed an operation.
	ErrCodeStorage ErrorCode = "STORAGE"
)

// Error is returned by every Store operation that fails.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the store operation (add, delete, match, ...).
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsConnectionError returns true if err is a connection error.
// Uses errors.As to handle wrapped errors.
func IsConnectionError(err error) bool {
	return hasCode(err, ErrCodeConnection)
}

// IsStorageError returns true if err is a storage error.
// Uses errors.As to handle wrapped errors.
func IsStorageError(err error) bool {
	return hasCode(err, ErrCodeStorage)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func newValidationError(op, message string) *Error {
	return &Error{Code: ErrCodeValidation, Op: op, Message: message}
}

func newConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Op: "connect", Message: "cannot reach backing collection", Err: err}
}

func newStorageError(op string, err error) *Error {
	return &Error{Code: ErrCodeStorage, Op: op, Message: "backing collection failed", Err: err}
}
