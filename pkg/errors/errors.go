// Package errors provides structured error types for the kintree engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - UNSUPPORTED_*: Requests the engine refuses before computing
//   - INTERNAL_*: Unexpected internal errors
//
// # Warnings
//
// Some conditions (such as a traversal depth exceeding the safety ceiling)
// are not fatal. They are expressed as [Warning] values attached to results
// rather than returned as errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePersonNotFound, "person %q not in store", id)
//	if errors.Is(err, errors.ErrCodePersonNotFound) {
//	    // Handle missing root
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "layout %s", chart)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidChart Code = "INVALID_CHART"
	ErrCodeInvalidPage  Code = "INVALID_PAGE"
	ErrCodeInvalidStore Code = "INVALID_STORE"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodePersonNotFound Code = "PERSON_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Configuration the engine refuses up front
	ErrCodeUnsupportedConfiguration Code = "UNSUPPORTED_CONFIGURATION"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Warning codes for non-fatal conditions attached to results.
const (
	// WarnCodeDepthClamped indicates a requested traversal depth exceeded
	// the safety ceiling and was silently reduced.
	WarnCodeDepthClamped Code = "DEPTH_CLAMPED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Warning is a non-fatal condition attached to a result.
// Unlike Error, a Warning never aborts a request.
type Warning struct {
	Code    Code   `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

// Warnf creates a Warning with a formatted message.
func Warnf(code Code, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

// String returns the warning in "CODE: message" form.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
