// Package errors provides structured error types for graphmorph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the preview server and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure in the layout pipeline is fatal to the run. The codes tell
// callers which stage rejected the input:
//   - VALIDATION: malformed or inconsistent input (unknown node, duplicate edge)
//   - MISSING_COORDINATE: a layout table cannot resolve a node or edge endpoint
//   - UNSUPPORTED_LAYOUT: a requested layout name has no algorithm
//   - INVALID_*: option and format validation
//   - INTERNAL_ERROR: unexpected failures in collaborators (Graphviz, encoders)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	var missing *errors.MissingCoordinateError
//	if stderrors.As(err, &missing) {
//	    fmt.Println(missing.EdgeID, missing.Layout)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline errors
	ErrCodeValidation        Code = "VALIDATION"
	ErrCodeMissingCoordinate Code = "MISSING_COORDINATE"
	ErrCodeUnsupportedLayout Code = "UNSUPPORTED_LAYOUT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// coder is implemented by the typed errors in this package.
type coder interface {
	Code() Code
}

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
// It unwraps the error chain looking for an *Error with a matching code,
// or for one of the typed errors of this package.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// The outermost coded error in the chain wins.
// Returns empty string if the chain carries no code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
