// Package errors provides structured error types for waitgraph.
//
// The analysis engine itself never fails; errors arise at the edges: reading
// graph files, decoding request bodies, talking to cache and store backends.
// Coded errors let the CLI print a friendly message and the HTTP API pick a
// status code without string matching.
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: missing files or records
//   - UNSUPPORTED, INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// HTTPStatus maps an error to the status code the API responds with.
// Uncoded errors are treated as internal.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidID:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
