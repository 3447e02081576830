// Package errors provides structured error types for qrsheet.
//
// Every failure the pipeline can produce maps to exactly one [Code], so the
// CLI and the HTTP server can decide how to report it without string
// matching:
//
//   - INVALID_*: bad user input (range, configuration)
//   - ENCODING_CAPACITY: the QR encoder rejected a code
//   - LAYOUT_CONSTRAINT / GRID_OVERFLOW: canvas or page geometry does not fit
//   - RASTERIZATION: an SVG could not be turned into pixels
//   - PERSIST: writing a per-code file or cache entry failed
//   - EMPTY_DOCUMENT: nothing was generated
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRange, "start %d > end %d", start, end)
//	if errors.Is(err, errors.ErrCodeInvalidRange) {
//	    // usage error
//	}
//
//	// Attach the code being processed so users know where it failed
//	err = errors.Wrap(errors.ErrCodeRasterization, cause, "render unit").For("P0301")
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
	ErrCodeInvalidRange  Code = "INVALID_RANGE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidCode   Code = "INVALID_CODE"

	// Pipeline stage errors
	ErrCodeEncodingCapacity Code = "ENCODING_CAPACITY"
	ErrCodeLayoutConstraint Code = "LAYOUT_CONSTRAINT"
	ErrCodeGridOverflow     Code = "GRID_OVERFLOW"
	ErrCodeRasterization    Code = "RASTERIZATION"
	ErrCodePersist          Code = "PERSIST"
	ErrCodeEmptyDocument    Code = "EMPTY_DOCUMENT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Subject string // Code string or stage the error refers to (optional)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = e.Subject + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// For sets the subject (usually the code being processed) and returns e.
func (e *Error) For(subject string) *Error {
	e.Subject = subject
	return e
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

// GetSubject returns the subject of the first *Error in the chain that has one.
func GetSubject(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Subject != "" {
			return e.Subject
		}
		err = e.Cause
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (prefixed with the subject, and
// followed by the cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.Subject != "" {
		msg = e.Subject + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + UserMessage(e.Cause)
	}
	return msg
}

// WithSubject attaches subject to err when the outermost *Error has none.
// Errors that are not *Error, or already carry a subject, are returned
// unchanged.
func WithSubject(err error, subject string) error {
	e, ok := err.(*Error)
	if !ok || e.Subject != "" {
		return err
	}
	cp := *e
	cp.Subject = subject
	return &cp
}
