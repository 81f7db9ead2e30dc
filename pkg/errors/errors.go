// Package errors provides structured error types for comicstrip.
//
// Two classes of failure flow through the layout core:
//
//   - INVALID_*: malformed input (missing transcript fields, a subject
//     rectangle outside its image, non-monotonic utterance timing). These
//     are returned to the caller and identify the offending record.
//   - INVARIANT_VIOLATION: a broken precondition inside an algorithm, such
//     as a panel that cannot fit a freshly opened empty shelf. These abort
//     the page; a dropped panel would desynchronize segments from panels.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "page width must be positive, got %v", w)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Identify the offending record
//	err := errors.AtRecord(errors.ErrCodeInvalidTranscript, 3, "end %v before start %v", end, start)
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidTranscript Code = "INVALID_TRANSCRIPT"
	ErrCodeInvalidPanel      Code = "INVALID_PANEL"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle      Code = "INVALID_STYLE"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInvariant   Code = "INVARIANT_VIOLATION"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// NoRecord marks an error that is not tied to a specific input record.
const NoRecord = -1

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Record  int    // Index of the offending input record, or NoRecord
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Record != NoRecord {
		msg = fmt.Sprintf("record %d: %s", e.Record, e.Message)
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

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Record:  NoRecord,
	}
}

// AtRecord creates a new Error pointing at the input record with index i.
func AtRecord(code Code, i int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Record:  i,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Record:  NoRecord,
		Cause:   cause,
	}
}

// Invariant reports a broken internal precondition. Callers must abort the
// current page rather than skip the affected item.
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeInvariant, format, args...)
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

// RecordOf returns the offending record index carried by err, or NoRecord.
func RecordOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Record
	}
	return NoRecord
}

// IsInputError reports whether err is a rejected-input error, as opposed to
// an internal failure.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidTranscript, ErrCodeInvalidPanel,
		ErrCodeInvalidFormat, ErrCodeInvalidStyle, ErrCodeFileNotFound:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Record != NoRecord {
			return fmt.Sprintf("record %d: %s", e.Record, e.Message)
		}
		return e.Message
	}
	return err.Error()
}
