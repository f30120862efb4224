// Package errors defines the coded errors shared by the pipeline, the CLI
// and the HTTP API.
//
// Every [Error] carries a [Code] that callers branch on and a message that
// can be shown to users as is:
//
//   - INVALID_*: rejected options, flags or request parameters
//   - PARSE_ERROR: a flow document that could not be decoded
//   - START_NOT_DEFINED, UNRESOLVED_TARGET: a malformed flow graph
//   - GIT_ERROR, FILE_NOT_FOUND: a source that could not be read
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// Parse and structural errors describe the document itself, so the pipeline
// fails the file and never retries them.
//
//	err := errors.New(errors.ErrCodeUnresolvedTarget, "could not find connected node for %s", name)
//	if errors.IsStructural(err) {
//	    // skip the file
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidTool       Code = "INVALID_TOOL"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidOutputName Code = "INVALID_OUTPUT_NAME"


	ErrCodeParse            Code = "PARSE_ERROR"
	ErrCodeStartNotDefined  Code = "START_NOT_DEFINED"
	ErrCodeUnresolvedTarget Code = "UNRESOLVED_TARGET"


	ErrCodeGit          Code = "GIT_ERROR"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"


	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// structuralCodes are the codes describing a malformed flow graph.
var structuralCodes = map[Code]bool{
	ErrCodeStartNotDefined:  true,
	ErrCodeUnresolvedTarget: true,
}

// Error pairs a code with a user-facing message and an optional cause.
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

// IsStructural reports whether err describes a structurally invalid flow
// (missing start element or a connector pointing at an unknown node).
func IsStructural(err error) bool {
	return structuralCodes[GetCode(err)]
}

// IsParse reports whether err is a document decoding failure.
func IsParse(err error) bool {
	return Is(err, ErrCodeParse)
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

// ValidationError collects every problem found while validating a set of
// options so they can be reported together.
type ValidationError struct {
	Problems []string
}

// validationHeader introduces the list of problems in Error.
const validationHeader = "The following errors were encountered:"

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := validationHeader
	for _, p := range e.Problems {
		msg += "\n- " + p
	}
	return msg
}

// Add records a problem.
func (e *ValidationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// ErrOrNil returns e when at least one problem was recorded and nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Code returns the error code for this error type.
func (e *ValidationError) Code() Code {
	return ErrCodeInvalidInput
}
