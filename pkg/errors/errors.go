// Package errors carries the coded errors shared by the layout engine, the
// pipeline, the CLI and the HTTP API.
//
// Every failure the engine can report maps to one [Code]. The CLI turns
// codes into exit statuses and the server turns them into HTTP statuses, so
// callers branch on [Is] or [GetCode] rather than on message text.
//
// # Codes
//
//   - INVALID_INPUT, INVALID_CATALOG, INVALID_VIEWPORT, INVALID_CONFIG:
//     the request, catalog file or settings are malformed.
//   - EMPTY_CATALOG: a header or hero module is missing, so no layout can
//     be built. This is the only fatal code; see [IsFatal].
//   - NOT_FOUND: a module id, catalog file or layout file does not exist.
//   - UNSUPPORTED and INTERNAL_ERROR: everything else.
//
// # Usage
//
//	seq, err := engine.Generate(cat, score.ViewportWide, &seed)
//	if errors.IsFatal(err) {
//	    // seq is the partial layout built before the missing module
//	}
//
//	return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable failure class.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidCatalog  Code = "INVALID_CATALOG"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeEmptyCatalog Code = "EMPTY_CATALOG"

	ErrCodeNotFound Code = "NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded engine error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" with the cause appended when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches code and a message to cause. The cause stays reachable
// through errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// for uncoded errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the text shown to CLI users and API clients: the
// message of the outermost *Error without its code, or err.Error() for
// uncoded errors. A nil error gives "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err aborts layout generation. Only an empty
// catalog for a structurally mandatory type is fatal.
func IsFatal(err error) bool {
	return Is(err, ErrCodeEmptyCatalog)
}
