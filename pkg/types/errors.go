package types

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of formula compilation or evaluation failure.
type ErrorCode string

// Error codes, grouped by pipeline stage.
const (
	// F01xx: lexical errors
	ErrBadCharacter ErrorCode = "F0101"
	ErrBadNumber    ErrorCode = "F0102"

	// F02xx: syntax errors
	ErrSyntax             ErrorCode = "F0201"
	ErrExpectedToken      ErrorCode = "F0202"
	ErrMissingTilde       ErrorCode = "F0203"
	ErrEmptyTerms         ErrorCode = "F0204"
	ErrNonLiteralExponent ErrorCode = "F0205"
	ErrBadResponse        ErrorCode = "F0206"

	// F03xx: expansion errors
	ErrUnknownTransform ErrorCode = "F0301"
	ErrBadPolyDegree    ErrorCode = "F0302"
	ErrBadArgument      ErrorCode = "F0303"

	// F04xx: data/evaluation errors
	ErrColumnNotFound  ErrorCode = "F0401"
	ErrTransformDomain ErrorCode = "F0402"
	ErrEmptyFormula    ErrorCode = "F0403"
	ErrColumnKind      ErrorCode = "F0404"
	ErrLengthMismatch  ErrorCode = "F0405"
)

// Error represents a structured formula error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new formula error. Pass a negative position when the
// failure has no location in the source string.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds the offending source token to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// codeOf extracts the ErrorCode from err, or "" if err is not an *Error.
func codeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsLexError reports whether err is a lexical error (bad character or
// malformed number literal).
func IsLexError(err error) bool {
	switch codeOf(err) {
	case ErrBadCharacter, ErrBadNumber:
		return true
	}
	return false
}

// IsSyntaxError reports whether err is a grammar violation.
func IsSyntaxError(err error) bool {
	switch codeOf(err) {
	case ErrSyntax, ErrExpectedToken, ErrMissingTilde, ErrEmptyTerms,
		ErrNonLiteralExponent, ErrBadResponse:
		return true
	}
	return false
}

// IsUnknownTransform reports whether err names an unregistered transform.
func IsUnknownTransform(err error) bool {
	return codeOf(err) == ErrUnknownTransform
}

// IsColumnNotFound reports whether err names a variable absent from the
// data source.
func IsColumnNotFound(err error) bool {
	return codeOf(err) == ErrColumnNotFound
}

// IsTransformDomain reports whether err is a math domain violation.
func IsTransformDomain(err error) bool {
	return codeOf(err) == ErrTransformDomain
}

// IsEmptyFormula reports whether err indicates a formula with no terms and
// no intercept.
func IsEmptyFormula(err error) bool {
	return codeOf(err) == ErrEmptyFormula
}
