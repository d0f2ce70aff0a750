// Package domainerrors carries the error taxonomy shared by every asset
// service. Services fail fast with one of these codes and perform zero
// writes; the transport layer maps codes to HTTP statuses.
package domainerrors

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnauthorized means the caller lacks the role a transition requires.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeNotFound means an id lookup missed.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInsufficientFunds means a holder balance is too low for the
	// requested redemption, retirement, or transfer.
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	// CodeCapacityExceeded means the arithmetic would drive a capacity
	// field negative or overflow it.
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	// CodeNotInitialized means the singleton aggregate is missing. Should be
	// unreachable after instantiation.
	CodeNotInitialized Code = "NOT_INITIALIZED"
	// CodeValidation means the input failed structural validation.
	CodeValidation Code = "VALIDATION"
	// CodeConflict means a uniqueness or state conflict.
	CodeConflict Code = "CONFLICT"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "INTERNAL"
)

// Error pairs a code with a human-readable message. It is the terminal
// result of a failed operation; nothing retries internally.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err is a domain error carrying code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
