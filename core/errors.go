package core

import "github.com/pkg/errors"

// FieldError reports a validation failure on one request field, keyed by the
// field's JSON name.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is the error the HTTP layer renders as a 400: an optional
// root cause plus the per-field messages collected while validating a payload.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable service state; the server begins a
// graceful shutdown when it catches one.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks whether a shutdown error is hiding anywhere in err's chain.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
