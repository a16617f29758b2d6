package core

import "github.com/pkg/errors"

// FieldError attaches a message to the offending struct field, keyed by its
// JSON name so the API can return it as-is.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries a request-level error and/or per-field errors raised
// by domain services outside of validator.Struct checks (e.g. uniqueness).
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

// shutdown signals an unrecoverable state; the server should stop serving.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error { return &shutdown{message: msg} }

func (s shutdown) Error() string { return s.message }

// IsShutdown checks whether a shutdown error lurks in err's cause chain.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
