// Package errors augments the standard errors
// with sentinel errors that may wrap a cause,
// without resorting to fmt.Errorf("%w", err).
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New sentinel error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error is a sentinel error which may carry a nested cause.
//
// Wrapping returns a copy, so that package-level sentinels are never
// mutated when shared across goroutines.
type Error struct {
	msg    string
	err    error
	parent *Error
}

// Error message, including the nested cause when any
func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, parent: e.sentinel()}
}

// Wrapf wraps a formatted message as the nested error
func (e *Error) Wrapf(format string, args ...interface{}) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.sentinel() == t.sentinel()
}

func (e *Error) sentinel() *Error {
	if e.parent != nil {
		return e.parent
	}
	return e
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
