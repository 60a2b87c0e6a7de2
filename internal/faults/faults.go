// Package faults defines the error types used for expected business
// rejections. Callers branch on them with errors.As; the message is safe to
// surface verbatim. Storage and other unexpected failures are ordinary
// wrapped errors and are not represented here.
package faults

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError rejects references to unknown records before any mutation.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFound builds a NotFoundError.
func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError rejects an operation the current record state does not
// permit (claim already settled, account still referenced, insufficient
// balance for a deposit).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError.
func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// IsBusiness reports whether err is an expected business rejection rather
// than an infrastructure failure.
func IsBusiness(err error) bool {
	var v *ValidationError
	var n *NotFoundError
	var c *ConflictError
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &c)
}
