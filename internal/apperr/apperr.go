// Package apperr holds the error kinds shared by every layer of the API.
// Services wrap one of the sentinels with context; the HTTP layer maps the
// sentinel to a status code with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrThrottled        = errors.New("request was throttled")
	ErrTransaction      = errors.New("transaction failed")
)

// Validationf returns an ErrValidation carrying a formatted reason.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound for the named resource ("order not found").
func NotFound(resource string) error {
	return &kindError{kind: ErrNotFound, msg: resource + " not found"}
}

// Conflictf returns an ErrConflict carrying a formatted reason.
func Conflictf(format string, args ...any) error {
	return &kindError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Transaction wraps cause as an ErrTransaction. The cause stays reachable
// through errors.Is/As but is not part of the message shown to clients.
func Transaction(op string, cause error) error {
	return &kindError{kind: ErrTransaction, msg: op + " failed", cause: cause}
}

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Cause returns the underlying error of a Transaction error, or err itself.
func Cause(err error) error {
	var ke *kindError
	if errors.As(err, &ke) && ke.cause != nil {
		return ke.cause
	}
	return err
}
