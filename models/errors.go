package models

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrNotFound      = errors.New("not found")
	ErrTransport     = errors.New("transport error")
	ErrConflict      = errors.New("conflict")
	ErrConfiguration = errors.New("configuration error")
	ErrClone         = errors.New("clone error")
	ErrRemote        = errors.New("remote error")
	ErrPush          = errors.New("push error")
	ErrValidation    = errors.New("validation error")

	// ErrWebhookExists also matches ErrConflict.
	ErrWebhookExists = &kindError{msg: "webhook already exists", parent: ErrConflict}
)

type kindError struct {
	msg    string
	parent error
}

func (k *kindError) Error() string { return k.msg }
func (k *kindError) Unwrap() error { return k.parent }

// Error carries the failed operation and the name of the thing it targeted.
type Error struct {
	Op     string // e.g. "fetch group", "push"
	Target string // group, project, repository or ref name
	Kind   error  // one of the Err* kinds above
	Err    error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError is shorthand for &Error{...}.
func NewError(op, target string, kind, err error) *Error {
	return &Error{Op: op, Target: target, Kind: kind, Err: err}
}

// KindOf returns the first known kind matched by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{
		ErrWebhookExists, ErrNotFound, ErrConflict, ErrTransport, ErrConfiguration,
		ErrClone, ErrRemote, ErrPush, ErrValidation,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
