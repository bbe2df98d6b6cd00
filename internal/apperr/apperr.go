// Package apperr defines the error kinds services report to the HTTP
// boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for translation at the transport boundary.
type Kind int

const (
	// Internal covers unexpected and datastore failures.
	Internal Kind = iota
	// Validation marks malformed or missing client input.
	Validation
	// Auth marks a missing, invalid or expired credential.
	Auth
	// Conflict marks a duplicate unique key.
	Conflict
	// NotFound marks a resource that is absent or not owned by the caller.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a client-safe message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "server error"
}
