package services

import (
	"fmt"

	"subhive/internal/store"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation"
	KindForbidden       ErrorKind = "forbidden"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindConflict        ErrorKind = "conflict"
)

// Error is a failure the caller can act on. Anything else returned by a
// service is an internal error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every NotFound failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "login required"}
	ErrConflict        = &Error{Kind: KindConflict}
)

func notFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// KindOf returns the kind of a service failure, or "" for internal errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// lookupErr maps a store point-lookup failure: ErrNotFound becomes a
// NotFound failure naming what, anything else is wrapped as internal.
func lookupErr(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(what)
	}
	return errors.Wrapf(err, "load %s", what)
}
