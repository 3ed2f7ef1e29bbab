// Package apperr defines the error kinds handlers and services report to callers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Unauthorized
	Forbidden
	LimitExceeded
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case LimitExceeded:
		return "limit_exceeded"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a user-visible message. Err is the cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args []any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return newf(Validation, format, args)
}

func NotFoundf(format string, args ...any) *Error {
	return newf(NotFound, format, args)
}

func Unauthorizedf(format string, args ...any) *Error {
	return newf(Unauthorized, format, args)
}

func Forbiddenf(format string, args ...any) *Error {
	return newf(Forbidden, format, args)
}

func LimitExceededf(format string, args ...any) *Error {
	return newf(LimitExceeded, format, args)
}

func Conflictf(format string, args ...any) *Error {
	return newf(Conflict, format, args)
}

// Wrap reports a collaborator failure as Internal with msg as the public message.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
