package services

import (
	"errors"
	"fmt"

	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is the only error type services return to handlers. Message is safe
// to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found", Err: database.ErrNotFound}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func permissionDenied() error {
	return &Error{Kind: KindPermission, Message: authz.ErrPermissionDenied.Error(), Err: authz.ErrPermissionDenied}
}

// classify turns any error into an *Error. Database failures keep the
// driver's message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, authz.ErrPermissionDenied):
		return permissionDenied()
	case errors.Is(err, authz.ErrLastOwner):
		return &Error{Kind: KindConflict, Message: authz.ErrLastOwner.Error(), Err: err}
	case errors.Is(err, database.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "not found", Err: err}
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

// KindOf reports the kind of a service error; plain errors are internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Message is the user-facing text for err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
