// Package apperr defines the error taxonomy shared by every service.
//
// Five kinds cover the whole surface:
//
//	Validation    malformed or missing input, rejected before any store access
//	NotFound      a referenced row does not exist
//	Conflict      the request contradicts current business state
//	Authorization the caller lacks the required role
//	Persistence   the store failed; details are logged, never surfaced
//
// Services return *apperr.Error; controllers map the kind to an HTTP status
// via response.AppError.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Validation Kind = iota
	NotFound
	Conflict
	Authorization
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Authorization:
		return "authorization"
	case Persistence:
		return "persistence"
	}
	return "unknown"
}

// Error carries the kind, an optional offending field, and a reason the
// caller can act on. For Persistence errors Reason is a safe placeholder;
// the wrapped cause stays internal.
type Error struct {
	Kind   Kind
	Field  string
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// ── Constructors ─────────────────────────────────────────────────────────────

func Validationf(field, format string, args ...any) *Error {
	return &Error{Kind: Validation, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Reason: fmt.Sprintf(format, args...)}
}

func Conflictf(field, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func Unauthorized(reason string) *Error {
	return &Error{Kind: Authorization, Reason: reason}
}

// Persistencef wraps a store-level failure. The formatted reason describes
// the operation, not the cause; cause is kept for logs via Unwrap.
func Persistencef(cause error, format string, args ...any) *Error {
	return &Error{Kind: Persistence, Reason: fmt.Sprintf(format, args...), cause: cause}
}

// ── Inspection ───────────────────────────────────────────────────────────────

// KindOf reports the kind of err, or (0, false) when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
