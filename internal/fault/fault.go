// Package fault defines the structured error kinds returned by mnemo
// operations. Callers can branch on the kind or report the message
// verbatim; no operation panics or raises an uncatchable failure.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	// KindNotFound means a referenced node, edge, or experience does not
	// exist or is soft-deleted.
	KindNotFound Kind = "not_found"
	// KindInvalidArgument means a malformed enum value, an out-of-range
	// weight/limit/depth, or a missing required field.
	KindInvalidArgument Kind = "invalid_argument"
	// KindConflict means a write collided with existing state on an
	// operation with strict (non-overwrite) semantics.
	KindConflict Kind = "conflict"
	// KindStoreFailure means the persistent store rejected a transaction.
	// It is surfaced unchanged and never silently retried.
	KindStoreFailure Kind = "store_failure"
)

// Error pairs a Kind with a human-readable message. It wraps an
// underlying cause when one exists.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument builds a KindInvalidArgument error.
func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps an error from the persistent store.
func StoreFailure(err error, format string, args ...any) error {
	return &Error{Kind: KindStoreFailure, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind carried by err, or the empty string when err
// has no kind (including nil).
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidArgument reports whether err carries KindInvalidArgument.
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

// IsConflict reports whether err carries KindConflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
