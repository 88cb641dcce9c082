package invoke

import (
	"context"
	"errors"
)

// Kind is the runtime error taxonomy of one invocation.
type Kind string

const (
	KindMalformedInput            Kind = "malformed_input"
	KindIncompatibleInterface     Kind = "incompatible_interface"
	KindRecoverableLayoutMismatch Kind = "recoverable_layout_mismatch"
	KindNonRecoverable            Kind = "non_recoverable"
	KindCanceled                  Kind = "canceled"
)

// Error is returned by Invoke. Err is the underlying failure; for
// KindRecoverableLayoutMismatch it is the error seen before the repair, not
// the retry's.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the invocation error kind of err, or "" if err did not come
// from Invoke.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsMalformedInput reports whether err rejected the feature vector before any call.
func IsMalformedInput(err error) bool { return KindOf(err) == KindMalformedInput }

// IsIncompatibleInterface reports whether the handle supports no invocation protocol.
func IsIncompatibleInterface(err error) bool { return KindOf(err) == KindIncompatibleInterface }

// ErrNotLoaded is the outcome for a configuration whose handle is absent.
var ErrNotLoaded = errors.New("Model not loaded")

// ErrUnknownConfiguration is the outcome for a name outside the catalog.
var ErrUnknownConfiguration = errors.New("unknown configuration")

func canceled(ctx context.Context) *Error {
	return &Error{Kind: KindCanceled, Err: context.Cause(ctx)}
}
