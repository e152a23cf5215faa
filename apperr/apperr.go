// Package apperr implements the two error planes from spec.md §7:
// infrastructure errors (transport, storage, auth — surfaced upward,
// never recovered) and typed application errors (returned as values,
// handled by callers). Grounded in the teacher's generic/errors.go, which
// establishes the same sentinel-plus-structured-type-plus-predicate idiom;
// generalised here into a generic envelope since the teacher has only one
// error plane and monee's sync protocol needs to serialise exactly one of
// the two to the wire (spec.md §7: "the sync protocol serialises only the
// App variant").
package apperr

import (
	"errors"
	"fmt"
)

// Coder is implemented by every concrete application error type so the CLI
// and HTTP layers can report a stable machine-readable code
// (e.g. "currency.not_found") alongside the human-readable message.
type Coder interface {
	error
	Code() string
}

// Error[E] is AppError<E>: either an infrastructure failure or a typed
// application error. Exactly one of the two fields is set.
type Error[E Coder] struct {
	Infra error
	App   E
	isApp bool
}

// Infrastructure wraps an infrastructure-plane error (storage, transport, auth).
func Infrastructure[E Coder](err error) Error[E] {
	return Error[E]{Infra: err}
}

// App wraps an application-plane error.
func App[E Coder](e E) Error[E] {
	return Error[E]{App: e, isApp: true}
}

func (e Error[E]) IsApp() bool   { return e.isApp }
func (e Error[E]) IsInfra() bool { return !e.isApp }

func (e Error[E]) Error() string {
	if e.isApp {
		return e.App.Error()
	}
	return fmt.Sprintf("infrastructure error: %v", e.Infra)
}

func (e Error[E]) Unwrap() error {
	if e.isApp {
		return e.App
	}
	return e.Infra
}

// Code returns the application error's stable code, or "" for an
// infrastructure error (those map to an opaque transport-level message,
// never a domain code).
func (e Error[E]) Code() string {
	if e.isApp {
		return e.App.Code()
	}
	return ""
}

// As is a convenience wrapper over errors.As for pulling a concrete
// application error back out of a generically-typed Error.
func As[E Coder](err error, target *E) bool {
	var wrapped Error[E]
	if errors.As(err, &wrapped) && wrapped.isApp {
		*target = wrapped.App
		return true
	}
	return errors.As(err, target)
}
