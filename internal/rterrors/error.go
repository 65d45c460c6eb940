// Package rterrors is the ambient structured-error type for everything
// outside the reactive core (pkg/reactive.Error already covers spec.md
// §7's six kinds): config loading, CLI argument handling, transport,
// and snapshot persistence. Grounded on the teacher's internal/errors
// package (VangoError: Code/Category/Message/Wrapped, builder methods),
// with the source-location/context-line machinery dropped — there is
// no compiler/authoring surface here to point at.
package rterrors

import "fmt"

// Category groups ambient-stack errors by subsystem.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
	CategoryTransport Category = "transport"
	CategoryPersist   Category = "persist"
)

// Error is a structured error carrying a log-correlation code
// ("WEAVE-E101" style from registry.go, empty for Newf errors; matching
// the teacher's "[VANGO E002]" convention), a
// category, a human message, an optional fix suggestion, and the
// underlying cause.
type Error struct {
	Code       string
	Category   Category
	Message    string
	Suggestion string
	Wrapped    error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// WithSuggestion attaches a fix suggestion and returns e for chaining.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap attaches the underlying cause and returns e for chaining.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered code (see registry.go),
// falling back to a bare "unknown error code" if code isn't
// registered.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{Code: code, Category: CategoryCLI, Message: "unknown error code"}
	}
	return &Error{Code: code, Category: tmpl.Category, Message: tmpl.Message}
}

// Newf creates an ad hoc Error with a formatted message and no
// registered code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps err in an Error under code, or returns err unchanged
// if it is already one.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
