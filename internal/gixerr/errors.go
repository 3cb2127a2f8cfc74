// Package gixerr defines the error taxonomy of gix and how each kind maps to
// a process exit code.
package gixerr

import (
	"errors"
	"fmt"
)

// ExitInternal is the exit code for failures inside gix itself. It is kept
// apart from the codes git uses so callers can tell "gix could not run the
// command" from "git ran and failed".
const ExitInternal = 125

// Kind classifies a gix error.
type Kind int

const (
	// Unknown is any error that was not classified.
	Unknown Kind = iota
	// ConfigUnreadable means the global config exists but cannot be decoded.
	ConfigUnreadable
	// NoProfilesConfigured means an identity was required and none exist.
	NoProfilesConfigured
	// ProfileNotFound means an explicitly named profile does not exist.
	ProfileNotFound
	// AuthKeyMissing means an SSH key path does not exist.
	AuthKeyMissing
	// AuthKeyInvalid means an SSH key path exists but is not a regular file.
	AuthKeyInvalid
	// ValidationFailed means a profile failed validation before a save.
	ValidationFailed
	// DelegateFailed means git ran and exited non-zero.
	DelegateFailed
	// NotInRepository means the command needs a git work tree.
	NotInRepository
	// Cancelled means the user aborted an interactive prompt.
	Cancelled
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case ConfigUnreadable:
		return "config unreadable"
	case NoProfilesConfigured:
		return "no profiles configured"
	case ProfileNotFound:
		return "profile not found"
	case AuthKeyMissing:
		return "auth key missing"
	case AuthKeyInvalid:
		return "auth key invalid"
	case ValidationFailed:
		return "validation failed"
	case DelegateFailed:
		return "delegate failed"
	case NotInRepository:
		return "not in repository"
	case Cancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Error is a classified gix error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
	// Code is the exit code of the delegated git process (DelegateFailed only).
	Code int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// New creates a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Delegate reports that git exited with the given non-zero code.
func Delegate(code int) *Error {
	return &Error{Kind: DelegateFailed, Msg: fmt.Sprintf("git exited with status %d", code), Code: code}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == DelegateFailed && e.Code != 0 {
		return e.Code
	}
	return ExitInternal
}
