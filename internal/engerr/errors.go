// Package engerr defines the error taxonomy shared across the engine
// (spec §7). Call sites wrap an underlying error with
// github.com/pkg/errors before attaching a Kind, so a formatted
// message and a stack-aware cause both survive to the top.
package engerr

import (
	"errors"
	"fmt"
)

// Kind is one of the six error categories from spec §7. Kinds are not
// distinct Go types — callers switch on Kind() rather than using
// errors.As per-kind, since the taxonomy is closed and small.
type Kind int

const (
	// Unknown is the zero value; Wrap always sets an explicit Kind, so
	// seeing Unknown anywhere indicates a construction bug.
	Unknown Kind = iota

	// RepositoryUnavailable is fatal at the CLI boundary: the engine
	// could not open/use the repository at all.
	RepositoryUnavailable

	// ConfigurationInvalid means the supplied configuration failed
	// shape or value validation.
	ConfigurationInvalid

	// ParseFailure covers malformed versions, tag names, or patterns.
	// Call sites log and skip rather than propagate this as fatal.
	ParseFailure

	// ValidationFailed means the computed version failed one or more
	// Validator constraints (spec §4.H); non-fatal at the engine.
	ValidationFailed

	// TagCreateRefused means CreateTag declined to create a tag
	// (collision or invalid name); non-fatal, caller decides.
	TagCreateRefused

	// GitOperationFailed covers a go-git call that failed; the engine
	// treats this conservatively as "changes present" rather than
	// failing the whole resolution (spec §4.F, §7).
	GitOperationFailed
)

func (k Kind) String() string {
	switch k {
	case RepositoryUnavailable:
		return "RepositoryUnavailable"
	case ConfigurationInvalid:
		return "ConfigurationInvalid"
	case ParseFailure:
		return "ParseFailure"
	case ValidationFailed:
		return "ValidationFailed"
	case TagCreateRefused:
		return "TagCreateRefused"
	case GitOperationFailed:
		return "GitOperationFailed"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error of the given kind around err. Returns nil when
// err is nil, so call sites can write `return engerr.Wrap(Kind, err)`
// unconditionally.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Wrapf is Wrap with a formatted message prefixed onto err.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: fmt.Errorf(format+": %w", append(args, err)...)}
}

// KindOf returns the Kind carried by err, or Unknown if err is nil or
// was never wrapped by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
