// Package dberr defines the typed error vocabulary the core engine surfaces
// to callers. The failures the core detects and returns are of the kinds
// below, wrapped around whatever underlying error (if any) triggered it. A
// page access outside the page's bounds is not returned as an error: it
// panics (see storage.Page).
package dberr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the core can return.
type Kind int

const (
	// IoFailure is any failure surfaced from the underlying file operations:
	// read, write, fsync, append, stat.
	IoFailure Kind = iota
	// NoAvailableBuffer means BufferManager.Pin could not find a frame
	// within the configured wait budget.
	NoAvailableBuffer
	// Deadlock means LockTable.SLock/XLock timed out with a conflicting
	// lock still held.
	Deadlock
	// CheckpointTimeout means a quiescent checkpoint could not drain
	// active transactions within the wait budget.
	CheckpointTimeout
	// RecordDecodeFailure means a log record's tag did not match any known
	// kind, or a typed payload failed to decode.
	RecordDecodeFailure
	// DomainViolation covers value-domain errors: a value longer than its
	// declared length, or an invalid date/time encoding.
	DomainViolation
)

func (k Kind) String() string {
	switch k {
	case IoFailure:
		return "io_failure"
	case NoAvailableBuffer:
		return "no_available_buffer"
	case Deadlock:
		return "deadlock"
	case CheckpointTimeout:
		return "checkpoint_timeout"
	case RecordDecodeFailure:
		return "record_decode_failure"
	case DomainViolation:
		return "domain_violation"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by the core. It carries the
// Kind so callers can branch on failure category with Is, and optionally
// wraps an underlying cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, dberr.New(kind, "")) match any *Error of the same
// Kind, regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an *Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is (or wraps) a *dberr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
