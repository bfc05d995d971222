package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a provider recognizes a link but has no
// content for it.
var ErrNotFound = errors.New("content not found")

// ErrKind classifies provider failures.
type ErrKind string

const (
	KindTimeout     ErrKind = "timeout"
	KindNetwork     ErrKind = "network"
	KindParse       ErrKind = "parse"
	KindUnsupported ErrKind = "unsupported"
)

// Error is a classified provider failure. Cancellation is never an
// Error; cancelled calls return the context error unchanged.
type Error struct {
	Provider string
	Kind     ErrKind
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as a classified provider failure.
func NewError(providerValue string, kind ErrKind, err error) *Error {
	return &Error{Provider: providerValue, Kind: kind, Err: err}
}

// KindOf returns the classification of err, or "" when err is not a
// provider Error.
func KindOf(err error) ErrKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// Unsupported is the fail-fast error for a capability the provider did
// not declare.
func Unsupported(providerValue string, c Capability) error {
	return &Error{Provider: providerValue, Kind: KindUnsupported, Err: fmt.Errorf("capability %s not declared", c)}
}
