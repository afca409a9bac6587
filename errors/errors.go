// Package errors provides error handling for gripterra.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for operators
//
// On top of that it defines the three failure classes the graph source
// distinguishes:
//
//	ErrNotFound             unknown collection, unknown row id, unconfigured edge tuple
//	ErrInvalidPath          collection name with neither 3 nor 4 segments
//	ErrUpstreamUnavailable  entity store fetch failed or returned a non-success status
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.IsNotFoundError(err) {
//	    // reply with NotFound
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors. Wrap these with errors.Wrap() to add context while
// preserving the class; check them with the Is* helpers below.
var (
	// ErrNotFound indicates the requested collection or row does not exist
	ErrNotFound = New("not found")

	// ErrInvalidPath indicates a collection name that is neither a vertex
	// (namespace/name/type) nor an edge (namespace/name/type/field) path
	ErrInvalidPath = New("invalid collection path")

	// ErrUpstreamUnavailable indicates the entity store could not serve a fetch
	ErrUpstreamUnavailable = New("upstream unavailable")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidPathError checks if an error is or wraps ErrInvalidPath
func IsInvalidPathError(err error) bool {
	return err != nil && Is(err, ErrInvalidPath)
}

// IsUpstreamUnavailableError checks if an error is or wraps ErrUpstreamUnavailable
func IsUpstreamUnavailableError(err error) bool {
	return err != nil && Is(err, ErrUpstreamUnavailable)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidPathError creates an invalid-path error with a formatted message
func NewInvalidPathError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidPath, Newf(format, args...).Error())
}

// WrapUpstreamUnavailable marks err as an upstream failure, keeping its
// message and adding context
func WrapUpstreamUnavailable(err error, context string) error {
	return Wrap(Wrap(ErrUpstreamUnavailable, err.Error()), context)
}

// NewUpstreamUnavailableError creates an upstream failure with a formatted message
func NewUpstreamUnavailableError(format string, args ...interface{}) error {
	return Wrap(ErrUpstreamUnavailable, Newf(format, args...).Error())
}
