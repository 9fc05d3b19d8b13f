// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

// Package apperr defines the small, stable error taxonomy surfaced to the
// chat-command layer.
//
// Every error leaving the engine is classified as one of:
//
//   - ErrInvalidRequest: conflicting or malformed caller input
//   - ErrNotFound: beatmap or user does not exist (terminal)
//   - ErrTransient: I/O or persistence failure (recoverable, never cached)
//   - ErrNoCandidates: model population exhausted after bounded retries
//   - ErrCancelled: cooperative cancellation observed mid-operation
//
// Callers test with errors.Is:
//
//	if errors.Is(err, apperr.ErrNoCandidates) {
//	    reply("I've run out of recommendations for you")
//	}
package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates conflicting or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound indicates the beatmap or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTransient indicates a recoverable I/O or persistence failure.
	ErrTransient = errors.New("transient failure")

	// ErrNoCandidates indicates the model population was exhausted.
	ErrNoCandidates = errors.New("no candidates")

	// ErrCancelled indicates the operation observed cancellation.
	ErrCancelled = errors.New("cancelled")
)

// kinds lists the taxonomy sentinels in match priority order.
var kinds = []error{ErrCancelled, ErrInvalidRequest, ErrNotFound, ErrNoCandidates, ErrTransient}

// Error is a classified error carrying the failed operation and its cause.
type Error struct {
	// Op names the operation that failed, e.g. "metadata.get".
	Op string

	// Kind is one of the taxonomy sentinels.
	Kind error

	// Err is the underlying cause. May be nil.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New creates a classified error.
func New(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// InvalidRequest creates an ErrInvalidRequest with a formatted cause.
func InvalidRequest(op, format string, args ...any) error {
	return New(op, ErrInvalidRequest, fmt.Errorf(format, args...))
}

// NotFound creates an ErrNotFound with a formatted cause.
func NotFound(op, format string, args ...any) error {
	return New(op, ErrNotFound, fmt.Errorf(format, args...))
}

// KindOf returns the taxonomy sentinel err is classified as, or nil.
// Context errors count as ErrCancelled even when unclassified.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCancelled
	}
	return nil
}

// FromIO classifies a failure coming back from a collaborator.
// Already-classified errors pass through unchanged, context errors become
// ErrCancelled and everything else becomes ErrTransient.
func FromIO(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if kind := KindOf(err); kind != nil {
		return New(op, kind, err)
	}
	return New(op, ErrTransient, err)
}

// CheckContext returns an ErrCancelled if ctx is already done.
// It is called at every suspension point before blocking work starts.
func CheckContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return New(op, ErrCancelled, err)
	}
	return nil
}

// IsSoft reports whether err is a per-candidate failure the sampler may skip:
// a missing or uncomputable beatmap, or a transient fetch failure.
func IsSoft(err error) bool {
	k := KindOf(err)
	return k == ErrNotFound || k == ErrTransient
}
