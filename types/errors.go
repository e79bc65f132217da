// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is returned by Submit when the caller's per-identity
	// rate budget is exhausted. The caller may resubmit after the window
	// rolls.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthorizationRejected indicates a signature that could not be
	// recovered or a recovered signer that lacks the required role. It is
	// never retried.
	ErrAuthorizationRejected = errors.New("authorization rejected")

	// ErrNotFound indicates an unknown transfer request ID.
	ErrNotFound = errors.New("transfer request not found")

	// ErrInvalidTransition indicates an operation incompatible with the
	// request's current state, e.g. a second Drive for a request already
	// submitting.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError reports a malformed transfer request. It is surfaced to
// the caller immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transfer request: %s %s", e.Field, e.Reason)
}

// PermanentError marks a chain-side rejection that will not succeed on
// retry, such as an unsupported destination or an invalid recipient
// detected on-chain.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent chain error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that the retry executor propagates it without
// consuming retry budget.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent classifies an error as non-transient. Validation and
// authorization failures, and explicitly marked chain rejections, must
// propagate immediately; everything else is considered transient and
// eligible for retry.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var (
		validationErr *ValidationError
		permanentErr  *PermanentError
	)
	return errors.Is(err, ErrAuthorizationRejected) ||
		errors.As(err, &validationErr) ||
		errors.As(err, &permanentErr)
}
