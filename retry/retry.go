// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package retry provides a bounded-retry wrapper for fallible operations.
// Idempotency of the wrapped operation is the caller's responsibility.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/luxfi/relay/types"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// ExhaustedError wraps the last underlying error once the attempt budget is
// spent.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Executor repeatedly invokes operations until success, a non-transient
// failure, or the attempt budget is exhausted. The default policy waits a
// fixed baseDelay between attempts; exponential backoff is an explicit
// opt-in.
type Executor struct {
	logger      *zap.Logger
	maxAttempts uint64
	baseDelay   time.Duration
	exponential bool
	isPermanent func(error) bool
}

type Option func(*Executor)

// WithExponentialBackoff doubles the delay after each failed attempt
// instead of waiting a fixed baseDelay.
func WithExponentialBackoff() Option {
	return func(e *Executor) {
		e.exponential = true
	}
}

// WithClassifier overrides the transient-vs-permanent error classifier.
// Errors classified as permanent propagate immediately without consuming
// retry budget.
func WithClassifier(isPermanent func(error) bool) Option {
	return func(e *Executor) {
		e.isPermanent = isPermanent
	}
}

func NewExecutor(logger *zap.Logger, maxAttempts uint64, baseDelay time.Duration, opts ...Option) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	e := &Executor{
		logger:      logger,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		isPermanent: types.IsPermanent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs operation until it succeeds or the budget is spent,
// reporting the number of invocations performed. On exhaustion the returned
// error is an *ExhaustedError; a permanent failure is returned as-is after
// a single invocation.
func (e *Executor) Execute(ctx context.Context, operation backoff.Operation) (int, error) {
	attempts := 0
	wrapped := func() error {
		attempts++
		err := operation()
		if err == nil {
			return nil
		}
		if e.isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var policy backoff.BackOff
	if e.exponential {
		policy = backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(e.baseDelay),
		)
	} else {
		policy = backoff.NewConstantBackOff(e.baseDelay)
	}
	policy = backoff.WithContext(backoff.WithMaxRetries(policy, e.maxAttempts-1), ctx)

	notify := func(err error, _ time.Duration) {
		e.logger.Warn(
			"Operation failed, retrying",
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(wrapped, policy, notify)
	if err == nil {
		return attempts, nil
	}
	if e.isPermanent(err) || ctx.Err() != nil {
		return attempts, err
	}
	return attempts, &ExhaustedError{Attempts: attempts, Err: err}
}
