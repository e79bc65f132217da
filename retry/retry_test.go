// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxfi/relay/types"
)

// flakyOperation fails with a transient error until failures invocations
// have occurred.
type flakyOperation struct {
	failures    int
	invocations int
}

func (f *flakyOperation) Run() error {
	f.invocations++
	if f.invocations <= f.failures {
		return errors.New("transient transport failure")
	}
	return nil
}

func TestExecuteSucceedsAfterRetries(t *testing.T) {
	require := require.New(t)

	op := &flakyOperation{failures: 2}
	executor := NewExecutor(zap.NewNop(), 3, time.Millisecond)

	attempts, err := executor.Execute(context.Background(), op.Run)
	require.NoError(err)
	require.Equal(3, attempts)
	require.Equal(3, op.invocations)
}

func TestExecuteExhaustsBudget(t *testing.T) {
	require := require.New(t)

	op := &flakyOperation{failures: 10}
	executor := NewExecutor(zap.NewNop(), 3, time.Millisecond)

	attempts, err := executor.Execute(context.Background(), op.Run)
	require.Error(err)
	require.Equal(3, attempts)
	require.Equal(3, op.invocations)

	var exhausted *ExhaustedError
	require.ErrorAs(err, &exhausted)
	require.Equal(3, exhausted.Attempts)
	require.ErrorContains(exhausted.Err, "transient transport failure")
}

func TestExecutePermanentErrorIsNotRetried(t *testing.T) {
	require := require.New(t)

	invocations := 0
	permanentErr := types.Permanent(errors.New("invalid recipient"))
	executor := NewExecutor(zap.NewNop(), 3, time.Millisecond)

	attempts, err := executor.Execute(context.Background(), func() error {
		invocations++
		return permanentErr
	})
	require.Equal(1, attempts)
	require.Equal(1, invocations)
	require.ErrorIs(err, permanentErr)

	var exhausted *ExhaustedError
	require.False(errors.As(err, &exhausted), "permanent failures must not be wrapped as exhaustion")
}

func TestExecuteAuthorizationRejectionIsNotRetried(t *testing.T) {
	require := require.New(t)

	invocations := 0
	executor := NewExecutor(zap.NewNop(), 5, time.Millisecond)

	attempts, err := executor.Execute(context.Background(), func() error {
		invocations++
		return types.ErrAuthorizationRejected
	})
	require.Equal(1, attempts)
	require.Equal(1, invocations)
	require.ErrorIs(err, types.ErrAuthorizationRejected)
}

func TestExecuteCustomClassifier(t *testing.T) {
	require := require.New(t)

	errNoRetry := errors.New("nonce too low")
	executor := NewExecutor(zap.NewNop(), 3, time.Millisecond, WithClassifier(func(err error) bool {
		return errors.Is(err, errNoRetry)
	}))

	attempts, err := executor.Execute(context.Background(), func() error {
		return errNoRetry
	})
	require.Equal(1, attempts)
	require.ErrorIs(err, errNoRetry)
}

func TestExecuteContextCancellation(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	executor := NewExecutor(zap.NewNop(), 10, 50*time.Millisecond)

	attempts, err := executor.Execute(ctx, func() error {
		cancel()
		return errors.New("transient")
	})
	require.Error(err)
	require.Equal(1, attempts)
}
