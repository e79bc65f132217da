// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEventIDDeterministic(t *testing.T) {
	require := require.New(t)

	a := RelayEvent{
		Kind:        EventTransferCompleted,
		SourceChain: "chain-a",
		TxID:        common.HexToHash("0xabc123"),
		LogIndex:    7,
		Payload:     []byte("payload"),
	}
	b := RelayEvent{
		Kind:        EventGenericMessage,
		SourceChain: "chain-a",
		TxID:        common.HexToHash("0xabc123"),
		LogIndex:    7,
		Payload:     []byte("different payload"),
	}
	require.Equal(a.EventID(), b.EventID())
	require.Equal("chain-a:"+a.TxID.Hex()+":7", a.EventID())

	c := a
	c.LogIndex = 8
	require.NotEqual(a.EventID(), c.EventID())
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    TransferState
		to      TransferState
		allowed bool
	}{
		{"pending to submitting", StatePending, StateSubmitting, true},
		{"pending to cancelled", StatePending, StateCancelled, true},
		{"pending to completed", StatePending, StateCompleted, false},
		{"submitting to awaiting", StateSubmitting, StateAwaitingConfirmation, true},
		{"submitting to failed", StateSubmitting, StateFailed, true},
		{"submitting to cancelled", StateSubmitting, StateCancelled, false},
		{"awaiting to completed", StateAwaitingConfirmation, StateCompleted, true},
		{"awaiting to failed", StateAwaitingConfirmation, StateFailed, true},
		{"no backward from awaiting", StateAwaitingConfirmation, StatePending, false},
		{"completed is terminal", StateCompleted, StateFailed, false},
		{"failed is terminal", StateFailed, StateSubmitting, false},
		{"cancelled is terminal", StateCancelled, StateSubmitting, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	require := require.New(t)

	require.False(IsPermanent(nil))
	require.False(IsPermanent(errors.New("connection reset")))
	require.True(IsPermanent(ErrAuthorizationRejected))
	require.True(IsPermanent(&ValidationError{Field: "maxFee", Reason: "must be positive"}))
	require.True(IsPermanent(Permanent(errors.New("unsupported destination"))))

	// Wrapped errors classify the same way.
	wrapped := errors.Join(errors.New("context"), Permanent(errors.New("bad recipient")))
	require.True(IsPermanent(wrapped))
}
