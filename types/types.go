// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the data model shared by the relay coordinator
// components: transfer requests, their state machine, and the normalized
// cross-chain events observed on remote chains.
package types

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TransferState tracks the lifecycle of a TransferRequest.
type TransferState uint8

const (
	StatePending TransferState = iota
	StateSubmitting
	StateAwaitingConfirmation
	StateCompleted
	StateFailed
	StateCancelled
)

func (s TransferState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal returns true once a request can no longer change state.
func (s TransferState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// CanTransitionTo enforces the monotonic state machine
// Pending -> Submitting -> AwaitingConfirmation -> {Completed | Failed}.
// Cancellation is only reachable from Pending; a request that has started
// submitting runs to its terminal outcome.
func (s TransferState) CanTransitionTo(next TransferState) bool {
	switch s {
	case StatePending:
		return next == StateSubmitting || next == StateCancelled
	case StateSubmitting:
		return next == StateAwaitingConfirmation || next == StateFailed
	case StateAwaitingConfirmation:
		return next == StateCompleted || next == StateFailed
	default:
		return false
	}
}

// TransferRequest is a request to move an opaque payload to a remote chain
// endpoint. A request owns its attempt counter; there is at most one
// in-flight submission per request ID.
type TransferRequest struct {
	ID                  string
	SourceIdentity      string
	DestinationIdentity string
	DestinationChain    string
	Payload             []byte
	MaxFee              *big.Int

	State     TransferState
	Attempts  int
	TxID      common.Hash
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventKind classifies a normalized cross-chain event.
type EventKind uint8

const (
	EventTransferInitiated EventKind = iota
	EventTransferCompleted
	EventTransferFailed
	EventGenericMessage
)

func (k EventKind) String() string {
	switch k {
	case EventTransferInitiated:
		return "transfer_initiated"
	case EventTransferCompleted:
		return "transfer_completed"
	case EventTransferFailed:
		return "transfer_failed"
	case EventGenericMessage:
		return "generic_message"
	default:
		return "unknown"
	}
}

// RequiresAuthorization returns true for kinds that trigger local state
// changes when applied and must therefore carry an admin-signed relay.
// TransferInitiated is informational only.
func (k EventKind) RequiresAuthorization() bool {
	return k != EventTransferInitiated
}

// RelayEvent is an ephemeral, normalized view of a raw chain event. Only its
// EventID outlives dispatch, retained for replay protection.
type RelayEvent struct {
	Kind        EventKind
	SourceChain string
	TxID        common.Hash
	LogIndex    uint64
	Payload     []byte
	Signature   []byte
	ObservedAt  time.Time
}

// EventID derives the globally unique identifier for this event. Any two
// observers of the same underlying chain event must derive the same ID.
func (e *RelayEvent) EventID() string {
	return e.SourceChain + ":" + e.TxID.Hex() + ":" + strconv.FormatUint(e.LogIndex, 10)
}

// SigningPayload is the canonical byte string covered by the relayer
// signature attached to an event.
func (e *RelayEvent) SigningPayload() []byte {
	id := e.EventID()
	payload := make([]byte, 0, len(id)+1+len(e.Payload))
	payload = append(payload, id...)
	payload = append(payload, ':')
	payload = append(payload, e.Payload...)
	return payload
}

func (e *RelayEvent) String() string {
	return fmt.Sprintf("%s event %s", e.Kind, e.EventID())
}
