// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/luxfi/relay/types"
)

// SignFunc signs an event payload on behalf of the fake chain's relayer.
type SignFunc func(message []byte) ([]byte, error)

var (
	_ Client      = (*Fake)(nil)
	_ EventSource = (*Fake)(nil)
)

// Fake is an in-process chain used by the dev daemon and tests. Every
// accepted submission is confirmed with a signed TransferCompleted event
// after confirmDelay.
type Fake struct {
	logger       *zap.Logger
	chainID      string
	sign         SignFunc
	confirmDelay time.Duration

	events chan types.RelayEvent
	errs   chan error

	mu    sync.Mutex
	nonce uint64
}

func NewFake(logger *zap.Logger, chainID string, sign SignFunc, confirmDelay time.Duration) *Fake {
	return &Fake{
		logger:       logger,
		chainID:      chainID,
		sign:         sign,
		confirmDelay: confirmDelay,
		events:       make(chan types.RelayEvent, 64),
		errs:         make(chan error, 1),
	}
}

func (f *Fake) Submit(
	_ context.Context,
	destChain string,
	to string,
	payload []byte,
	_ *big.Int,
) (common.Hash, error) {
	f.mu.Lock()
	f.nonce++
	nonce := f.nonce
	f.mu.Unlock()

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	txID := crypto.Keccak256Hash([]byte(destChain), []byte(to), payload, nonceBytes[:])

	f.logger.Debug(
		"Accepted submission",
		zap.Stringer("txID", txID),
		zap.String("destinationChain", destChain),
	)

	go f.confirm(txID)
	return txID, nil
}

func (f *Fake) AwaitReceipt(_ context.Context, txID common.Hash) (Receipt, error) {
	return Receipt{TxID: txID, BlockNumber: 0, Success: true}, nil
}

func (f *Fake) Events() <-chan types.RelayEvent {
	return f.events
}

func (f *Fake) Err() <-chan error {
	return f.errs
}

func (f *Fake) confirm(txID common.Hash) {
	time.Sleep(f.confirmDelay)
	event := types.RelayEvent{
		Kind:        types.EventTransferCompleted,
		SourceChain: f.chainID,
		TxID:        txID,
		LogIndex:    0,
		ObservedAt:  time.Now(),
	}
	signature, err := f.sign(event.SigningPayload())
	if err != nil {
		f.logger.Error(
			"Failed to sign confirmation event",
			zap.Stringer("txID", txID),
			zap.Error(err),
		)
		return
	}
	event.Signature = signature
	f.events <- event
}
