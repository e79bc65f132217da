// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain declares the interfaces the relay coordinator consumes from
// the surrounding application: the chain submission client and the
// push-based event source. Concrete RPC/SDK clients live outside this
// module and are injected at the composition root.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/luxfi/relay/types"
)

// Receipt summarizes the terminal outcome of a submitted transaction.
type Receipt struct {
	TxID        common.Hash
	BlockNumber uint64
	Success     bool
}

// Client submits payloads to a remote chain. Submit returns a transaction
// handle on acceptance; transient transport failures are returned as plain
// errors, non-retryable rejections wrapped with types.Permanent.
type Client interface {
	Submit(ctx context.Context, destChain string, to string, payload []byte, maxFee *big.Int) (common.Hash, error)
	AwaitReceipt(ctx context.Context, txID common.Hash) (Receipt, error)
}

// EventSource delivers normalized chain events over a channel. The source
// owns the subscription; consumers must drain Events until it is closed.
type EventSource interface {
	Events() <-chan types.RelayEvent
	Err() <-chan error
}
