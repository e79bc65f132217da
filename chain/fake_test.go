// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxfi/relay/types"
)

func TestFakeConfirmsSubmissions(t *testing.T) {
	require := require.New(t)

	key, err := crypto.GenerateKey()
	require.NoError(err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	fake := NewFake(zap.NewNop(), "devnet", func(message []byte) ([]byte, error) {
		return crypto.Sign(accounts.TextHash(message), key)
	}, time.Millisecond)

	txID, err := fake.Submit(
		context.Background(),
		"devnet",
		"0x000000000000000000000000000000000000dEaD",
		[]byte("payload"),
		big.NewInt(1),
	)
	require.NoError(err)

	select {
	case event := <-fake.Events():
		require.Equal(types.EventTransferCompleted, event.Kind)
		require.Equal(txID, event.TxID)

		// The confirmation is signed by the fake's relayer key.
		recovered, err := crypto.SigToPub(accounts.TextHash(event.SigningPayload()), event.Signature)
		require.NoError(err)
		require.Equal(signer, crypto.PubkeyToAddress(*recovered))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for confirmation event")
	}

	receipt, err := fake.AwaitReceipt(context.Background(), txID)
	require.NoError(err)
	require.True(receipt.Success)
	require.Equal(txID, receipt.TxID)
}

func TestFakeSubmissionsGetDistinctTxIDs(t *testing.T) {
	require := require.New(t)

	fake := NewFake(zap.NewNop(), "devnet", func([]byte) ([]byte, error) {
		return nil, nil
	}, time.Millisecond)

	a, err := fake.Submit(context.Background(), "devnet", "0x1", []byte("p"), big.NewInt(1))
	require.NoError(err)
	b, err := fake.Submit(context.Background(), "devnet", "0x1", []byte("p"), big.NewInt(1))
	require.NoError(err)
	require.NotEqual(a, b)
}
