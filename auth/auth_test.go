// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luxfi/relay/types"
)

// countingRegistry wraps StaticRegistry to count lookups.
type countingRegistry struct {
	inner   *StaticRegistry
	mu      sync.Mutex
	lookups int
}

func (r *countingRegistry) HasRole(ctx context.Context, identity common.Address, role string) (bool, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()
	return r.inner.HasRole(ctx, identity, role)
}

type failingRegistry struct{}

func (failingRegistry) HasRole(context.Context, common.Address, string) (bool, error) {
	return false, errors.New("registry unavailable")
}

func signMessage(t *testing.T, message []byte) ([]byte, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signature, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)
	return signature, crypto.PubkeyToAddress(key.PublicKey)
}

func TestVerifyAuthorized(t *testing.T) {
	require := require.New(t)

	message := []byte("cross-chain relay payload")
	signature, signer := signMessage(t, message)

	registry := NewStaticRegistry()
	registry.Grant(RoleAdmin, signer)

	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, registry)
	identity, err := verifier.VerifyAuthorized(context.Background(), message, signature, RoleAdmin)
	require.NoError(err)
	require.Equal(signer, identity)
}

func TestVerifyRejectsSignerWithoutRole(t *testing.T) {
	require := require.New(t)

	message := []byte("cross-chain relay payload")
	signature, _ := signMessage(t, message)

	// Registry knows nobody.
	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, NewStaticRegistry())
	_, err := verifier.VerifyAuthorized(context.Background(), message, signature, RoleAdmin)
	require.ErrorIs(err, types.ErrAuthorizationRejected)
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	require := require.New(t)

	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, NewStaticRegistry())

	tests := []struct {
		name      string
		signature []byte
	}{
		{"empty signature", nil},
		{"truncated signature", make([]byte, 12)},
		{"garbage signature", append(make([]byte, 64), 99)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyAuthorized(context.Background(), []byte("message"), tt.signature, RoleAdmin)
			require.ErrorIs(err, types.ErrAuthorizationRejected)
		})
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	require := require.New(t)

	message := []byte("original payload")
	signature, signer := signMessage(t, message)

	registry := NewStaticRegistry()
	registry.Grant(RoleAdmin, signer)

	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, registry)
	// Recovery over the tampered payload yields a different identity, which
	// holds no role.
	_, err := verifier.VerifyAuthorized(context.Background(), []byte("tampered payload"), signature, RoleAdmin)
	require.ErrorIs(err, types.ErrAuthorizationRejected)
}

func TestVerifyRejectsOnRegistryFailure(t *testing.T) {
	require := require.New(t)

	message := []byte("payload")
	signature, _ := signMessage(t, message)

	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, failingRegistry{})
	_, err := verifier.VerifyAuthorized(context.Background(), message, signature, RoleAdmin)
	require.ErrorIs(err, types.ErrAuthorizationRejected)
}

func TestRoleCacheShortCircuitsLookups(t *testing.T) {
	require := require.New(t)

	message := []byte("payload")
	signature, signer := signMessage(t, message)

	static := NewStaticRegistry()
	static.Grant(RoleAdmin, signer)
	registry := &countingRegistry{inner: static}

	verifier := NewVerifier(zap.NewNop(), SecpRecoverer{}, registry, WithRoleCacheTTL(time.Minute))
	for i := 0; i < 5; i++ {
		_, err := verifier.VerifyAuthorized(context.Background(), message, signature, RoleAdmin)
		require.NoError(err)
	}
	require.Equal(1, registry.lookups)
}

func TestLegacyRecoveryID(t *testing.T) {
	require := require.New(t)

	message := []byte("payload")
	signature, signer := signMessage(t, message)

	// Some signers emit 27/28 instead of 0/1.
	legacy := make([]byte, len(signature))
	copy(legacy, signature)
	legacy[crypto.RecoveryIDOffset] += 27

	recovered, err := SecpRecoverer{}.Recover(message, legacy)
	require.NoError(err)
	require.Equal(signer, recovered)
}
