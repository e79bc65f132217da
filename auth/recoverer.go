// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var _ Recoverer = (*SecpRecoverer)(nil)

// SecpRecoverer recovers secp256k1 signatures over EIP-191 prefixed
// messages, the scheme relayers sign inbound payloads with.
type SecpRecoverer struct{}

func (SecpRecoverer) Recover(message, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	// Accept both 0/1 and legacy 27/28 recovery IDs.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash(message)
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
