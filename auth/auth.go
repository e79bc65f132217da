// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth authorizes inbound cross-chain messages. A signer identity
// is recovered from the signed payload and checked against the on-chain
// role registry before any state change is applied.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/luxfi/relay/cache"
	"github.com/luxfi/relay/types"
)

// RoleAdmin is the registry role required to relay state-changing messages.
const RoleAdmin = "ADMIN"

// Recoverer recovers the signer identity from a signed payload using the
// chain's standard signature scheme.
type Recoverer interface {
	Recover(message, signature []byte) (common.Address, error)
}

// RoleRegistry looks up role membership in chain state. Implementations are
// expected to be read-only.
type RoleRegistry interface {
	HasRole(ctx context.Context, identity common.Address, role string) (bool, error)
}

type roleKey struct {
	identity common.Address
	role     string
}

func (k roleKey) String() string {
	return k.role + ":" + k.identity.Hex()
}

// Verifier recovers a signer identity and checks it against the authorized
// role registry. Every failure shape collapses to
// types.ErrAuthorizationRejected, which the retry executor treats as
// non-retryable: untrusted input is discarded, never retried.
type Verifier struct {
	logger    *zap.Logger
	recoverer Recoverer
	registry  RoleRegistry
	roleCache *cache.TTLCache[roleKey, bool]
}

type Option func(*Verifier)

// WithRoleCacheTTL caches role lookups for ttl. Without it every
// verification performs a fresh registry call.
func WithRoleCacheTTL(ttl time.Duration) Option {
	return func(v *Verifier) {
		v.roleCache = cache.NewTTLCache[roleKey, bool](ttl)
	}
}

func NewVerifier(logger *zap.Logger, recoverer Recoverer, registry RoleRegistry, opts ...Option) *Verifier {
	v := &Verifier{
		logger:    logger,
		recoverer: recoverer,
		registry:  registry,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyAuthorized recovers the signer of (message, signature) and returns
// its identity if it currently holds requiredRole. Unrecoverable
// signatures, failed registry lookups, and signers lacking the role all
// return an error wrapping types.ErrAuthorizationRejected.
func (v *Verifier) VerifyAuthorized(
	ctx context.Context,
	message []byte,
	signature []byte,
	requiredRole string,
) (common.Address, error) {
	identity, err := v.recoverer.Recover(message, signature)
	if err != nil {
		v.logger.Debug(
			"Failed to recover signer identity",
			zap.Error(err),
		)
		return common.Address{}, fmt.Errorf("%w: signer recovery: %v", types.ErrAuthorizationRejected, err)
	}

	hasRole, err := v.hasRole(ctx, identity, requiredRole)
	if err != nil {
		v.logger.Debug(
			"Role registry lookup failed",
			zap.Stringer("identity", identity),
			zap.String("role", requiredRole),
			zap.Error(err),
		)
		return common.Address{}, fmt.Errorf("%w: role lookup: %v", types.ErrAuthorizationRejected, err)
	}
	if !hasRole {
		v.logger.Debug(
			"Signer lacks required role",
			zap.Stringer("identity", identity),
			zap.String("role", requiredRole),
		)
		return common.Address{}, fmt.Errorf(
			"%w: %s does not hold role %s",
			types.ErrAuthorizationRejected, identity.Hex(), requiredRole,
		)
	}
	return identity, nil
}

func (v *Verifier) hasRole(ctx context.Context, identity common.Address, role string) (bool, error) {
	if v.roleCache == nil {
		return v.registry.HasRole(ctx, identity, role)
	}
	return v.roleCache.Get(roleKey{identity: identity, role: role}, func(k roleKey) (bool, error) {
		return v.registry.HasRole(ctx, k.identity, k.role)
	})
}
