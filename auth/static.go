// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var _ RoleRegistry = (*StaticRegistry)(nil)

// StaticRegistry is an in-memory role registry for deployments without a
// chain-backed registry, and for tests. Production deployments inject a
// registry backed by the chain's access-control state.
type StaticRegistry struct {
	lock  sync.RWMutex
	roles map[string]map[common.Address]struct{}
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		roles: make(map[string]map[common.Address]struct{}),
	}
}

// Grant adds identity to the set of holders of role.
func (r *StaticRegistry) Grant(role string, identity common.Address) {
	r.lock.Lock()
	defer r.lock.Unlock()
	holders, ok := r.roles[role]
	if !ok {
		holders = make(map[common.Address]struct{})
		r.roles[role] = holders
	}
	holders[identity] = struct{}{}
}

// Revoke removes identity from the holders of role.
func (r *StaticRegistry) Revoke(role string, identity common.Address) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.roles[role], identity)
}

func (r *StaticRegistry) HasRole(_ context.Context, identity common.Address, role string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	_, ok := r.roles[role][identity]
	return ok, nil
}
