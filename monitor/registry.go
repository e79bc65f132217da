// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package monitor

import (
	"sync"

	"github.com/luxfi/relay/types"
)

// handlerRegistry keys handlers by event kind. Registration is expected at
// startup but is safe at any point.
type handlerRegistry struct {
	lock   sync.RWMutex
	byKind map[types.EventKind][]Handler
}

func (r *handlerRegistry) register(kind types.EventKind, handler Handler) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.byKind[kind] = append(r.byKind[kind], handler)
}

// forKind returns a snapshot so dispatch never holds the registry lock
// while handlers run.
func (r *handlerRegistry) forKind(kind types.EventKind) []Handler {
	r.lock.RLock()
	defer r.lock.RUnlock()
	handlers := r.byKind[kind]
	snapshot := make([]Handler, len(handlers))
	copy(snapshot, handlers)
	return snapshot
}
