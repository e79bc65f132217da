// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cache provides the small caching primitives used by the relay
// coordinator: a TTL cache for role-registry lookups and a bounded
// insertion-ordered set for event replay protection.
package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type ttlItem[V any] struct {
	value     V
	timestamp time.Time
}

// TTLCache caches fetched values with a per-key TTL. Concurrent fetches for
// the same key are deduplicated via single-flight, so a burst of lookups
// for one identity results in a single registry call.
type TTLCache[K comparable, V any] struct {
	ttl     time.Duration
	lock    sync.RWMutex
	data    map[K]ttlItem[V]
	sfGroup singleflight.Group
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:  ttl,
		data: make(map[K]ttlItem[V]),
	}
}

// Get returns the cached value for key if it is still fresh, otherwise
// fetches it with fetchFunc and caches the result. Fetch errors are not
// cached.
func (c *TTLCache[K, V]) Get(key K, fetchFunc func(K) (V, error)) (V, error) {
	c.lock.RLock()
	item, exists := c.data[key]
	c.lock.RUnlock()
	if exists && time.Since(item.timestamp) < c.ttl {
		return item.value, nil
	}

	v, err, _ := c.sfGroup.Do(keyToString(key), func() (interface{}, error) {
		value, fetchErr := fetchFunc(key)
		if fetchErr != nil {
			return *new(V), fetchErr
		}
		c.lock.Lock()
		c.data[key] = ttlItem[V]{value: value, timestamp: time.Now()}
		c.lock.Unlock()
		return value, nil
	})
	if err != nil {
		return *new(V), err
	}
	return v.(V), nil
}

// Evict drops the cached value for key, forcing the next Get to fetch.
func (c *TTLCache[K, V]) Evict(key K) {
	c.lock.Lock()
	delete(c.data, key)
	c.lock.Unlock()
}

// keyToString is defined to allow for both fmt.Stringer and primitive string types.
func keyToString[K comparable](key K) string {
	if s, ok := any(key).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", key)
}
