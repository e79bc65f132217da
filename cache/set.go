// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"
)

// Set is a thread-safe bounded set with FIFO eviction. Once the capacity is
// reached, adding a new member evicts the oldest one. The event dispatcher
// uses it to remember processed event IDs for replay protection.
type Set[K comparable] struct {
	lk       sync.Mutex
	members  map[K]struct{}
	queue    []K
	capacity int
}

func NewSet[K comparable](capacity int) *Set[K] {
	if capacity < 1 {
		capacity = 1
	}
	return &Set[K]{
		members:  make(map[K]struct{}, capacity),
		queue:    make([]K, 0, capacity),
		capacity: capacity,
	}
}

// Add inserts key into the set, evicting the oldest member if the set is
// full. It returns false if key was already present.
func (s *Set[K]) Add(key K) bool {
	s.lk.Lock()
	defer s.lk.Unlock()

	if _, exists := s.members[key]; exists {
		return false
	}

	if len(s.queue) >= s.capacity {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.members, oldest)
	}

	s.members[key] = struct{}{}
	s.queue = append(s.queue, key)
	return true
}

// Contains reports whether key is in the set.
func (s *Set[K]) Contains(key K) bool {
	s.lk.Lock()
	defer s.lk.Unlock()
	_, exists := s.members[key]
	return exists
}

// Len returns the current number of members.
func (s *Set[K]) Len() int {
	s.lk.Lock()
	defer s.lk.Unlock()
	return len(s.members)
}
