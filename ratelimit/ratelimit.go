// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ratelimit implements per-identity sliding-window admission
// control for outbound relay requests.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the stricter budget applied to chain-initiating
	// calls.
	DefaultMaxRequests = 5

	DefaultWindow = time.Minute
)

// window holds the admission timestamps for a single identity inside the
// trailing interval. Each identity carries its own lock so that unrelated
// identities never block each other.
type window struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// Limiter admits at most maxRequests events per identity within the
// trailing windowDuration. Rejections have no side effects; the caller may
// retry after the window rolls.
type Limiter struct {
	maxRequests    int
	windowDuration time.Duration
	now            func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type Option func(*Limiter)

// WithClock overrides the time source, used by tests to roll the window
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func NewLimiter(maxRequests int, windowDuration time.Duration, opts ...Option) *Limiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if windowDuration <= 0 {
		windowDuration = DefaultWindow
	}
	l := &Limiter{
		maxRequests:    maxRequests,
		windowDuration: windowDuration,
		now:            time.Now,
		windows:        make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit checks the identity's budget at the current time. Entries older
// than the trailing window are pruned before counting; if the remaining
// count is below the budget the admission is recorded and true is
// returned, otherwise state is left untouched and false is returned.
func (l *Limiter) Admit(identity string) bool {
	w := l.window(identity)
	now := l.now()
	cutoff := now.Add(-l.windowDuration)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Timestamps are appended in order, so pruning only needs to find the
	// first entry still inside the window.
	keep := 0
	for keep < len(w.timestamps) && !w.timestamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		w.timestamps = append(w.timestamps[:0], w.timestamps[keep:]...)
	}

	if len(w.timestamps) >= l.maxRequests {
		return false
	}
	w.timestamps = append(w.timestamps, now)
	return true
}

func (l *Limiter) window(identity string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[identity]
	if !ok {
		w = &window{}
		l.windows[identity] = w
	}
	return w
}
