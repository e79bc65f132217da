// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package monitor consumes raw chain events, authenticates them, and
// dispatches each distinct event exactly once to the registered handlers.
package monitor

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/luxfi/relay/auth"
	"github.com/luxfi/relay/cache"
	"github.com/luxfi/relay/chain"
	"github.com/luxfi/relay/types"
)

// DefaultDedupCapacity bounds the replay-protection set. Eviction is FIFO;
// an evicted event ID can in principle be replayed, so the capacity should
// comfortably exceed the source's redelivery horizon.
const DefaultDedupCapacity = 8192

// Handler reacts to an authenticated event. Handlers run synchronously on
// the dispatch loop and must not block indefinitely.
type Handler func(event types.RelayEvent) error

// Authorizer authenticates state-changing events before dispatch.
type Authorizer interface {
	VerifyAuthorized(ctx context.Context, message, signature []byte, requiredRole string) (common.Address, error)
}

// Monitor normalizes inbound chain events into handler invocations. Each
// distinct event ID is dispatched at most once, even across redeliveries,
// and events carrying state-changing payloads must be signed by a holder of
// the required role.
type Monitor struct {
	logger       *zap.Logger
	authorizer   Authorizer
	requiredRole string
	seen         *cache.Set[string]

	handlers handlerRegistry
}

type Option func(*Monitor)

// WithDedupCapacity overrides the replay-protection set size.
func WithDedupCapacity(capacity int) Option {
	return func(m *Monitor) {
		m.seen = cache.NewSet[string](capacity)
	}
}

// WithRequiredRole overrides the role an event signer must hold.
func WithRequiredRole(role string) Option {
	return func(m *Monitor) {
		m.requiredRole = role
	}
}

func NewMonitor(logger *zap.Logger, authorizer Authorizer, opts ...Option) *Monitor {
	m := &Monitor{
		logger:       logger,
		authorizer:   authorizer,
		requiredRole: auth.RoleAdmin,
		seen:         cache.NewSet[string](DefaultDedupCapacity),
	}
	m.handlers.byKind = make(map[types.EventKind][]Handler)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterHandler registers handler for events of the given kind. Handlers
// registered after events of that kind have been dispatched only see later
// events.
func (m *Monitor) RegisterHandler(kind types.EventKind, handler Handler) {
	m.handlers.register(kind, handler)
}

// Subscribe starts a dispatch loop draining the event source until ctx is
// cancelled or the source closes its channel.
func (m *Monitor) Subscribe(ctx context.Context, source chain.EventSource) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-source.Err():
				m.logger.Warn("Event source error", zap.Error(err))
			case event, ok := <-source.Events():
				if !ok {
					m.logger.Info("Event source closed")
					return
				}
				m.Process(ctx, event)
			}
		}
	}()
}

// Process runs a single event through deduplication, authorization, and
// dispatch. An event counts as seen once processing starts, regardless of
// the authorization or handler outcome, so a redelivery never causes
// duplicate side effects.
func (m *Monitor) Process(ctx context.Context, event types.RelayEvent) {
	eventID := event.EventID()
	if !m.seen.Add(eventID) {
		m.logger.Debug(
			"Discarding duplicate event",
			zap.String("eventID", eventID),
		)
		return
	}

	if event.Kind.RequiresAuthorization() {
		signer, err := m.authorizer.VerifyAuthorized(ctx, event.SigningPayload(), event.Signature, m.requiredRole)
		if err != nil {
			m.logger.Warn(
				"Discarding unauthorized event",
				zap.String("eventID", eventID),
				zap.Stringer("kind", event.Kind),
				zap.Error(err),
			)
			return
		}
		m.logger.Debug(
			"Authorized event",
			zap.String("eventID", eventID),
			zap.Stringer("signer", signer),
		)
	}

	for _, handler := range m.handlers.forKind(event.Kind) {
		if err := m.invoke(handler, event); err != nil {
			m.logger.Error(
				"Event handler failed",
				zap.String("eventID", eventID),
				zap.Stringer("kind", event.Kind),
				zap.Error(err),
			)
		}
	}
}

// invoke isolates a single handler call; a panicking handler must not take
// down the dispatch loop.
func (m *Monitor) invoke(handler Handler, event types.RelayEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(event)
}
