// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package relayer drives outbound cross-chain transfer requests to
// completion or terminal failure: admission through the per-identity rate
// limiter, retry-wrapped chain submission, and confirmation through
// asynchronously observed chain events.
package relayer

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luxfi/relay/chain"
	"github.com/luxfi/relay/ratelimit"
	"github.com/luxfi/relay/retry"
	"github.com/luxfi/relay/types"
)

// Config bounds what the orchestrator accepts. An empty AllowedDestinations
// list permits any destination chain; a nil MaxFeeCeiling disables the fee
// sanity check.
type Config struct {
	AllowedDestinations []string
	MaxFeeCeiling       *big.Int
}

// Orchestrator owns the transfer request state machine. Requests are never
// deleted; archival of terminal requests is the surrounding application's
// concern.
type Orchestrator struct {
	logger   *zap.Logger
	limiter  *ratelimit.Limiter
	executor *retry.Executor
	client   chain.Client
	metrics  *Metrics

	allowedDestinations map[string]struct{}
	maxFeeCeiling       *big.Int

	lock     sync.RWMutex
	requests map[string]*types.TransferRequest
	byTxID   map[common.Hash]string
}

func NewOrchestrator(
	logger *zap.Logger,
	limiter *ratelimit.Limiter,
	executor *retry.Executor,
	client chain.Client,
	metrics *Metrics,
	cfg Config,
) *Orchestrator {
	allowed := make(map[string]struct{}, len(cfg.AllowedDestinations))
	for _, chainID := range cfg.AllowedDestinations {
		allowed[chainID] = struct{}{}
	}
	return &Orchestrator{
		logger:              logger,
		limiter:             limiter,
		executor:            executor,
		client:              client,
		metrics:             metrics,
		allowedDestinations: allowed,
		maxFeeCeiling:       cfg.MaxFeeCeiling,
		requests:            make(map[string]*types.TransferRequest),
		byTxID:              make(map[common.Hash]string),
	}
}

// Submit validates and admits a transfer request, persisting it in the
// pending state and returning its ID. Validation and rate-limit failures
// are synchronous; the actual chain submission happens in Drive.
func (o *Orchestrator) Submit(request *types.TransferRequest) (string, error) {
	if err := o.validate(request); err != nil {
		o.metrics.rejectedRequestCount.Inc()
		o.logger.Debug(
			"Rejected transfer request",
			zap.String("sourceIdentity", request.SourceIdentity),
			zap.Error(err),
		)
		return "", err
	}

	if !o.limiter.Admit(request.SourceIdentity) {
		o.metrics.rateLimitedRequestCount.Inc()
		o.logger.Info(
			"Rate limited transfer request",
			zap.String("sourceIdentity", request.SourceIdentity),
		)
		return "", types.ErrRateLimited
	}

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now()
	request.State = types.StatePending
	request.Attempts = 0
	request.LastError = ""
	request.CreatedAt = now
	request.UpdatedAt = now

	o.lock.Lock()
	defer o.lock.Unlock()
	if _, exists := o.requests[request.ID]; exists {
		return "", &types.ValidationError{Field: "id", Reason: "already in use"}
	}
	stored := *request
	o.requests[request.ID] = &stored

	o.logger.Info(
		"Accepted transfer request",
		zap.String("requestID", request.ID),
		zap.String("sourceIdentity", request.SourceIdentity),
		zap.String("destinationChain", request.DestinationChain),
	)
	return request.ID, nil
}

// Drive executes the chain submission for a pending request, retrying
// transient transport failures up to the executor's budget. On acceptance
// the request awaits its confirmation event; on exhaustion or a permanent
// rejection it is marked failed. A request already past pending is not
// re-driven.
func (o *Orchestrator) Drive(ctx context.Context, requestID string) error {
	o.lock.Lock()
	request, ok := o.requests[requestID]
	if !ok {
		o.lock.Unlock()
		return fmt.Errorf("%w: %s", types.ErrNotFound, requestID)
	}
	if !request.State.CanTransitionTo(types.StateSubmitting) {
		state := request.State
		o.lock.Unlock()
		return fmt.Errorf("%w: cannot drive request in state %s", types.ErrInvalidTransition, state)
	}
	o.setStateLocked(request, types.StateSubmitting)

	// Snapshot the fields the submission needs so no lock is held across
	// the chain call.
	destChain := request.DestinationChain
	to := request.DestinationIdentity
	payload := request.Payload
	maxFee := request.MaxFee
	o.lock.Unlock()

	var txID common.Hash
	attempts, err := o.executor.Execute(ctx, func() error {
		o.metrics.submissionAttemptCount.Inc()
		submitted, submitErr := o.client.Submit(ctx, destChain, to, payload, maxFee)
		if submitErr != nil {
			return submitErr
		}
		txID = submitted
		return nil
	})

	o.lock.Lock()
	defer o.lock.Unlock()
	request.Attempts = attempts

	if err != nil {
		request.LastError = err.Error()
		o.setStateLocked(request, types.StateFailed)
		o.metrics.failedTransferCount.WithLabelValues(destChain, failureReason(err)).Inc()
		o.logger.Error(
			"Transfer submission failed",
			zap.String("requestID", requestID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return err
	}

	request.TxID = txID
	o.byTxID[txID] = requestID
	o.setStateLocked(request, types.StateAwaitingConfirmation)
	o.logger.Info(
		"Transfer accepted by destination chain",
		zap.String("requestID", requestID),
		zap.Stringer("txID", txID),
		zap.Int("attempts", attempts),
	)
	return nil
}

// Cancel marks a pending request cancelled. Requests that have started
// submitting are not interruptible and run to their terminal outcome.
func (o *Orchestrator) Cancel(requestID string) error {
	o.lock.Lock()
	defer o.lock.Unlock()
	request, ok := o.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNotFound, requestID)
	}
	if !request.State.CanTransitionTo(types.StateCancelled) {
		return fmt.Errorf("%w: cannot cancel request in state %s", types.ErrInvalidTransition, request.State)
	}
	o.setStateLocked(request, types.StateCancelled)
	o.logger.Info("Cancelled transfer request", zap.String("requestID", requestID))
	return nil
}

// GetStatus returns the last known state of a request, including the last
// error when it failed terminally.
func (o *Orchestrator) GetStatus(requestID string) (types.TransferRequest, error) {
	o.lock.RLock()
	defer o.lock.RUnlock()
	request, ok := o.requests[requestID]
	if !ok {
		return types.TransferRequest{}, fmt.Errorf("%w: %s", types.ErrNotFound, requestID)
	}
	return *request, nil
}

// OnConfirmationEvent applies an authenticated confirmation event to the
// matching in-flight request. Events without a matching request are logged
// and dropped; they may have been observed before the local submission
// bookkeeping completed, or belong to another relayer.
func (o *Orchestrator) OnConfirmationEvent(event types.RelayEvent) error {
	var next types.TransferState
	switch event.Kind {
	case types.EventTransferCompleted:
		next = types.StateCompleted
	case types.EventTransferFailed:
		next = types.StateFailed
	default:
		return nil
	}

	o.lock.Lock()
	defer o.lock.Unlock()
	requestID, ok := o.byTxID[event.TxID]
	if !ok {
		o.logger.Debug(
			"Dropping confirmation event with no matching request",
			zap.String("eventID", event.EventID()),
		)
		return nil
	}
	request := o.requests[requestID]
	if !request.State.CanTransitionTo(next) {
		o.logger.Debug(
			"Dropping confirmation event for request in incompatible state",
			zap.String("requestID", requestID),
			zap.Stringer("state", request.State),
			zap.String("eventID", event.EventID()),
		)
		return nil
	}

	if next == types.StateFailed {
		request.LastError = fmt.Sprintf("destination chain reported failure: %s", event.EventID())
		o.metrics.failedTransferCount.WithLabelValues(request.DestinationChain, "chain_reported").Inc()
	} else {
		o.metrics.successfulTransferCount.WithLabelValues(request.DestinationChain).Inc()
	}
	o.setStateLocked(request, next)
	o.logger.Info(
		"Applied confirmation event",
		zap.String("requestID", requestID),
		zap.Stringer("state", next),
		zap.String("eventID", event.EventID()),
	)
	return nil
}

func (o *Orchestrator) setStateLocked(request *types.TransferRequest, next types.TransferState) {
	request.State = next
	request.UpdatedAt = time.Now()
}

func (o *Orchestrator) validate(request *types.TransferRequest) error {
	if request.SourceIdentity == "" {
		return &types.ValidationError{Field: "sourceIdentity", Reason: "is required"}
	}
	if !common.IsHexAddress(request.DestinationIdentity) {
		return &types.ValidationError{Field: "destinationIdentity", Reason: "is not a valid address"}
	}
	// An empty allow-list permits any destination chain.
	if len(o.allowedDestinations) > 0 {
		if _, ok := o.allowedDestinations[request.DestinationChain]; !ok {
			return &types.ValidationError{Field: "destinationChain", Reason: "is not in the allow-list"}
		}
	}
	if len(request.Payload) == 0 {
		return &types.ValidationError{Field: "payload", Reason: "is empty"}
	}
	if request.MaxFee == nil || request.MaxFee.Sign() <= 0 {
		return &types.ValidationError{Field: "maxFee", Reason: "must be positive"}
	}
	if o.maxFeeCeiling != nil && request.MaxFee.Cmp(o.maxFeeCeiling) > 0 {
		return &types.ValidationError{Field: "maxFee", Reason: "exceeds the configured ceiling"}
	}
	return nil
}

func failureReason(err error) string {
	if types.IsPermanent(err) {
		return "permanent"
	}
	return "exhausted"
}
