// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// relayd runs the relay coordinator against an in-process fake chain. It
// exists to exercise the full submit/drive/confirm loop locally; real
// deployments embed the coordinator and inject their own chain client and
// event source.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/relay/auth"
	"github.com/luxfi/relay/chain"
	"github.com/luxfi/relay/config"
	"github.com/luxfi/relay/metrics"
	"github.com/luxfi/relay/monitor"
	"github.com/luxfi/relay/ratelimit"
	"github.com/luxfi/relay/relayer"
	"github.com/luxfi/relay/retry"
	"github.com/luxfi/relay/types"
)

var version = "v0.0.0-dev"

const devChainID = "devnet"

var rootCmd = &cobra.Command{
	Use:     "relayd",
	Short:   "Cross-chain relay coordinator daemon",
	Version: version,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().String(config.ConfigFileKey, "", "Path to the JSON configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return fmt.Errorf("couldn't build viper: %w", err)
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return fmt.Errorf("couldn't build config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("couldn't build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Initializing relay coordinator", zap.String("version", version))

	registry := metrics.StartMetricsServer(logger, cfg.MetricsPort)

	limiter := ratelimit.NewLimiter(cfg.MaxRequestsPerWindow, cfg.RateLimitWindow())

	var retryOpts []retry.Option
	if cfg.ExponentialBackoff {
		retryOpts = append(retryOpts, retry.WithExponentialBackoff())
	}
	executor := retry.NewExecutor(logger, cfg.MaxSubmitAttempts, cfg.RetryBaseDelay(), retryOpts...)

	// Dev wiring: a generated key stands in for the admin relayer, and the
	// fake chain signs its confirmation events with it.
	adminKey, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("couldn't generate admin key: %w", err)
	}
	adminAddress := crypto.PubkeyToAddress(adminKey.PublicKey)
	roles := auth.NewStaticRegistry()
	roles.Grant(cfg.RequiredRole, adminAddress)

	var authOpts []auth.Option
	if ttl := cfg.RoleCacheTTL(); ttl > 0 {
		authOpts = append(authOpts, auth.WithRoleCacheTTL(ttl))
	}
	verifier := auth.NewVerifier(logger, auth.SecpRecoverer{}, roles, authOpts...)

	fakeChain := chain.NewFake(logger, devChainID, func(message []byte) ([]byte, error) {
		return crypto.Sign(accounts.TextHash(message), adminKey)
	}, time.Second)

	orchestrator := relayer.NewOrchestrator(
		logger,
		limiter,
		executor,
		fakeChain,
		relayer.NewMetrics(registry),
		relayer.Config{
			AllowedDestinations: cfg.AllowedDestinations,
			MaxFeeCeiling:       cfg.MaxFeeCeilingInt(),
		},
	)

	eventMonitor := monitor.NewMonitor(
		logger,
		verifier,
		monitor.WithDedupCapacity(cfg.DedupCacheSize),
		monitor.WithRequiredRole(cfg.RequiredRole),
	)
	eventMonitor.RegisterHandler(types.EventTransferCompleted, orchestrator.OnConfirmationEvent)
	eventMonitor.RegisterHandler(types.EventTransferFailed, orchestrator.OnConfirmationEvent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventMonitor.Subscribe(ctx, fakeChain)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return demoTransfer(gctx, logger, orchestrator, adminAddress.Hex())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Relay coordinator exiting")
		return nil
	})
	return g.Wait()
}

// demoTransfer submits and drives a single transfer through the fake chain
// so a local run exercises the whole state machine.
func demoTransfer(
	ctx context.Context,
	logger *zap.Logger,
	orchestrator *relayer.Orchestrator,
	sourceIdentity string,
) error {
	requestID, err := orchestrator.Submit(&types.TransferRequest{
		SourceIdentity:      sourceIdentity,
		DestinationIdentity: "0x000000000000000000000000000000000000dEaD",
		DestinationChain:    devChainID,
		Payload:             []byte("hello from relayd"),
		MaxFee:              big.NewInt(1_000_000),
	})
	if err != nil {
		return fmt.Errorf("demo submit failed: %w", err)
	}
	if err := orchestrator.Drive(ctx, requestID); err != nil {
		logger.Error("Demo drive failed", zap.String("requestID", requestID), zap.Error(err))
		return nil
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			status, err := orchestrator.GetStatus(requestID)
			if err != nil {
				return err
			}
			if status.State.Terminal() {
				logger.Info(
					"Demo transfer reached terminal state",
					zap.String("requestID", requestID),
					zap.Stringer("state", status.State),
					zap.Int("attempts", status.Attempts),
				)
				return nil
			}
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = atomicLevel
	return logCfg.Build()
}
