// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/bravo"
	"github.com/blinklabs-io/bravo/api"
	"github.com/blinklabs-io/bravo/internal/config"
	"github.com/blinklabs-io/bravo/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildOptions translates a file/env config into node config options
func BuildOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]bravo.ConfigOptionFunc, error) {
	// Parse shutdown timeout
	shutdownTimeout := 30 * time.Second // Default timeout
	if cfg.ShutdownTimeout != "" {
		var err error
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}
	opts := []bravo.ConfigOptionFunc{
		bravo.WithLogger(logger),
		bravo.WithName(cfg.Name),
		bravo.WithAdmin(ledger.AccountID(cfg.Admin)),
		bravo.WithSelfAccount(ledger.AccountID(cfg.SelfAccount)),
		bravo.WithQuorumVotes(cfg.QuorumVotes),
		bravo.WithProposalThreshold(cfg.ProposalThreshold),
		bravo.WithVotingDelay(cfg.VotingDelay),
		bravo.WithVotingPeriod(cfg.VotingPeriod),
		bravo.WithTimelockDelay(cfg.TimelockDelay),
		bravo.WithTokenMetadata(
			cfg.TokenName,
			cfg.TokenSymbol,
			cfg.TokenDecimals,
		),
		bravo.WithTokenFee(cfg.TokenFee),
		bravo.WithTokenFeeTo(ledger.AccountID(cfg.TokenFeeTo)),
		bravo.WithInitialSupply(cfg.InitialSupply),
		bravo.WithDatabasePath(cfg.DatabasePath),
		bravo.WithBlobPlugin(cfg.BlobPlugin),
		bravo.WithMetadataPlugin(cfg.MetadataPlugin),
		bravo.WithApiListenAddress(
			fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
		),
		bravo.WithShutdownTimeout(shutdownTimeout),
		bravo.WithTracing(cfg.Tracing),
		bravo.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		bravo.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.VoteSourceUrl != "" {
		// Voting power lives on a remote ledger node
		opts = append(
			opts,
			bravo.WithVoteSource(api.NewVoteClient(cfg.VoteSourceUrl)),
		)
	}
	if len(cfg.KafkaBrokers) > 0 {
		opts = append(
			opts,
			bravo.WithKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic),
		)
	}
	return opts, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	// Parse shutdown timeout
	shutdownTimeout := 30 * time.Second // Default timeout
	if cfg.ShutdownTimeout != "" {
		var err error
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}

	opts, err := BuildOptions(cfg, logger)
	if err != nil {
		return err
	}
	b, err := bravo.New(bravo.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+fmt.Sprintf(
			"%s:%d",
			cfg.BindAddr,
			cfg.MetricsPort,
		),
		"component",
		"node",
	)
	metricsServer := &http.Server{
		Addr: fmt.Sprintf(
			"%s:%d",
			cfg.BindAddr,
			cfg.MetricsPort,
		),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		err := b.Run(signalCtx)
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")

		// Shutdown metrics server
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}

		// Shutdown node
		if err := b.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		if err == nil {
			logger.Info("node stopped")
			// Graceful cleanup
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
			if err := b.Stop(); err != nil {
				logger.Error("shutdown errors occurred", "error", err)
				return err
			}
			return nil
		}
		logger.Error("node error", "error", err)
		signalCtxStop()

		// Shutdown node resources
		if stopErr := b.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}

		// Cleanup on error
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("metrics server shutdown error", "error", shutdownErr)
		}

		return err
	}
}
