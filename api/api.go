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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ApiConfig holds the API server configuration. Governance and Ledger
// serve parameter reads and admin setters; everything that needs the
// node's clock goes through the Governor.
type ApiConfig struct {
	ListenAddress string
	Governance    *governance.GovernanceEngine
	Ledger        *ledger.Ledger
}

// Api is the governance REST API server.
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	governor   Governor
	httpServer *http.Server
	mu         sync.Mutex
}

// New creates a new API server instance.
func New(
	cfg ApiConfig,
	governor Governor,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Api{
		config:   cfg,
		logger:   logger,
		governor: governor,
	}
}

// Start starts the HTTP server in a background goroutine.
func (a *Api) Start(
	ctx context.Context,
) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc(
		"GET /governance/proposals",
		a.handleListProposals,
	)
	mux.HandleFunc(
		"POST /governance/proposals",
		a.handlePropose,
	)
	mux.HandleFunc(
		"GET /governance/proposals/{id}",
		a.handleGetProposal,
	)
	mux.HandleFunc(
		"GET /governance/proposals/{id}/state",
		a.handleGetProposalState,
	)
	mux.HandleFunc(
		"GET /governance/proposals/{id}/receipts",
		a.handleGetProposalReceipts,
	)
	mux.HandleFunc(
		"POST /governance/proposals/{id}/votes",
		a.handleCastVote,
	)
	mux.HandleFunc(
		"POST /governance/proposals/{id}/queue",
		a.handleQueue,
	)
	mux.HandleFunc(
		"POST /governance/proposals/{id}/execute",
		a.handleExecute,
	)
	mux.HandleFunc(
		"POST /governance/proposals/{id}/cancel",
		a.handleCancel,
	)
	mux.HandleFunc(
		"GET /governance/config",
		a.handleGovernanceConfig,
	)
	mux.HandleFunc(
		"POST /governance/admin/quorum-votes",
		a.handleSetParam(a.config.Governance.SetQuorumVotes),
	)
	mux.HandleFunc(
		"POST /governance/admin/voting-delay",
		a.handleSetParam(a.config.Governance.SetVotingDelay),
	)
	mux.HandleFunc(
		"POST /governance/admin/voting-period",
		a.handleSetParam(a.config.Governance.SetVotingPeriod),
	)
	mux.HandleFunc(
		"POST /governance/admin/proposal-threshold",
		a.handleSetParam(a.config.Governance.SetProposalThreshold),
	)
	mux.HandleFunc(
		"POST /governance/admin/timelock-delay",
		a.handleSetParam(a.config.Governance.SetTimelockDelay),
	)
	mux.HandleFunc(
		"POST /governance/admin/pending-admin",
		a.handleSetAccount(a.config.Governance.SetPendingAdmin),
	)
	mux.HandleFunc(
		"POST /governance/admin/accept",
		a.handleAcceptAdmin,
	)
	mux.HandleFunc(
		"GET /ledger/metadata",
		a.handleTokenMetadata,
	)
	mux.HandleFunc(
		"GET /ledger/accounts/{id}",
		a.handleGetAccount,
	)
	mux.HandleFunc(
		"GET /ledger/accounts/{id}/votes",
		a.handleGetAccountVotes,
	)
	mux.HandleFunc(
		"GET /ledger/holders",
		a.handleListHolders,
	)
	mux.HandleFunc(
		"POST /ledger/transfers",
		a.handleTransfer,
	)
	mux.HandleFunc(
		"POST /ledger/approvals",
		a.handleApprove,
	)
	mux.HandleFunc(
		"POST /ledger/mint",
		a.handleMint,
	)
	mux.HandleFunc(
		"POST /ledger/burn",
		a.handleBurn,
	)
	mux.HandleFunc(
		"POST /ledger/delegate",
		a.handleDelegate,
	)
	mux.HandleFunc(
		"POST /ledger/admin/fee",
		a.handleSetParam(a.config.Ledger.SetFee),
	)
	mux.HandleFunc(
		"POST /ledger/admin/fee-to",
		a.handleSetAccount(a.config.Ledger.SetFeeTo),
	)
	mux.HandleFunc(
		"POST /ledger/admin/owner",
		a.handleSetAccount(a.config.Ledger.SetOwner),
	)

	server := &http.Server{
		Addr: a.config.ListenAddress,
		// Use h2c so we can serve HTTP/2 without TLS
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Start the server with deterministic error detection
	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}

	a.logger.Info(
		"governance API listener started on " +
			a.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()

		if srv != nil {
			a.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(
				shutdownCtx,
			); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context "+
						"cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (a *Api) Stop(
	ctx context.Context,
) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug(
			"shutting down API server",
		)
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer starts the HTTP server with deterministic error
// detection. It binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine.
func (a *Api) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
