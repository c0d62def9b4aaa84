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

package bravo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/bravo/api"
	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/event"
	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
)

// Bravo is an embedded Governor Bravo governance node: a token ledger
// with checkpointed voting power, a proposal engine, and a timelock,
// sharing one database and one event bus. New assembles and loads all
// state, so operations are available immediately; Run starts the
// optional servers and sinks and blocks until Stop.
type Bravo struct {
	config        Config
	eventBus      *event.EventBus
	db            *database.Database
	logMemory     *database.BlobMemory
	log           *appendlog.Log
	ledger        *ledger.Ledger
	governance    *governance.GovernanceEngine
	timelock      *governance.Timelock
	voteSource    governance.VoteSource
	dispatcher    governance.Dispatcher
	forwarder     *event.Forwarder
	api           *api.Api
	nowFunc       func() uint64
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Bravo, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	b := &Bravo{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	b.configPopulateDefaults()
	if err := b.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	b.configWarnBounds()
	b.nowFunc = b.config.timeSource
	if b.nowFunc == nil {
		b.nowFunc = func() uint64 {
			return uint64(time.Now().UnixNano())
		}
	}
	// Load database
	dbConfig := &database.Config{
		DataDir:        b.config.dataDir,
		Logger:         b.config.logger,
		PromRegistry:   b.config.promRegistry,
		BlobPlugin:     b.config.blobPlugin,
		MetadataPlugin: b.config.metadataPlugin,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		b.config.logger.Error(
			"failed to create database",
			"error",
			err,
		)
		return nil, err
	}
	b.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			// The stores were not committed together, so the on-disk
			// state is a partial restore. Refuse to open it.
			b.config.logger.Error(
				"database stores are out of step",
				"error",
				err,
			)
		}
		b.closeDatabase()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Line the append log up with the durable head recorded in the
	// governance params before any subsystem reads from it
	params, err := db.GetGovernanceParams(nil)
	if err != nil {
		b.closeDatabase()
		return nil, fmt.Errorf("failed to load governance params: %w", err)
	}
	b.logMemory = database.NewBlobMemory(db)
	if params != nil {
		b.logMemory.Restore(params.LogHead)
	}
	b.log = appendlog.NewLog(b.logMemory)
	// Load token ledger
	b.ledger, err = ledger.NewLedger(ledger.LedgerConfig{
		PromRegistry:  b.config.promRegistry,
		Logger:        b.config.logger,
		EventBus:      b.eventBus,
		DB:            b.db,
		Name:          b.config.tokenName,
		Symbol:        b.config.tokenSymbol,
		Decimals:      b.config.tokenDecimals,
		Owner:         b.config.admin,
		FeeTo:         b.config.tokenFeeTo,
		Fee:           b.config.tokenFee,
		InitialSupply: b.config.initialSupply,
	})
	if err != nil {
		b.closeDatabase()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	// Load timelock
	b.timelock, err = governance.NewTimelock(governance.TimelockConfig{
		PromRegistry: b.config.promRegistry,
		Logger:       b.config.logger,
		DB:           b.db,
		Delay:        b.config.timelockDelay,
	})
	if err != nil {
		b.closeDatabase()
		return nil, fmt.Errorf("failed to load timelock: %w", err)
	}
	// Load governance engine
	b.governance, err = governance.NewGovernanceEngine(
		governance.GovernanceConfig{
			PromRegistry:      b.config.promRegistry,
			Logger:            b.config.logger,
			EventBus:          b.eventBus,
			DB:                b.db,
			Log:               b.log,
			Timelock:          b.timelock,
			Name:              b.config.name,
			Admin:             b.config.admin,
			QuorumVotes:       b.config.quorumVotes,
			ProposalThreshold: b.config.proposalThreshold,
			VotingDelay:       b.config.votingDelay,
			VotingPeriod:      b.config.votingPeriod,
			TimelockDelay:     b.config.timelockDelay,
		},
	)
	if err != nil {
		b.closeDatabase()
		return nil, fmt.Errorf("failed to load governance engine: %w", err)
	}
	// Wire vote source and dispatcher
	b.voteSource = b.config.voteSource
	if b.voteSource == nil {
		b.voteSource = &ledgerVoteSource{ledger: b.ledger}
	}
	b.dispatcher = &loopbackDispatcher{
		engine: b.governance,
		self:   b.config.selfAccount,
		next:   b.config.dispatcher,
	}
	return b, nil
}

// Run starts the configured servers and sinks and blocks until the
// context is canceled or Stop is called
func (b *Bravo) Run(ctx context.Context) error {
	// Configure tracing
	if b.config.tracing {
		if err := b.setupTracing(); err != nil {
			return err
		}
	}
	// Configure event sink forwarding
	sink := b.config.eventSink
	if len(b.config.kafkaBrokers) > 0 {
		kafkaSink, err := event.NewKafkaSink(
			b.config.kafkaBrokers,
			b.config.kafkaTopic,
		)
		if err != nil {
			return fmt.Errorf("failed to create kafka sink: %w", err)
		}
		sink = kafkaSink
	}
	if sink != nil {
		b.forwarder = event.NewForwarder(
			b.eventBus,
			sink,
			b.config.logger,
			forwardedEventTypes()...,
		)
	}
	// Start API listener
	if b.config.apiListenAddress != "" {
		b.api = api.New(
			api.ApiConfig{
				ListenAddress: b.config.apiListenAddress,
				Governance:    b.governance,
				Ledger:        b.ledger,
			},
			b,
			b.config.logger,
		)
		//nolint:contextcheck
		if err := b.api.Start(context.Background()); err != nil {
			return err
		}
	}
	// Monitor context for cancellation
	go func() {
		select {
		case <-ctx.Done():
			if err := b.Stop(); err != nil {
				b.config.logger.Error(
					"shutdown errors occurred",
					"component", "bravo",
					"error", err,
				)
			}
		case <-b.done:
		}
	}()

	// Wait for shutdown
	<-b.done
	return nil
}

func (b *Bravo) Stop() error {
	var err error
	b.shutdownOnce.Do(func() {
		err = b.shutdown()
	})
	return err
}

func (b *Bravo) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if b.config.shutdownTimeout > 0 {
		shutdownTimeout = b.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	b.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	if b.api != nil {
		if stopErr := b.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain the event sink
	if b.forwarder != nil {
		if flushErr := b.forwarder.Flush(); flushErr != nil {
			b.config.logger.Warn(
				"undelivered event dropped at shutdown",
				"component", "bravo",
				"error", flushErr,
			)
		}
		if stopErr := b.forwarder.Stop(); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("event forwarder shutdown: %w", stopErr),
			)
		}
	}

	// Phase 3: Close the database
	if closeErr := b.closeDatabase(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
	}

	// Phase 4: Cleanup resources
	for _, fn := range b.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	b.shutdownFuncs = nil

	if b.eventBus != nil {
		b.eventBus.Stop()
	}

	b.config.logger.Debug("graceful shutdown complete")
	close(b.done)
	return err
}

func (b *Bravo) closeDatabase() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Ledger returns the embedded token ledger
func (b *Bravo) Ledger() *ledger.Ledger {
	return b.ledger
}

// Governance returns the embedded governance engine
func (b *Bravo) Governance() *governance.GovernanceEngine {
	return b.governance
}

// EventBus returns the node's event bus
func (b *Bravo) EventBus() *event.EventBus {
	return b.eventBus
}

func (b *Bravo) now() uint64 {
	return b.nowFunc()
}

// forwardedEventTypes lists the event types forwarded to the external
// sink: every ledger and governance state transition.
func forwardedEventTypes() []event.EventType {
	return []event.EventType{
		ledger.TransferEventType,
		ledger.ApproveEventType,
		ledger.MintEventType,
		ledger.BurnEventType,
		ledger.DelegateEventType,
		governance.ProposeEventType,
		governance.VoteEventType,
		governance.QueueEventType,
		governance.ExecuteEventType,
		governance.CancelEventType,
		governance.SetPendingAdminEventType,
		governance.AcceptAdminEventType,
	}
}
