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

package governance

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"github.com/blinklabs-io/bravo/event"
	"github.com/blinklabs-io/bravo/ledger"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MinVotingPeriod is the minimum duration of voting on a proposal
	MinVotingPeriod = OneDay
	// MaxVotingPeriod is the maximum duration of voting on a proposal
	MaxVotingPeriod = 14 * OneDay
	// MinVotingDelay is the minimum delay before voting opens
	MinVotingDelay = 1
	// MaxVotingDelay is the maximum delay before voting opens
	MaxVotingDelay = 7 * OneDay
	// MinProposalThreshold is the minimum voting power required to
	// propose, in base token units
	MinProposalThreshold = 50_000 * 100_000_000
	// MaxProposalThreshold is the maximum voting power required to
	// propose, in base token units
	MaxProposalThreshold = 100_000 * 100_000_000
)

type GovernanceConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	// DB is the write-through store. With a nil DB the engine runs
	// memory-only, which is primarily useful for tests and embedding.
	DB *database.Database
	// Log stores proposal descriptions and vote reasons. With a nil Log
	// the engine uses a private in-memory log.
	Log *appendlog.Log
	// Timelock holds queued tasks. With a nil Timelock the engine
	// creates a memory-only one using TimelockDelay.
	Timelock          *Timelock
	Name              string
	Admin             ledger.AccountID
	QuorumVotes       uint64
	ProposalThreshold uint64
	VotingDelay       uint64
	VotingPeriod      uint64
	TimelockDelay     uint64
}

// GovernanceEngine runs the proposal lifecycle: creation, voting,
// queueing through the timelock, the two-phase execute, and
// cancellation. State lives in memory and is written through to the
// database on every mutation. The engine never performs external calls
// itself; callers resolve voting power and dispatch queued tasks and
// feed the results in.
type GovernanceEngine struct {
	config            GovernanceConfig
	logger            *slog.Logger
	eventBus          *event.EventBus
	db                *database.Database
	log               *appendlog.Log
	timelock          *Timelock
	metrics           governanceMetrics
	name              string
	admin             ledger.AccountID
	pendingAdmin      ledger.AccountID
	quorumVotes       uint64
	proposalThreshold uint64
	votingDelay       uint64
	votingPeriod      uint64
	proposals         []*Proposal
	receipts          map[uint64]map[ledger.AccountID]*Receipt
	latestProposalIds map[ledger.AccountID]uint64
	sync.RWMutex
}

// NewGovernanceEngine creates a GovernanceEngine from the given config.
// When the database already holds governance state it is loaded as-is
// and the config's governance parameters are ignored; otherwise the
// engine is seeded from the config.
func NewGovernanceEngine(config GovernanceConfig) (*GovernanceEngine, error) {
	g := &GovernanceEngine{
		config:            config,
		eventBus:          config.EventBus,
		db:                config.DB,
		log:               config.Log,
		timelock:          config.Timelock,
		receipts:          make(map[uint64]map[ledger.AccountID]*Receipt),
		latestProposalIds: make(map[ledger.AccountID]uint64),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		g.logger = config.Logger
	}
	if g.log == nil {
		g.log = appendlog.NewLog(appendlog.NewMemoryBuffer())
	}
	if g.timelock == nil {
		timelock, err := NewTimelock(TimelockConfig{
			PromRegistry: config.PromRegistry,
			Logger:       config.Logger,
			Delay:        config.TimelockDelay,
		})
		if err != nil {
			return nil, err
		}
		g.timelock = timelock
	}
	g.metrics.init(config.PromRegistry)
	if err := g.load(); err != nil {
		return nil, err
	}
	g.metrics.proposals.Set(float64(len(g.proposals)))
	return g, nil
}

// Timelock returns the timelock holding this engine's queued tasks
func (g *GovernanceEngine) Timelock() *Timelock {
	return g.timelock
}

func (g *GovernanceEngine) load() error {
	if g.db == nil {
		g.seedMemory()
		return nil
	}
	params, err := g.db.GetGovernanceParams(nil)
	if err != nil {
		return fmt.Errorf("failed to load governance params: %w", err)
	}
	if params == nil {
		return g.seed()
	}
	g.name = params.Name
	g.admin = ledger.AccountID(params.Admin)
	g.pendingAdmin = ledger.AccountID(params.PendingAdmin)
	g.quorumVotes = uint64(params.QuorumVotes)
	g.proposalThreshold = uint64(params.ProposalThreshold)
	g.votingDelay = params.VotingDelay
	g.votingPeriod = params.VotingPeriod
	g.timelock.SetDelay(params.TimelockDelay)
	// Line the append log up with the durable head so positions stored
	// in proposals and receipts resolve
	if err := g.log.Restore(params.LogHead); err != nil {
		return fmt.Errorf("failed to restore append log: %w", err)
	}
	rows, err := g.db.GetProposals(nil)
	if err != nil {
		return fmt.Errorf("failed to load proposals: %w", err)
	}
	for _, row := range rows {
		p := rowToProposal(&row)
		g.proposals = append(g.proposals, p)
		g.latestProposalIds[p.Proposer] = p.ID
	}
	receiptRows, err := g.db.GetAllReceipts(nil)
	if err != nil {
		return fmt.Errorf("failed to load vote receipts: %w", err)
	}
	for _, row := range receiptRows {
		receipt := rowToReceipt(&row)
		if _, ok := g.receipts[row.ProposalID]; !ok {
			g.receipts[row.ProposalID] = make(map[ledger.AccountID]*Receipt)
		}
		g.receipts[row.ProposalID][receipt.Voter] = receipt
	}
	g.logger.Info(
		"loaded governance state",
		"component", "governance",
		"name", g.name,
		"proposals", len(g.proposals),
		"queued_tasks", g.timelock.Len(),
	)
	return nil
}

func (g *GovernanceEngine) seedMemory() {
	g.name = g.config.Name
	g.admin = g.config.Admin
	g.quorumVotes = g.config.QuorumVotes
	g.proposalThreshold = g.config.ProposalThreshold
	g.votingDelay = g.config.VotingDelay
	g.votingPeriod = g.config.VotingPeriod
}

func (g *GovernanceEngine) seed() error {
	g.seedMemory()
	err := g.withMetadataTxn(func(txn *database.Txn) error {
		return g.persistParams(g.paramsRow(), txn)
	})
	if err != nil {
		return fmt.Errorf("failed to seed governance state: %w", err)
	}
	g.logger.Info(
		"seeded governance state",
		"component", "governance",
		"name", g.name,
		"admin", g.admin,
	)
	return nil
}

// withMetadataTxn runs fn inside a read-write metadata transaction and
// commits it. With no database configured, fn runs with a nil
// transaction so timelock calls inside it still apply.
func (g *GovernanceEngine) withMetadataTxn(
	fn func(txn *database.Txn) error,
) error {
	if g.db == nil {
		return fn(nil)
	}
	owned := true
	txn := g.db.MetadataTxn(true)
	defer func() {
		if owned {
			txn.Rollback() //nolint:errcheck
		}
	}()
	if err := fn(txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	owned = false
	return nil
}

func (g *GovernanceEngine) persistProposal(
	p *Proposal,
	txn *database.Txn,
) error {
	if g.db == nil {
		return nil
	}
	if err := g.db.SetProposal(proposalRow(p), txn); err != nil {
		return fmt.Errorf(
			"failed to persist proposal %d: %w: %w",
			p.ID,
			ErrStorageError,
			err,
		)
	}
	return nil
}

func (g *GovernanceEngine) persistReceipt(
	proposalID uint64,
	receipt *Receipt,
	txn *database.Txn,
) error {
	if g.db == nil {
		return nil
	}
	if err := g.db.SetReceipt(receiptRow(proposalID, receipt), txn); err != nil {
		return fmt.Errorf(
			"failed to persist vote receipt: %w: %w",
			ErrStorageError,
			err,
		)
	}
	return nil
}

func (g *GovernanceEngine) persistParams(
	params *models.GovernanceParams,
	txn *database.Txn,
) error {
	if g.db == nil {
		return nil
	}
	if err := g.db.SetGovernanceParams(params, txn); err != nil {
		return fmt.Errorf(
			"failed to persist governance params: %w: %w",
			ErrStorageError,
			err,
		)
	}
	return nil
}

// paramsRow builds the governance parameter row from live state. The
// log head rides along so a restart knows how much of the append log
// was durably referenced.
func (g *GovernanceEngine) paramsRow() *models.GovernanceParams {
	return &models.GovernanceParams{
		Name:              g.name,
		Admin:             string(g.admin),
		PendingAdmin:      string(g.pendingAdmin),
		QuorumVotes:       types.Uint64(g.quorumVotes),
		ProposalThreshold: types.Uint64(g.proposalThreshold),
		VotingDelay:       g.votingDelay,
		VotingPeriod:      g.votingPeriod,
		TimelockDelay:     g.timelock.Delay(),
		LogHead:           g.log.Size(),
	}
}

func proposalRow(p *Proposal) *models.Proposal {
	return &models.Proposal{
		ProposalID:   p.ID,
		Proposer:     string(p.Proposer),
		Title:        p.Title,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		DescOffset:   p.Description.Offset,
		DescLength:   p.Description.Length,
		SupportVotes: types.Uint64(p.SupportVotes),
		AgainstVotes: types.Uint64(p.AgainstVotes),
		AbstainVotes: types.Uint64(p.AbstainVotes),
		Canceled:     p.Canceled,
		Executing:    p.Executing,
		Executed:     p.Executed,
		TaskTarget:   string(p.Task.Target),
		TaskMethod:   p.Task.Method,
		TaskArgs:     p.Task.Args,
		TaskCycles:   types.Uint64(p.Task.Cycles),
		Eta:          p.Task.Eta,
	}
}

func rowToProposal(row *models.Proposal) *Proposal {
	return &Proposal{
		ID:       row.ProposalID,
		Proposer: ledger.AccountID(row.Proposer),
		Title:    row.Title,
		Description: appendlog.Position{
			Offset: row.DescOffset,
			Length: row.DescLength,
		},
		Task: Task{
			Target: ledger.AccountID(row.TaskTarget),
			Method: row.TaskMethod,
			Args:   row.TaskArgs,
			Cycles: uint64(row.TaskCycles),
			Eta:    row.Eta,
		},
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		SupportVotes: uint64(row.SupportVotes),
		AgainstVotes: uint64(row.AgainstVotes),
		AbstainVotes: uint64(row.AbstainVotes),
		Canceled:     row.Canceled,
		Executing:    row.Executing,
		Executed:     row.Executed,
	}
}

func receiptRow(proposalID uint64, receipt *Receipt) *models.VoteReceipt {
	row := &models.VoteReceipt{
		ProposalID: proposalID,
		Voter:      string(receipt.Voter),
		Support:    uint8(receipt.VoteType),
		Votes:      types.Uint64(receipt.Votes),
	}
	if receipt.Reason != nil {
		row.ReasonOffset = receipt.Reason.Offset
		row.ReasonLength = receipt.Reason.Length
		row.HasReason = true
	}
	return row
}

func rowToReceipt(row *models.VoteReceipt) *Receipt {
	receipt := &Receipt{
		Voter:    ledger.AccountID(row.Voter),
		VoteType: VoteType(row.Support),
		Votes:    uint64(row.Votes),
	}
	if row.HasReason {
		receipt.Reason = &appendlog.Position{
			Offset: row.ReasonOffset,
			Length: row.ReasonLength,
		}
	}
	return receipt
}

// proposalByID resolves a proposal. An ID is valid only when it is
// strictly below the proposal count.
func (g *GovernanceEngine) proposalByID(id uint64) (*Proposal, error) {
	if id >= uint64(len(g.proposals)) {
		return nil, fmt.Errorf(
			"proposal %d does not exist: %w",
			id,
			ErrInvalidProposalId,
		)
	}
	return g.proposals[id], nil
}

func (g *GovernanceEngine) stateOf(p *Proposal, now uint64) ProposalState {
	return p.StateAt(g.quorumVotes, now)
}

func (g *GovernanceEngine) publish(eventType event.EventType, data any) {
	if g.eventBus == nil {
		return
	}
	g.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
