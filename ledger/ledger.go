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

package ledger

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/event"

	"github.com/prometheus/client_golang/prometheus"
)

// AccountID identifies an account. The ledger treats it as an opaque
// comparable value and interprets no internal structure.
type AccountID string

// Timestamp is a point in time in nanoseconds since the Unix epoch
type Timestamp uint64

// Checkpoint records an account's voting power as of a timestamp.
// Checkpoint lists are ordered by timestamp with at most one entry per
// timestamp.
type Checkpoint struct {
	Timestamp Timestamp
	Votes     uint64
}

type LedgerConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	// DB is the write-through store. With a nil DB the ledger runs
	// memory-only, which is primarily useful for tests and embedding.
	DB            *database.Database
	Name          string
	Symbol        string
	Decimals      uint8
	Owner         AccountID
	FeeTo         AccountID
	Fee           uint64
	InitialSupply uint64
}

// Ledger tracks token balances, allowances, delegations, and the
// per-account voting power history used for proposal vote weights.
// State lives in memory and is written through to the database on every
// mutation. Balance entries are removed when they reach zero, absent
// delegation means self-delegation, and the sum of all balances always
// equals the total supply.
type Ledger struct {
	config      LedgerConfig
	logger      *slog.Logger
	eventBus    *event.EventBus
	db          *database.Database
	metrics     ledgerMetrics
	name        string
	symbol      string
	decimals    uint8
	owner       AccountID
	feeTo       AccountID
	fee         uint64
	totalSupply uint64
	balances    map[AccountID]uint64
	allowances  map[AccountID]map[AccountID]uint64
	delegates   map[AccountID]AccountID
	checkpoints map[AccountID][]Checkpoint
	sync.RWMutex
}

// NewLedger creates a Ledger from the given config. When the database
// already holds token state it is loaded as-is and the config's token
// parameters are ignored; otherwise the ledger is seeded from the config
// with the initial supply assigned to the owner.
func NewLedger(config LedgerConfig) (*Ledger, error) {
	l := &Ledger{
		config:      config,
		eventBus:    config.EventBus,
		db:          config.DB,
		balances:    make(map[AccountID]uint64),
		allowances:  make(map[AccountID]map[AccountID]uint64),
		delegates:   make(map[AccountID]AccountID),
		checkpoints: make(map[AccountID][]Checkpoint),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		l.logger = config.Logger
	}
	l.metrics.init(config.PromRegistry)
	if err := l.load(); err != nil {
		return nil, err
	}
	l.metrics.totalSupply.Set(float64(l.totalSupply))
	l.metrics.holders.Set(float64(len(l.balances)))
	return l, nil
}

func (l *Ledger) load() error {
	if l.db == nil {
		l.seedMemory()
		return nil
	}
	params, err := l.db.GetTokenParams(nil)
	if err != nil {
		return fmt.Errorf("failed to load token params: %w", err)
	}
	if params == nil {
		return l.seed()
	}
	l.name = params.Name
	l.symbol = params.Symbol
	l.decimals = params.Decimals
	l.owner = AccountID(params.Owner)
	l.feeTo = AccountID(params.FeeTo)
	l.fee = uint64(params.Fee)
	l.totalSupply = uint64(params.TotalSupply)
	accounts, err := l.db.GetAccounts(nil)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, acct := range accounts {
		if acct.Balance > 0 {
			l.balances[AccountID(acct.Address)] = uint64(acct.Balance)
		}
		if acct.Delegate != "" {
			l.delegates[AccountID(acct.Address)] = AccountID(acct.Delegate)
		}
	}
	allowances, err := l.db.GetAllowances(nil)
	if err != nil {
		return fmt.Errorf("failed to load allowances: %w", err)
	}
	for _, allow := range allowances {
		owner := AccountID(allow.Owner)
		if _, ok := l.allowances[owner]; !ok {
			l.allowances[owner] = make(map[AccountID]uint64)
		}
		l.allowances[owner][AccountID(allow.Spender)] = uint64(allow.Amount)
	}
	// Checkpoints come back ordered by account and timestamp, so they can
	// be appended directly
	checkpoints, err := l.db.GetAllCheckpoints(nil)
	if err != nil {
		return fmt.Errorf("failed to load checkpoints: %w", err)
	}
	for _, cp := range checkpoints {
		account := AccountID(cp.Account)
		l.checkpoints[account] = append(
			l.checkpoints[account],
			Checkpoint{
				Timestamp: Timestamp(cp.Timestamp),
				Votes:     uint64(cp.Votes),
			},
		)
	}
	l.logger.Info(
		"loaded token ledger",
		"component", "ledger",
		"name", l.name,
		"holders", len(l.balances),
		"total_supply", l.totalSupply,
	)
	return nil
}

// seedMemory initializes in-memory state from the config. The initial
// supply is assigned to the owner with a genesis checkpoint at time
// zero so it is visible to any prior-votes query.
func (l *Ledger) seedMemory() {
	l.name = l.config.Name
	l.symbol = l.config.Symbol
	l.decimals = l.config.Decimals
	l.owner = l.config.Owner
	l.feeTo = l.config.FeeTo
	l.fee = l.config.Fee
	l.totalSupply = l.config.InitialSupply
	if l.config.InitialSupply > 0 {
		l.balances[l.config.Owner] = l.config.InitialSupply
		l.checkpoints[l.config.Owner] = []Checkpoint{
			{Timestamp: 0, Votes: l.config.InitialSupply},
		}
	}
}

func (l *Ledger) seed() error {
	l.seedMemory()
	err := l.withMetadataTxn(func(txn *database.Txn) error {
		if err := l.db.SetTokenParams(l.paramsRow(), txn); err != nil {
			return err
		}
		for account, balance := range l.balances {
			if err := l.db.SetAccount(
				accountRow(account, balance, ""),
				txn,
			); err != nil {
				return err
			}
		}
		for account, cps := range l.checkpoints {
			for _, cp := range cps {
				if err := l.db.SetCheckpoint(
					checkpointRow(account, cp.Timestamp, cp.Votes),
					txn,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed token ledger: %w", err)
	}
	l.logger.Info(
		"seeded token ledger",
		"component", "ledger",
		"name", l.name,
		"owner", l.owner,
		"initial_supply", l.totalSupply,
	)
	return nil
}

// withMetadataTxn runs fn inside a read-write metadata transaction and
// commits it. With no database configured, fn is skipped entirely.
func (l *Ledger) withMetadataTxn(fn func(txn *database.Txn) error) error {
	if l.db == nil {
		return nil
	}
	owned := true
	txn := l.db.MetadataTxn(true)
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

// delegateeOf resolves the account whose voting power tracks the given
// account's balance. Absent delegation means self.
func (l *Ledger) delegateeOf(account AccountID) AccountID {
	if delegatee, ok := l.delegates[account]; ok {
		return delegatee
	}
	return account
}

func (l *Ledger) publish(eventType event.EventType, data any) {
	if l.eventBus == nil {
		return
	}
	l.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
