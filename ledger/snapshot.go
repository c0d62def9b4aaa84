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
	"slices"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
)

// Snapshot is a point-in-time copy of the full token ledger state.
// Entries are sorted so the serialized form is reproducible.
type Snapshot struct {
	Name        string
	Symbol      string
	Decimals    uint8
	Owner       string
	FeeTo       string
	Fee         uint64
	TotalSupply uint64
	Accounts    []SnapshotAccount
	Allowances  []SnapshotAllowance
	Checkpoints []SnapshotCheckpoint
}

type SnapshotAccount struct {
	Address  string
	Balance  uint64
	Delegate string
}

type SnapshotAllowance struct {
	Owner   string
	Spender string
	Amount  uint64
}

type SnapshotCheckpoint struct {
	Account   string
	Timestamp uint64
	Votes     uint64
}

// Snapshot captures the current ledger state
func (l *Ledger) Snapshot() *Snapshot {
	l.RLock()
	defer l.RUnlock()
	snap := &Snapshot{
		Name:        l.name,
		Symbol:      l.symbol,
		Decimals:    l.decimals,
		Owner:       string(l.owner),
		FeeTo:       string(l.feeTo),
		Fee:         l.fee,
		TotalSupply: l.totalSupply,
	}
	// Accounts carry both balances and delegations
	accounts := make(map[AccountID]struct{})
	for account := range l.balances {
		accounts[account] = struct{}{}
	}
	for account := range l.delegates {
		accounts[account] = struct{}{}
	}
	for account := range accounts {
		delegate := ""
		if delegatee, ok := l.delegates[account]; ok {
			delegate = string(delegatee)
		}
		snap.Accounts = append(snap.Accounts, SnapshotAccount{
			Address:  string(account),
			Balance:  l.balances[account],
			Delegate: delegate,
		})
	}
	slices.SortFunc(snap.Accounts, func(a, b SnapshotAccount) int {
		if a.Address < b.Address {
			return -1
		}
		if a.Address > b.Address {
			return 1
		}
		return 0
	})
	for owner, inner := range l.allowances {
		for spender, amount := range inner {
			snap.Allowances = append(snap.Allowances, SnapshotAllowance{
				Owner:   string(owner),
				Spender: string(spender),
				Amount:  amount,
			})
		}
	}
	slices.SortFunc(snap.Allowances, func(a, b SnapshotAllowance) int {
		if a.Owner != b.Owner {
			if a.Owner < b.Owner {
				return -1
			}
			return 1
		}
		if a.Spender < b.Spender {
			return -1
		}
		if a.Spender > b.Spender {
			return 1
		}
		return 0
	})
	for account, checkpoints := range l.checkpoints {
		for _, cp := range checkpoints {
			snap.Checkpoints = append(snap.Checkpoints, SnapshotCheckpoint{
				Account:   string(account),
				Timestamp: uint64(cp.Timestamp),
				Votes:     cp.Votes,
			})
		}
	}
	slices.SortFunc(snap.Checkpoints, func(a, b SnapshotCheckpoint) int {
		if a.Account != b.Account {
			if a.Account < b.Account {
				return -1
			}
			return 1
		}
		if a.Timestamp < b.Timestamp {
			return -1
		}
		if a.Timestamp > b.Timestamp {
			return 1
		}
		return 0
	})
	return snap
}

// LoadSnapshot replaces the ledger state with the snapshot contents and
// writes all rows through to the database using the provided
// transaction. The caller owns the commit.
func (l *Ledger) LoadSnapshot(snap *Snapshot, txn *database.Txn) error {
	l.Lock()
	defer l.Unlock()
	l.name = snap.Name
	l.symbol = snap.Symbol
	l.decimals = snap.Decimals
	l.owner = AccountID(snap.Owner)
	l.feeTo = AccountID(snap.FeeTo)
	l.fee = snap.Fee
	l.totalSupply = snap.TotalSupply
	l.balances = make(map[AccountID]uint64)
	l.allowances = make(map[AccountID]map[AccountID]uint64)
	l.delegates = make(map[AccountID]AccountID)
	l.checkpoints = make(map[AccountID][]Checkpoint)
	for _, acct := range snap.Accounts {
		account := AccountID(acct.Address)
		if acct.Balance > 0 {
			l.balances[account] = acct.Balance
		}
		if acct.Delegate != "" {
			l.delegates[account] = AccountID(acct.Delegate)
		}
	}
	for _, allow := range snap.Allowances {
		owner := AccountID(allow.Owner)
		if _, ok := l.allowances[owner]; !ok {
			l.allowances[owner] = make(map[AccountID]uint64)
		}
		l.allowances[owner][AccountID(allow.Spender)] = allow.Amount
	}
	for _, cp := range snap.Checkpoints {
		account := AccountID(cp.Account)
		l.checkpoints[account] = append(
			l.checkpoints[account],
			Checkpoint{
				Timestamp: Timestamp(cp.Timestamp),
				Votes:     cp.Votes,
			},
		)
	}
	l.metrics.totalSupply.Set(float64(l.totalSupply))
	l.metrics.holders.Set(float64(len(l.balances)))
	if l.db == nil {
		return nil
	}
	if err := l.db.SetTokenParams(l.paramsRow(), txn); err != nil {
		return fmt.Errorf("failed to restore token params: %w", err)
	}
	for _, acct := range snap.Accounts {
		if err := l.db.SetAccount(
			accountRow(AccountID(acct.Address), acct.Balance, acct.Delegate),
			txn,
		); err != nil {
			return fmt.Errorf("failed to restore account: %w", err)
		}
	}
	for _, allow := range snap.Allowances {
		if err := l.db.SetAllowance(
			&models.Allowance{
				Owner:   allow.Owner,
				Spender: allow.Spender,
				Amount:  types.Uint64(allow.Amount),
			},
			txn,
		); err != nil {
			return fmt.Errorf("failed to restore allowance: %w", err)
		}
	}
	for _, cp := range snap.Checkpoints {
		if err := l.db.SetCheckpoint(
			checkpointRow(
				AccountID(cp.Account),
				Timestamp(cp.Timestamp),
				cp.Votes,
			),
			txn,
		); err != nil {
			return fmt.Errorf("failed to restore checkpoint: %w", err)
		}
	}
	return nil
}
