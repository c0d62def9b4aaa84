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
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
)

// ledgerDelta stages the effects of a single ledger operation so they
// can be persisted before being applied to memory. Values are staged as
// final amounts rather than differences, so applying a delta is a plain
// overwrite. A failed persist leaves memory untouched.
type ledgerDelta struct {
	balances    map[AccountID]uint64
	votes       map[AccountID]uint64
	allowances  map[AccountID]map[AccountID]uint64
	delegates   map[AccountID]AccountID
	totalSupply *uint64
}

func newLedgerDelta() *ledgerDelta {
	return &ledgerDelta{
		balances:   make(map[AccountID]uint64),
		votes:      make(map[AccountID]uint64),
		allowances: make(map[AccountID]map[AccountID]uint64),
		delegates:  make(map[AccountID]AccountID),
	}
}

// balance returns the staged balance for an account, falling back to
// the live ledger value
func (d *ledgerDelta) balance(l *Ledger, account AccountID) uint64 {
	if balance, ok := d.balances[account]; ok {
		return balance
	}
	return l.balances[account]
}

// currentVotes returns the staged voting power for an account, falling
// back to the live ledger value
func (d *ledgerDelta) currentVotes(l *Ledger, account AccountID) uint64 {
	if votes, ok := d.votes[account]; ok {
		return votes
	}
	return l.currentVotes(account)
}

// delegateeOf resolves an account's delegatee through any staged
// delegation change
func (d *ledgerDelta) delegateeOf(l *Ledger, account AccountID) AccountID {
	if delegatee, ok := d.delegates[account]; ok {
		return delegatee
	}
	return l.delegateeOf(account)
}

// credit increases an account's balance and its delegatee's voting
// power. Callers validate amounts before staging, so the additions here
// cannot overflow past the total supply.
func (d *ledgerDelta) credit(l *Ledger, account AccountID, amount uint64) {
	if amount == 0 {
		return
	}
	d.balances[account] = d.balance(l, account) + amount
	delegatee := d.delegateeOf(l, account)
	d.votes[delegatee] = d.currentVotes(l, delegatee) + amount
}

// debit decreases an account's balance and its delegatee's voting power
func (d *ledgerDelta) debit(l *Ledger, account AccountID, amount uint64) {
	if amount == 0 {
		return
	}
	d.balances[account] = d.balance(l, account) - amount
	delegatee := d.delegateeOf(l, account)
	d.votes[delegatee] = d.currentVotes(l, delegatee) - amount
}

// move transfers amount between two accounts, updating both balances
// and both delegatees' voting power
func (d *ledgerDelta) move(l *Ledger, from AccountID, to AccountID, amount uint64) {
	if from == to || amount == 0 {
		return
	}
	d.debit(l, from, amount)
	d.credit(l, to, amount)
}

// moveVotes shifts voting power between delegatees without touching
// balances. Used when a delegation changes.
func (d *ledgerDelta) moveVotes(l *Ledger, from AccountID, to AccountID, amount uint64) {
	if from == to || amount == 0 {
		return
	}
	d.votes[from] = d.currentVotes(l, from) - amount
	d.votes[to] = d.currentVotes(l, to) + amount
}

// setAllowance stages an allowance value. Zero means the entry is
// removed.
func (d *ledgerDelta) setAllowance(owner AccountID, spender AccountID, amount uint64) {
	if _, ok := d.allowances[owner]; !ok {
		d.allowances[owner] = make(map[AccountID]uint64)
	}
	d.allowances[owner][spender] = amount
}

// setDelegate stages a delegation change. Delegating to self removes
// the entry when applied.
func (d *ledgerDelta) setDelegate(account AccountID, delegatee AccountID) {
	d.delegates[account] = delegatee
}

// persistDelta writes all staged changes through to the database in a
// single metadata transaction. Checkpoint rows are written at the
// operation timestamp, matching the in-memory overwrite rule for
// repeated writes within one timestamp.
func (l *Ledger) persistDelta(delta *ledgerDelta, now Timestamp) error {
	return l.withMetadataTxn(func(txn *database.Txn) error {
		// Account rows carry both balance and delegation, so collect the
		// union of accounts touched by either
		accounts := make(map[AccountID]struct{})
		for account := range delta.balances {
			accounts[account] = struct{}{}
		}
		for account := range delta.delegates {
			accounts[account] = struct{}{}
		}
		for account := range accounts {
			balance := delta.balance(l, account)
			delegate := ""
			if delegatee := delta.delegateeOf(l, account); delegatee != account {
				delegate = string(delegatee)
			}
			if balance == 0 && delegate == "" {
				if err := l.db.DeleteAccount(string(account), txn); err != nil {
					return err
				}
			} else {
				if err := l.db.SetAccount(
					accountRow(account, balance, delegate),
					txn,
				); err != nil {
					return err
				}
			}
		}
		for account, votes := range delta.votes {
			if err := l.db.SetCheckpoint(
				checkpointRow(account, now, votes),
				txn,
			); err != nil {
				return err
			}
		}
		for owner, inner := range delta.allowances {
			for spender, amount := range inner {
				if amount == 0 {
					if err := l.db.DeleteAllowance(
						string(owner),
						string(spender),
						txn,
					); err != nil {
						return err
					}
				} else {
					if err := l.db.SetAllowance(
						&models.Allowance{
							Owner:   string(owner),
							Spender: string(spender),
							Amount:  types.Uint64(amount),
						},
						txn,
					); err != nil {
						return err
					}
				}
			}
		}
		if delta.totalSupply != nil {
			params := l.paramsRow()
			params.TotalSupply = types.Uint64(*delta.totalSupply)
			if err := l.db.SetTokenParams(params, txn); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyDelta commits staged changes to memory. Must only be called
// after a successful persist.
func (l *Ledger) applyDelta(delta *ledgerDelta, now Timestamp) {
	for account, balance := range delta.balances {
		if balance == 0 {
			delete(l.balances, account)
		} else {
			l.balances[account] = balance
		}
	}
	for account, delegatee := range delta.delegates {
		if delegatee == account {
			delete(l.delegates, account)
		} else {
			l.delegates[account] = delegatee
		}
	}
	for owner, inner := range delta.allowances {
		for spender, amount := range inner {
			if amount == 0 {
				if ownerAllowances, ok := l.allowances[owner]; ok {
					delete(ownerAllowances, spender)
					if len(ownerAllowances) == 0 {
						delete(l.allowances, owner)
					}
				}
				continue
			}
			if _, ok := l.allowances[owner]; !ok {
				l.allowances[owner] = make(map[AccountID]uint64)
			}
			l.allowances[owner][spender] = amount
		}
	}
	for account, votes := range delta.votes {
		l.writeCheckpoint(account, now, votes)
	}
	if delta.totalSupply != nil {
		l.totalSupply = *delta.totalSupply
		l.metrics.totalSupply.Set(float64(l.totalSupply))
	}
	l.metrics.holders.Set(float64(len(l.balances)))
}

func (l *Ledger) paramsRow() *models.TokenParams {
	return &models.TokenParams{
		Name:        l.name,
		Symbol:      l.symbol,
		Decimals:    l.decimals,
		Owner:       string(l.owner),
		FeeTo:       string(l.feeTo),
		Fee:         types.Uint64(l.fee),
		TotalSupply: types.Uint64(l.totalSupply),
	}
}

func accountRow(account AccountID, balance uint64, delegate string) *models.Account {
	return &models.Account{
		Address:  string(account),
		Balance:  types.Uint64(balance),
		Delegate: delegate,
	}
}

func checkpointRow(account AccountID, timestamp Timestamp, votes uint64) *models.Checkpoint {
	return &models.Checkpoint{
		Account:   string(account),
		Timestamp: uint64(timestamp),
		Votes:     types.Uint64(votes),
	}
}
