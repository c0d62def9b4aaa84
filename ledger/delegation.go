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
	"sort"
)

// Delegate assigns the caller's entire voting power to another account.
// The caller must hold a non-zero balance. Delegating to self restores
// the default and removes the delegation entry.
func (l *Ledger) Delegate(
	caller AccountID,
	delegatee AccountID,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	balance := l.balances[caller]
	if balance == 0 {
		return &InsufficientBalanceError{
			Account:  caller,
			Balance:  0,
			Required: 1,
		}
	}
	prev := l.delegateeOf(caller)
	delta := newLedgerDelta()
	delta.setDelegate(caller, delegatee)
	delta.moveVotes(l, prev, delegatee, balance)
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist delegation: %w", err)
	}
	l.applyDelta(delta, now)
	l.metrics.delegationsTotal.Inc()
	l.logger.Debug(
		"updated delegation",
		"component", "ledger",
		"account", caller,
		"delegate", delegatee,
	)
	l.publish(
		DelegateEventType,
		DelegateEvent{
			Account:   caller,
			From:      prev,
			To:        delegatee,
			Balance:   balance,
			Timestamp: now,
		},
	)
	return nil
}

// GetCurrentVotes returns an account's current voting power, which is
// the value of its newest checkpoint
func (l *Ledger) GetCurrentVotes(account AccountID) uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.currentVotes(account)
}

// GetPriorVotes returns an account's voting power as of the given time.
// An account with no checkpoint history, or whose history starts after
// the requested time, has zero prior votes.
func (l *Ledger) GetPriorVotes(account AccountID, at Timestamp) uint64 {
	l.RLock()
	defer l.RUnlock()
	checkpoints := l.checkpoints[account]
	if len(checkpoints) == 0 {
		return 0
	}
	if checkpoints[len(checkpoints)-1].Timestamp <= at {
		return checkpoints[len(checkpoints)-1].Votes
	}
	if checkpoints[0].Timestamp > at {
		return 0
	}
	// Binary search for the first checkpoint past the requested time; the
	// one before it is the answer
	idx := sort.Search(len(checkpoints), func(i int) bool {
		return checkpoints[i].Timestamp > at
	})
	return checkpoints[idx-1].Votes
}

func (l *Ledger) currentVotes(account AccountID) uint64 {
	checkpoints := l.checkpoints[account]
	if len(checkpoints) == 0 {
		return 0
	}
	return checkpoints[len(checkpoints)-1].Votes
}

// writeCheckpoint records an account's voting power at a timestamp. A
// repeated write within the same timestamp overwrites the last entry,
// keeping the list ordered with one entry per timestamp.
func (l *Ledger) writeCheckpoint(
	account AccountID,
	now Timestamp,
	votes uint64,
) {
	checkpoints := l.checkpoints[account]
	if len(checkpoints) > 0 &&
		checkpoints[len(checkpoints)-1].Timestamp == now {
		checkpoints[len(checkpoints)-1].Votes = votes
		return
	}
	l.checkpoints[account] = append(
		checkpoints,
		Checkpoint{
			Timestamp: now,
			Votes:     votes,
		},
	)
}
