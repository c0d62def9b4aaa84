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
	"slices"
)

// TokenMetadata is an aggregate view of the token parameters
type TokenMetadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	Owner       AccountID
	FeeTo       AccountID
	Fee         uint64
	TotalSupply uint64
}

// Holder pairs an account with its balance for holder listings
type Holder struct {
	Account AccountID
	Balance uint64
}

// BalanceOf returns an account's balance. Absent accounts have zero.
func (l *Ledger) BalanceOf(account AccountID) uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.balances[account]
}

// Allowance returns the amount a spender may move from an owner's
// balance. Absent entries are zero.
func (l *Ledger) Allowance(owner AccountID, spender AccountID) uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.allowances[owner][spender]
}

// DelegateOf returns the account the given account delegates its voting
// power to. Accounts with no delegation delegate to themselves.
func (l *Ledger) DelegateOf(account AccountID) AccountID {
	l.RLock()
	defer l.RUnlock()
	return l.delegateeOf(account)
}

// TotalSupply returns the current total token supply
func (l *Ledger) TotalSupply() uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.totalSupply
}

// Metadata returns the token parameters as one aggregate
func (l *Ledger) Metadata() TokenMetadata {
	l.RLock()
	defer l.RUnlock()
	return TokenMetadata{
		Name:        l.name,
		Symbol:      l.symbol,
		Decimals:    l.decimals,
		Owner:       l.owner,
		FeeTo:       l.feeTo,
		Fee:         l.fee,
		TotalSupply: l.totalSupply,
	}
}

// HolderCount returns the number of accounts with a non-zero balance
func (l *Ledger) HolderCount() int {
	l.RLock()
	defer l.RUnlock()
	return len(l.balances)
}

// Holders returns a page of token holders sorted by balance descending,
// with address as the tie-break. Pages are zero-based; out-of-range
// pages are empty.
func (l *Ledger) Holders(page int, size int) []Holder {
	l.RLock()
	holders := make([]Holder, 0, len(l.balances))
	for account, balance := range l.balances {
		holders = append(holders, Holder{Account: account, Balance: balance})
	}
	l.RUnlock()
	slices.SortFunc(holders, func(a, b Holder) int {
		if a.Balance > b.Balance {
			return -1
		}
		if a.Balance < b.Balance {
			return 1
		}
		if a.Account < b.Account {
			return -1
		}
		if a.Account > b.Account {
			return 1
		}
		return 0
	})
	if page < 0 || size <= 0 {
		return []Holder{}
	}
	start := page * size
	if start < 0 || start >= len(holders) {
		return []Holder{}
	}
	end := min(start+size, len(holders))
	return holders[start:end]
}
