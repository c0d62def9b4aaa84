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
	"github.com/blinklabs-io/bravo/ledger"
)

// Token operations timestamped with the node's clock. Checkpoint
// timestamps must come from the same clock as proposal start times, so
// voting power lookups at a proposal's start resolve consistently.

// Transfer moves value from the caller to another account
func (b *Bravo) Transfer(
	caller ledger.AccountID,
	to ledger.AccountID,
	value uint64,
) error {
	return b.ledger.Transfer(caller, to, value, ledger.Timestamp(b.now()))
}

// TransferFrom moves value between accounts against an allowance
// granted to the caller
func (b *Bravo) TransferFrom(
	caller ledger.AccountID,
	from ledger.AccountID,
	to ledger.AccountID,
	value uint64,
) error {
	return b.ledger.TransferFrom(
		caller,
		from,
		to,
		value,
		ledger.Timestamp(b.now()),
	)
}

// Approve grants the spender an allowance over the caller's balance
func (b *Bravo) Approve(
	caller ledger.AccountID,
	spender ledger.AccountID,
	value uint64,
) error {
	return b.ledger.Approve(caller, spender, value, ledger.Timestamp(b.now()))
}

// Mint creates new tokens in the given account. Only the token owner
// may mint
func (b *Bravo) Mint(
	caller ledger.AccountID,
	to ledger.AccountID,
	value uint64,
) error {
	return b.ledger.Mint(caller, to, value, ledger.Timestamp(b.now()))
}

// Burn destroys tokens from the caller's own balance
func (b *Bravo) Burn(caller ledger.AccountID, value uint64) error {
	return b.ledger.Burn(caller, value, ledger.Timestamp(b.now()))
}

// Delegate assigns the caller's entire voting power to another account
func (b *Bravo) Delegate(
	caller ledger.AccountID,
	delegatee ledger.AccountID,
) error {
	return b.ledger.Delegate(caller, delegatee, ledger.Timestamp(b.now()))
}
