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

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
)

// Governor is the interface the API server uses to drive governance and
// token operations on the node. Operations that depend on the node's
// clock or its vote source live here; parameter reads and admin setters
// go straight to the engine and ledger. This decouples the HTTP server
// from the concrete node struct and enables testing with mock
// implementations.
type Governor interface {
	// Propose creates a proposal calling the given method on the target
	// account and returns the proposal ID.
	Propose(
		ctx context.Context,
		proposer ledger.AccountID,
		title string,
		description string,
		target ledger.AccountID,
		method string,
		args []byte,
		cycles uint64,
	) (uint64, error)

	// CastVote records the voter's stance on an active proposal and
	// returns the resulting receipt.
	CastVote(
		ctx context.Context,
		id uint64,
		voteType governance.VoteType,
		reason string,
		voter ledger.AccountID,
	) (*governance.Receipt, error)

	// Queue moves a succeeded proposal into the timelock and returns
	// the eta at which it becomes executable.
	Queue(id uint64) (uint64, error)

	// Execute dispatches a queued proposal's task.
	Execute(ctx context.Context, id uint64) error

	// Cancel cancels a proposal on behalf of the caller.
	Cancel(ctx context.Context, id uint64, caller ledger.AccountID) error

	// State returns the proposal's lifecycle state as of now.
	State(id uint64) (governance.ProposalState, error)

	// Transfer moves value from the caller to another account.
	Transfer(caller ledger.AccountID, to ledger.AccountID, value uint64) error

	// TransferFrom moves value between accounts against an allowance
	// granted to the caller.
	TransferFrom(
		caller ledger.AccountID,
		from ledger.AccountID,
		to ledger.AccountID,
		value uint64,
	) error

	// Approve grants the spender an allowance over the caller's
	// balance.
	Approve(
		caller ledger.AccountID,
		spender ledger.AccountID,
		value uint64,
	) error

	// Mint creates new tokens in the given account.
	Mint(caller ledger.AccountID, to ledger.AccountID, value uint64) error

	// Burn destroys tokens from the caller's own balance.
	Burn(caller ledger.AccountID, value uint64) error

	// Delegate assigns the caller's voting power to another account.
	Delegate(caller ledger.AccountID, delegatee ledger.AccountID) error
}
