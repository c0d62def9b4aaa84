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
	"fmt"

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
)

// Propose creates a proposal to call the given method on the target
// account. The proposer's current voting power is resolved from the
// vote source and must exceed the proposal threshold.
func (b *Bravo) Propose(
	ctx context.Context,
	proposer ledger.AccountID,
	title string,
	description string,
	target ledger.AccountID,
	method string,
	args []byte,
	cycles uint64,
) (uint64, error) {
	votes, err := b.voteSource.GetCurrentVotes(ctx, proposer)
	if err != nil {
		return 0, fmt.Errorf(
			"failed to resolve voting power for %s: %w: %w",
			proposer,
			governance.ErrVoteQueryFailed,
			err,
		)
	}
	return b.governance.Propose(
		proposer,
		votes,
		title,
		description,
		target,
		method,
		args,
		cycles,
		b.now(),
	)
}

// CastVote records the voter's stance on an active proposal, weighted
// by the votes the voter held when voting opened
func (b *Bravo) CastVote(
	ctx context.Context,
	id uint64,
	voteType governance.VoteType,
	reason string,
	voter ledger.AccountID,
) (*governance.Receipt, error) {
	p, err := b.governance.GetProposal(id)
	if err != nil {
		return nil, err
	}
	votes, err := b.voteSource.GetPriorVotes(ctx, voter, p.StartTime)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to resolve voting power for %s: %w: %w",
			voter,
			governance.ErrVoteQueryFailed,
			err,
		)
	}
	return b.governance.CastVote(id, voteType, votes, reason, voter, b.now())
}

// Queue moves a succeeded proposal into the timelock and returns the
// eta at which it becomes executable
func (b *Bravo) Queue(id uint64) (uint64, error) {
	return b.governance.Queue(id, b.now())
}

// Execute dispatches a queued proposal's task once its timelock has
// expired. The dispatch runs outside the engine lock; the proposal
// advertises Executing until the outcome is recorded. A failed dispatch
// returns the proposal to the queue so it can be retried within the
// grace period.
func (b *Bravo) Execute(ctx context.Context, id uint64) error {
	if err := b.governance.PreExecute(id, b.now()); err != nil {
		return err
	}
	p, err := b.governance.GetProposal(id)
	if err != nil {
		return err
	}
	dispatchErr := b.dispatcher.Dispatch(ctx, p.Task)
	if err := b.governance.PostExecute(id, dispatchErr == nil, b.now()); err != nil {
		return err
	}
	if dispatchErr != nil {
		return fmt.Errorf(
			"failed to dispatch task for proposal %d: %w: %w",
			id,
			governance.ErrExternalCallFailed,
			dispatchErr,
		)
	}
	return nil
}

// Cancel cancels a proposal. The proposer can always cancel; anyone
// else must show the proposer's current voting power has fallen to or
// below the proposal threshold, which requires a vote source lookup.
func (b *Bravo) Cancel(
	ctx context.Context,
	id uint64,
	caller ledger.AccountID,
) error {
	p, err := b.governance.GetProposal(id)
	if err != nil {
		return err
	}
	var proposerVotes uint64
	if caller != p.Proposer {
		proposerVotes, err = b.voteSource.GetCurrentVotes(ctx, p.Proposer)
		if err != nil {
			return fmt.Errorf(
				"failed to resolve voting power for %s: %w: %w",
				p.Proposer,
				governance.ErrVoteQueryFailed,
				err,
			)
		}
	}
	return b.governance.Cancel(id, caller, proposerVotes, b.now())
}

// State returns the proposal's lifecycle state as of now
func (b *Bravo) State(id uint64) (governance.ProposalState, error) {
	return b.governance.GetState(id, b.now())
}
