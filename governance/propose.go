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

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/ledger"
)

// Propose creates a proposal and returns its ID. The proposer's voting
// power must exceed the proposal threshold, and a proposer can have
// only one live proposal at a time. The description is written to the
// append log and referenced by position. Voting opens after the voting
// delay and stays open for the voting period.
func (g *GovernanceEngine) Propose(
	proposer ledger.AccountID,
	proposerVotes uint64,
	title string,
	description string,
	target ledger.AccountID,
	method string,
	args []byte,
	cycles uint64,
	now uint64,
) (uint64, error) {
	g.Lock()
	defer g.Unlock()
	if proposerVotes <= g.proposalThreshold {
		return 0, &BelowThresholdError{
			Votes:     proposerVotes,
			Threshold: g.proposalThreshold,
		}
	}
	if latestID, ok := g.latestProposalIds[proposer]; ok {
		switch g.stateOf(g.proposals[latestID], now) {
		case StatePending, StateActive, StateExecuting:
			return 0, fmt.Errorf(
				"proposal %d has not finished: %w",
				latestID,
				ErrAlreadyHasLiveProposal,
			)
		}
	}
	descPos, err := g.log.Append([]byte(description))
	if err != nil {
		return 0, fmt.Errorf(
			"failed to store proposal description: %w: %w",
			ErrStorageError,
			err,
		)
	}
	id := uint64(len(g.proposals))
	p := &Proposal{
		ID:          id,
		Proposer:    proposer,
		Title:       title,
		Description: descPos,
		Task: Task{
			Target: target,
			Method: method,
			Args:   args,
			Cycles: cycles,
		},
		StartTime: now + g.votingDelay,
		EndTime:   now + g.votingDelay + g.votingPeriod,
	}
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.persistProposal(p, txn); err != nil {
			return err
		}
		// The log head moved, so the params row goes with it
		return g.persistParams(g.paramsRow(), txn)
	})
	if err != nil {
		return 0, err
	}
	g.proposals = append(g.proposals, p)
	g.latestProposalIds[proposer] = id
	g.metrics.proposals.Set(float64(len(g.proposals)))
	g.logger.Info(
		"created proposal",
		"component", "governance",
		"proposal_id", id,
		"proposer", proposer,
		"title", title,
		"start_time", p.StartTime,
		"end_time", p.EndTime,
	)
	g.publish(
		ProposeEventType,
		ProposeEvent{
			ProposalID:  id,
			Proposer:    proposer,
			Title:       title,
			Description: description,
			Target:      target,
			Method:      method,
			Args:        args,
			Cycles:      cycles,
			Timestamp:   now,
		},
	)
	return id, nil
}

// CastVote records a vote on an active proposal, adding the given
// weight to the matching tally. A voter gets one vote per proposal; a
// second vote is rejected rather than re-counted. A non-empty reason is
// written to the append log and referenced from the receipt.
func (g *GovernanceEngine) CastVote(
	id uint64,
	voteType VoteType,
	weight uint64,
	reason string,
	voter ledger.AccountID,
	now uint64,
) (*Receipt, error) {
	g.Lock()
	defer g.Unlock()
	if voteType > VoteTypeAbstain {
		return nil, fmt.Errorf("unknown vote type %d", voteType)
	}
	p, err := g.proposalByID(id)
	if err != nil {
		return nil, err
	}
	if g.stateOf(p, now) != StateActive {
		return nil, fmt.Errorf(
			"proposal %d is not active: %w",
			id,
			ErrVotingClosed,
		)
	}
	if _, ok := g.receipts[id][voter]; ok {
		return nil, fmt.Errorf(
			"%s already voted on proposal %d: %w",
			voter,
			id,
			ErrAlreadyVoted,
		)
	}
	receipt := &Receipt{
		Voter:    voter,
		VoteType: voteType,
		Votes:    weight,
	}
	if reason != "" {
		reasonPos, err := g.log.Append([]byte(reason))
		if err != nil {
			return nil, fmt.Errorf(
				"failed to store vote reason: %w: %w",
				ErrStorageError,
				err,
			)
		}
		receipt.Reason = &reasonPos
	}
	updated := *p
	switch voteType {
	case VoteTypeSupport:
		updated.SupportVotes += weight
	case VoteTypeAgainst:
		updated.AgainstVotes += weight
	case VoteTypeAbstain:
		updated.AbstainVotes += weight
	}
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.persistProposal(&updated, txn); err != nil {
			return err
		}
		if err := g.persistReceipt(id, receipt, txn); err != nil {
			return err
		}
		if receipt.Reason == nil {
			return nil
		}
		// The log head moved, so the params row goes with it
		return g.persistParams(g.paramsRow(), txn)
	})
	if err != nil {
		return nil, err
	}
	*p = updated
	if _, ok := g.receipts[id]; !ok {
		g.receipts[id] = make(map[ledger.AccountID]*Receipt)
	}
	g.receipts[id][voter] = receipt
	g.metrics.votesTotal.Inc()
	g.logger.Debug(
		"recorded vote",
		"component", "governance",
		"proposal_id", id,
		"voter", voter,
		"vote_type", voteType.String(),
		"votes", weight,
	)
	g.publish(
		VoteEventType,
		VoteEvent{
			ProposalID: id,
			Voter:      voter,
			VoteType:   voteType,
			Votes:      weight,
			Timestamp:  now,
		},
	)
	ret := copyReceipt(receipt)
	return &ret, nil
}
