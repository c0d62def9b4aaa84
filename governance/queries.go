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
	"slices"

	"github.com/blinklabs-io/bravo/ledger"
)

// Params is an aggregate view of the governance parameters
type Params struct {
	Name              string
	Admin             ledger.AccountID
	PendingAdmin      ledger.AccountID
	QuorumVotes       uint64
	ProposalThreshold uint64
	VotingDelay       uint64
	VotingPeriod      uint64
	TimelockDelay     uint64
}

// Params returns the governance parameters as one aggregate
func (g *GovernanceEngine) Params() Params {
	g.RLock()
	defer g.RUnlock()
	return Params{
		Name:              g.name,
		Admin:             g.admin,
		PendingAdmin:      g.pendingAdmin,
		QuorumVotes:       g.quorumVotes,
		ProposalThreshold: g.proposalThreshold,
		VotingDelay:       g.votingDelay,
		VotingPeriod:      g.votingPeriod,
		TimelockDelay:     g.timelock.Delay(),
	}
}

// ProposalCount returns the number of proposals ever created. Proposal
// IDs run from zero to one below this count.
func (g *GovernanceEngine) ProposalCount() uint64 {
	g.RLock()
	defer g.RUnlock()
	return uint64(len(g.proposals))
}

// GetProposal returns a copy of the proposal with the given ID
func (g *GovernanceEngine) GetProposal(id uint64) (*Proposal, error) {
	g.RLock()
	defer g.RUnlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return nil, err
	}
	ret := *p
	return &ret, nil
}

// GetState returns the proposal's lifecycle state at the given time
func (g *GovernanceEngine) GetState(
	id uint64,
	now uint64,
) (ProposalState, error) {
	g.RLock()
	defer g.RUnlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return 0, err
	}
	return g.stateOf(p, now), nil
}

// GetProposals returns a page of proposals, newest first. Pages are
// zero-based; out-of-range pages are empty.
func (g *GovernanceEngine) GetProposals(page int, size int) []Proposal {
	g.RLock()
	defer g.RUnlock()
	if page < 0 || size <= 0 {
		return []Proposal{}
	}
	count := len(g.proposals)
	start := page * size
	if start < 0 || start >= count {
		return []Proposal{}
	}
	end := min(start+size, count)
	ret := make([]Proposal, 0, end-start)
	for i := start; i < end; i++ {
		ret = append(ret, *g.proposals[count-1-i])
	}
	return ret
}

// GetReceipt returns a copy of a voter's receipt for a proposal, or nil
// when the voter has not voted on it.
func (g *GovernanceEngine) GetReceipt(
	id uint64,
	voter ledger.AccountID,
) (*Receipt, error) {
	g.RLock()
	defer g.RUnlock()
	if _, err := g.proposalByID(id); err != nil {
		return nil, err
	}
	receipt, ok := g.receipts[id][voter]
	if !ok {
		return nil, nil
	}
	ret := copyReceipt(receipt)
	return &ret, nil
}

// GetReceipts returns a page of vote receipts for a proposal sorted by
// voter. Pages are zero-based; out-of-range pages are empty.
func (g *GovernanceEngine) GetReceipts(
	id uint64,
	page int,
	size int,
) ([]Receipt, error) {
	g.RLock()
	defer g.RUnlock()
	if _, err := g.proposalByID(id); err != nil {
		return nil, err
	}
	if page < 0 || size <= 0 {
		return []Receipt{}, nil
	}
	receipts := make([]Receipt, 0, len(g.receipts[id]))
	for _, receipt := range g.receipts[id] {
		receipts = append(receipts, copyReceipt(receipt))
	}
	slices.SortFunc(receipts, func(a, b Receipt) int {
		if a.Voter < b.Voter {
			return -1
		}
		if a.Voter > b.Voter {
			return 1
		}
		return 0
	})
	start := page * size
	if start < 0 || start >= len(receipts) {
		return []Receipt{}, nil
	}
	end := min(start+size, len(receipts))
	return receipts[start:end], nil
}

// GetDescription reads a proposal's description back from the append
// log.
func (g *GovernanceEngine) GetDescription(id uint64) (string, error) {
	g.RLock()
	defer g.RUnlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return "", err
	}
	data, err := g.log.Read(p.Description)
	if err != nil {
		return "", fmt.Errorf(
			"failed to read proposal description: %w: %w",
			ErrStorageError,
			err,
		)
	}
	return string(data), nil
}

// GetReason reads a voter's reason back from the append log. Voters who
// did not vote, or voted without a reason, get an empty string.
func (g *GovernanceEngine) GetReason(
	id uint64,
	voter ledger.AccountID,
) (string, error) {
	g.RLock()
	defer g.RUnlock()
	if _, err := g.proposalByID(id); err != nil {
		return "", err
	}
	receipt, ok := g.receipts[id][voter]
	if !ok || receipt.Reason == nil {
		return "", nil
	}
	data, err := g.log.Read(*receipt.Reason)
	if err != nil {
		return "", fmt.Errorf(
			"failed to read vote reason: %w: %w",
			ErrStorageError,
			err,
		)
	}
	return string(data), nil
}

func copyReceipt(receipt *Receipt) Receipt {
	ret := *receipt
	if receipt.Reason != nil {
		pos := *receipt.Reason
		ret.Reason = &pos
	}
	return ret
}
