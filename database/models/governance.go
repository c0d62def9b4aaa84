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

package models

import (
	"github.com/blinklabs-io/bravo/database/types"
)

// Proposal is the durable record of a governance proposal. This mirrors
// the in-memory proposal exactly; the description body lives in the blob
// store and is referenced by offset and length
type Proposal struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint64 `gorm:"uniqueIndex"`
	Proposer   string `gorm:"index;size:255"`
	Title      string
	StartTime  uint64
	EndTime    uint64
	DescOffset uint64
	DescLength uint64

	// Vote tallies
	SupportVotes types.Uint64
	AgainstVotes types.Uint64
	AbstainVotes types.Uint64

	// Lifecycle flags
	Canceled  bool
	Executing bool
	Executed  bool

	// Queued task
	TaskTarget string `gorm:"size:255"`
	TaskMethod string `gorm:"size:255"`
	TaskArgs   []byte
	TaskCycles types.Uint64
	Eta        uint64
}

func (Proposal) TableName() string {
	return "proposal"
}

// VoteReceipt is the durable record of a single cast vote. The optional
// reason body lives in the blob store
type VoteReceipt struct {
	ID           uint   `gorm:"primarykey"`
	ProposalID   uint64 `gorm:"uniqueIndex:idx_receipt_proposal_voter"`
	Voter        string `gorm:"uniqueIndex:idx_receipt_proposal_voter;size:255"`
	Support      uint8
	Votes        types.Uint64
	ReasonOffset uint64
	ReasonLength uint64
	HasReason    bool
}

func (VoteReceipt) TableName() string {
	return "vote_receipt"
}

// GovernanceParams is a single-row table holding the mutable governance
// configuration along with the append log head, which marks how much of
// the blob-backed log has been durably written
type GovernanceParams struct {
	ID                uint   `gorm:"primarykey"`
	Name              string `gorm:"size:255"`
	Admin             string `gorm:"size:255"`
	PendingAdmin      string `gorm:"size:255"`
	QuorumVotes       types.Uint64
	ProposalThreshold types.Uint64
	VotingDelay       uint64
	VotingPeriod      uint64
	TimelockDelay     uint64
	LogHead           uint64
}

func (GovernanceParams) TableName() string {
	return "governance_params"
}
