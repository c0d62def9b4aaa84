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

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/ledger"
)

// Snapshot is a point-in-time copy of the full governance state.
// Entries are sorted so the serialized form is reproducible. The append
// log content travels separately; LogHead records how much of it the
// captured state references.
type Snapshot struct {
	Name              string
	Admin             string
	PendingAdmin      string
	QuorumVotes       uint64
	ProposalThreshold uint64
	VotingDelay       uint64
	VotingPeriod      uint64
	TimelockDelay     uint64
	LogHead           uint64
	Proposals         []SnapshotProposal
	Receipts          []SnapshotReceipt
	Tasks             []SnapshotTask
}

type SnapshotProposal struct {
	ID           uint64
	Proposer     string
	Title        string
	DescOffset   uint64
	DescLength   uint64
	StartTime    uint64
	EndTime      uint64
	SupportVotes uint64
	AgainstVotes uint64
	AbstainVotes uint64
	Canceled     bool
	Executing    bool
	Executed     bool
	TaskTarget   string
	TaskMethod   string
	TaskArgs     []byte
	TaskCycles   uint64
	Eta          uint64
}

type SnapshotReceipt struct {
	ProposalID   uint64
	Voter        string
	VoteType     uint8
	Votes        uint64
	ReasonOffset uint64
	ReasonLength uint64
	HasReason    bool
}

type SnapshotTask struct {
	Target string
	Method string
	Args   []byte
	Cycles uint64
	Eta    uint64
}

// Snapshot captures the current governance state
func (g *GovernanceEngine) Snapshot() *Snapshot {
	g.RLock()
	defer g.RUnlock()
	snap := &Snapshot{
		Name:              g.name,
		Admin:             string(g.admin),
		PendingAdmin:      string(g.pendingAdmin),
		QuorumVotes:       g.quorumVotes,
		ProposalThreshold: g.proposalThreshold,
		VotingDelay:       g.votingDelay,
		VotingPeriod:      g.votingPeriod,
		TimelockDelay:     g.timelock.Delay(),
		LogHead:           g.log.Size(),
	}
	for _, p := range g.proposals {
		snap.Proposals = append(snap.Proposals, SnapshotProposal{
			ID:           p.ID,
			Proposer:     string(p.Proposer),
			Title:        p.Title,
			DescOffset:   p.Description.Offset,
			DescLength:   p.Description.Length,
			StartTime:    p.StartTime,
			EndTime:      p.EndTime,
			SupportVotes: p.SupportVotes,
			AgainstVotes: p.AgainstVotes,
			AbstainVotes: p.AbstainVotes,
			Canceled:     p.Canceled,
			Executing:    p.Executing,
			Executed:     p.Executed,
			TaskTarget:   string(p.Task.Target),
			TaskMethod:   p.Task.Method,
			TaskArgs:     p.Task.Args,
			TaskCycles:   p.Task.Cycles,
			Eta:          p.Task.Eta,
		})
	}
	for proposalID, receipts := range g.receipts {
		for _, receipt := range receipts {
			sr := SnapshotReceipt{
				ProposalID: proposalID,
				Voter:      string(receipt.Voter),
				VoteType:   uint8(receipt.VoteType),
				Votes:      receipt.Votes,
			}
			if receipt.Reason != nil {
				sr.ReasonOffset = receipt.Reason.Offset
				sr.ReasonLength = receipt.Reason.Length
				sr.HasReason = true
			}
			snap.Receipts = append(snap.Receipts, sr)
		}
	}
	slices.SortFunc(snap.Receipts, func(a, b SnapshotReceipt) int {
		if a.ProposalID != b.ProposalID {
			if a.ProposalID < b.ProposalID {
				return -1
			}
			return 1
		}
		if a.Voter < b.Voter {
			return -1
		}
		if a.Voter > b.Voter {
			return 1
		}
		return 0
	})
	for _, task := range g.timelock.Tasks() {
		snap.Tasks = append(snap.Tasks, SnapshotTask{
			Target: string(task.Target),
			Method: task.Method,
			Args:   task.Args,
			Cycles: task.Cycles,
			Eta:    task.Eta,
		})
	}
	return snap
}

// LoadSnapshot replaces the governance state with the snapshot contents
// and writes all rows through to the database using the provided
// transaction. The caller owns the commit, and must restore the append
// log content before calling so stored positions resolve.
func (g *GovernanceEngine) LoadSnapshot(
	snap *Snapshot,
	txn *database.Txn,
) error {
	g.Lock()
	defer g.Unlock()
	if snap.LogHead > g.log.Size() {
		return fmt.Errorf(
			"append log is shorter than the snapshot head: have %d, need %d",
			g.log.Size(),
			snap.LogHead,
		)
	}
	for i, sp := range snap.Proposals {
		if sp.ID != uint64(i) {
			return fmt.Errorf(
				"snapshot proposal IDs are not contiguous from zero: index %d has ID %d",
				i,
				sp.ID,
			)
		}
	}
	g.name = snap.Name
	g.admin = ledger.AccountID(snap.Admin)
	g.pendingAdmin = ledger.AccountID(snap.PendingAdmin)
	g.quorumVotes = snap.QuorumVotes
	g.proposalThreshold = snap.ProposalThreshold
	g.votingDelay = snap.VotingDelay
	g.votingPeriod = snap.VotingPeriod
	g.timelock.SetDelay(snap.TimelockDelay)
	g.proposals = make([]*Proposal, 0, len(snap.Proposals))
	g.receipts = make(map[uint64]map[ledger.AccountID]*Receipt)
	g.latestProposalIds = make(map[ledger.AccountID]uint64)
	for _, sp := range snap.Proposals {
		p := &Proposal{
			ID:       sp.ID,
			Proposer: ledger.AccountID(sp.Proposer),
			Title:    sp.Title,
			Description: appendlog.Position{
				Offset: sp.DescOffset,
				Length: sp.DescLength,
			},
			Task: Task{
				Target: ledger.AccountID(sp.TaskTarget),
				Method: sp.TaskMethod,
				Args:   sp.TaskArgs,
				Cycles: sp.TaskCycles,
				Eta:    sp.Eta,
			},
			StartTime:    sp.StartTime,
			EndTime:      sp.EndTime,
			SupportVotes: sp.SupportVotes,
			AgainstVotes: sp.AgainstVotes,
			AbstainVotes: sp.AbstainVotes,
			Canceled:     sp.Canceled,
			Executing:    sp.Executing,
			Executed:     sp.Executed,
		}
		g.proposals = append(g.proposals, p)
		g.latestProposalIds[p.Proposer] = p.ID
	}
	for _, sr := range snap.Receipts {
		receipt := &Receipt{
			Voter:    ledger.AccountID(sr.Voter),
			VoteType: VoteType(sr.VoteType),
			Votes:    sr.Votes,
		}
		if sr.HasReason {
			receipt.Reason = &appendlog.Position{
				Offset: sr.ReasonOffset,
				Length: sr.ReasonLength,
			}
		}
		if _, ok := g.receipts[sr.ProposalID]; !ok {
			g.receipts[sr.ProposalID] = make(map[ledger.AccountID]*Receipt)
		}
		g.receipts[sr.ProposalID][receipt.Voter] = receipt
	}
	tasks := make([]Task, 0, len(snap.Tasks))
	for _, st := range snap.Tasks {
		tasks = append(tasks, Task{
			Target: ledger.AccountID(st.Target),
			Method: st.Method,
			Args:   st.Args,
			Cycles: st.Cycles,
			Eta:    st.Eta,
		})
	}
	if err := g.timelock.RestoreTasks(tasks, txn); err != nil {
		return err
	}
	g.metrics.proposals.Set(float64(len(g.proposals)))
	if g.db == nil {
		return nil
	}
	if err := g.persistParams(g.paramsRow(), txn); err != nil {
		return err
	}
	for _, p := range g.proposals {
		if err := g.persistProposal(p, txn); err != nil {
			return err
		}
	}
	for proposalID, receipts := range g.receipts {
		for _, receipt := range receipts {
			if err := g.persistReceipt(proposalID, receipt, txn); err != nil {
				return err
			}
		}
	}
	return nil
}
