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

// ProposalState is the lifecycle state of a proposal. It is never
// stored; it is evaluated from the proposal, the quorum, and the
// current time.
type ProposalState uint8

const (
	StatePending ProposalState = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExecuting
	StateExecuted
	StateExpired
)

func (s ProposalState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCanceled:
		return "canceled"
	case StateDefeated:
		return "defeated"
	case StateSucceeded:
		return "succeeded"
	case StateQueued:
		return "queued"
	case StateExecuting:
		return "executing"
	case StateExecuted:
		return "executed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// StateAt evaluates the proposal's state at the given time. The first
// matching rule wins: canceled, then the voting window, then the tally
// against the quorum, then the execution pipeline. A proposal with no
// eta has passed but not been queued; one past its eta by more than the
// grace period can no longer execute.
func (p *Proposal) StateAt(quorumVotes uint64, now uint64) ProposalState {
	switch {
	case p.Canceled:
		return StateCanceled
	case now < p.StartTime:
		return StatePending
	case now < p.EndTime:
		return StateActive
	case p.SupportVotes <= p.AgainstVotes || p.SupportVotes < quorumVotes:
		return StateDefeated
	case p.Task.Eta == 0:
		return StateSucceeded
	case p.Executed:
		return StateExecuted
	case p.Executing:
		return StateExecuting
	case now > p.Task.Eta+GracePeriod:
		return StateExpired
	default:
		return StateQueued
	}
}
