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
	"crypto/sha256"
	"encoding/binary"

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/ledger"
)

// VoteType is the stance a voter takes on a proposal
type VoteType uint8

const (
	VoteTypeSupport VoteType = iota
	VoteTypeAgainst
	VoteTypeAbstain
)

func (v VoteType) String() string {
	switch v {
	case VoteTypeSupport:
		return "support"
	case VoteTypeAgainst:
		return "against"
	case VoteTypeAbstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// Task is the external call a passed proposal dispatches. A task's
// identity covers every field, including the eta, so the same call
// queued at different times is a different queue entry.
type Task struct {
	// Target is the account the call is addressed to
	Target ledger.AccountID
	// Method is the method name to call on the target
	Method string
	// Args is the encoded argument payload
	Args []byte
	// Cycles is the resource budget attached to the call
	Cycles uint64
	// Eta is the earliest time the task may execute. Zero means the
	// task has not been queued.
	Eta uint64
}

// Hash returns the identity hash of the task. Variable-length fields
// are length-prefixed so no two distinct tasks share an encoding.
func (t Task) Hash() [32]byte {
	buf := make([]byte, 0, 40+len(t.Target)+len(t.Method)+len(t.Args))
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(t.Target)))
	buf = append(buf, []byte(t.Target)...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(t.Method)))
	buf = append(buf, []byte(t.Method)...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(t.Args)))
	buf = append(buf, t.Args...)
	buf = binary.BigEndian.AppendUint64(buf, t.Cycles)
	buf = binary.BigEndian.AppendUint64(buf, t.Eta)
	return sha256.Sum256(buf)
}

// Receipt is a voter's recorded vote on a proposal
type Receipt struct {
	Voter    ledger.AccountID
	VoteType VoteType
	// Votes is the voting power the vote carried
	Votes uint64
	// Reason points at the voter's reason text in the append log, or is
	// nil when no reason was given
	Reason *appendlog.Position
}

// Proposal is a governance proposal. The description body lives in the
// append log and is referenced by position; everything else is inline.
type Proposal struct {
	// ID is the sequential proposal ID, assigned at creation
	ID       uint64
	Proposer ledger.AccountID
	Title    string
	// Description points at the description text in the append log
	Description appendlog.Position
	// Task is the call dispatched if the proposal passes
	Task Task
	// StartTime is when voting opens. Voting power is measured at this
	// time, so holders must delegate before it.
	StartTime uint64
	// EndTime is when voting closes
	EndTime      uint64
	SupportVotes uint64
	AgainstVotes uint64
	AbstainVotes uint64
	Canceled     bool
	Executing    bool
	Executed     bool
}
