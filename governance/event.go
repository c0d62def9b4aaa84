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
	"github.com/blinklabs-io/bravo/event"
	"github.com/blinklabs-io/bravo/ledger"
)

const (
	ProposeEventType         event.EventType = "governance.propose"
	VoteEventType            event.EventType = "governance.vote"
	QueueEventType           event.EventType = "governance.queue"
	ExecuteEventType         event.EventType = "governance.execute"
	CancelEventType          event.EventType = "governance.cancel"
	SetPendingAdminEventType event.EventType = "governance.set_pending_admin"
	AcceptAdminEventType     event.EventType = "governance.accept_admin"
)

// ProposeEvent is emitted when a proposal is created. Description holds
// the full text, not the append log position.
type ProposeEvent struct {
	ProposalID  uint64
	Proposer    ledger.AccountID
	Title       string
	Description string
	Target      ledger.AccountID
	Method      string
	Args        []byte
	Cycles      uint64
	Timestamp   uint64
}

type VoteEvent struct {
	ProposalID uint64
	Voter      ledger.AccountID
	VoteType   VoteType
	Votes      uint64
	Timestamp  uint64
}

type QueueEvent struct {
	ProposalID uint64
	Eta        uint64
	Timestamp  uint64
}

// ExecuteEvent is emitted after PostExecute regardless of outcome.
type ExecuteEvent struct {
	ProposalID uint64
	Success    bool
	Timestamp  uint64
}

type CancelEvent struct {
	ProposalID uint64
	Caller     ledger.AccountID
	Timestamp  uint64
}

type SetPendingAdminEvent struct {
	Admin        ledger.AccountID
	PendingAdmin ledger.AccountID
}

type AcceptAdminEvent struct {
	Admin ledger.AccountID
}
