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

package ledger

import (
	"github.com/blinklabs-io/bravo/event"
)

const (
	TransferEventType event.EventType = "ledger.transfer"
	ApproveEventType  event.EventType = "ledger.approve"
	MintEventType     event.EventType = "ledger.mint"
	BurnEventType     event.EventType = "ledger.burn"
	DelegateEventType event.EventType = "ledger.delegate"
)

// TransferEvent is emitted for both Transfer and TransferFrom. Caller
// differs from From when a spender moved the tokens via an allowance.
type TransferEvent struct {
	Caller    AccountID
	From      AccountID
	To        AccountID
	Value     uint64
	Fee       uint64
	Timestamp Timestamp
}

// ApproveEvent is emitted when an allowance is granted or removed
type ApproveEvent struct {
	Owner     AccountID
	Spender   AccountID
	Value     uint64
	Fee       uint64
	Timestamp Timestamp
}

// MintEvent is emitted when the owner creates new tokens
type MintEvent struct {
	Caller    AccountID
	To        AccountID
	Value     uint64
	Timestamp Timestamp
}

// BurnEvent is emitted when an account destroys its own tokens
type BurnEvent struct {
	From      AccountID
	Value     uint64
	Timestamp Timestamp
}

// DelegateEvent is emitted when an account changes its delegation. From
// and To are the previous and new delegatees.
type DelegateEvent struct {
	Account   AccountID
	From      AccountID
	To        AccountID
	Balance   uint64
	Timestamp Timestamp
}
