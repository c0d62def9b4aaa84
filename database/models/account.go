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

// Account holds the token balance and delegation target for a single
// account. Rows exist only for accounts with a non-zero balance or an
// explicit delegation, matching the in-memory ledger which removes
// empty entries rather than zeroing them
type Account struct {
	ID       uint   `gorm:"primarykey"`
	Address  string `gorm:"uniqueIndex;size:255"`
	Balance  types.Uint64
	Delegate string `gorm:"size:255"`
}

func (Account) TableName() string {
	return "account"
}

// Allowance is a spending allowance granted by an owner to a spender.
// Rows are deleted when the allowance is revoked
type Allowance struct {
	ID      uint   `gorm:"primarykey"`
	Owner   string `gorm:"uniqueIndex:idx_allowance_owner_spender;size:255"`
	Spender string `gorm:"uniqueIndex:idx_allowance_owner_spender;size:255"`
	Amount  types.Uint64
}

func (Allowance) TableName() string {
	return "allowance"
}

// Checkpoint records the voting power of an account at a point in time.
// At most one checkpoint exists per account and timestamp; a write at
// the same timestamp as the newest checkpoint overwrites it
type Checkpoint struct {
	ID        uint   `gorm:"primarykey"`
	Account   string `gorm:"uniqueIndex:idx_checkpoint_account_ts;size:255"`
	Timestamp uint64 `gorm:"uniqueIndex:idx_checkpoint_account_ts"`
	Votes     types.Uint64
}

func (Checkpoint) TableName() string {
	return "checkpoint"
}
