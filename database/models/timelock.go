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

// TimelockTask is a task waiting out its timelock delay. The task hash
// is the identity hash over the full task tuple; rows are inserted on
// queue and removed on cancel or execution
type TimelockTask struct {
	ID       uint   `gorm:"primarykey"`
	TaskHash []byte `gorm:"uniqueIndex;size:32"`
	Target   string `gorm:"size:255"`
	Method   string `gorm:"size:255"`
	Args     []byte
	Cycles   types.Uint64
	Eta      uint64
}

func (TimelockTask) TableName() string {
	return "timelock_task"
}
