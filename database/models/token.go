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

// TokenParams is a single-row table holding the token metadata and the
// mutable token configuration
type TokenParams struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"size:255"`
	Symbol      string `gorm:"size:255"`
	Decimals    uint8
	Owner       string `gorm:"size:255"`
	FeeTo       string `gorm:"size:255"`
	Fee         types.Uint64
	TotalSupply types.Uint64
}

func (TokenParams) TableName() string {
	return "token_params"
}
