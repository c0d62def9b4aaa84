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
	"context"

	"github.com/blinklabs-io/bravo/ledger"
)

// VoteSource resolves voting power for governance checks. Proposing and
// canceling use current votes; casting a vote uses the votes held at
// the proposal's start time.
type VoteSource interface {
	GetCurrentVotes(
		ctx context.Context,
		account ledger.AccountID,
	) (uint64, error)
	GetPriorVotes(
		ctx context.Context,
		account ledger.AccountID,
		at uint64,
	) (uint64, error)
}

// Dispatcher performs a proposal's task once its timelock expires
type Dispatcher interface {
	Dispatch(ctx context.Context, task Task) error
}

// DispatcherFunc adapts a plain function to the Dispatcher interface
type DispatcherFunc func(ctx context.Context, task Task) error

func (f DispatcherFunc) Dispatch(ctx context.Context, task Task) error {
	return f(ctx, task)
}
