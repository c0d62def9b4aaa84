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

package bravo

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
)

// Methods the loopback dispatcher resolves on the engine's own account.
// Numeric setters take a single argument encoded with EncodeUint64Arg;
// MethodSetPendingAdmin takes the account ID as UTF-8 bytes.
const (
	MethodSetQuorumVotes       = "set_quorum_votes"
	MethodSetVotingDelay       = "set_voting_delay"
	MethodSetVotingPeriod      = "set_voting_period"
	MethodSetProposalThreshold = "set_proposal_threshold"
	MethodSetTimelockDelay     = "set_timelock_delay"
	MethodSetPendingAdmin      = "set_pending_admin"
)

// EncodeUint64Arg encodes a parameter value as the argument payload the
// loopback dispatcher expects
func EncodeUint64Arg(value uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, value)
}

func decodeUint64Arg(args []byte) (uint64, error) {
	if len(args) != 8 {
		return 0, fmt.Errorf("expected 8 argument bytes, got %d", len(args))
	}
	return binary.BigEndian.Uint64(args), nil
}

// ledgerVoteSource resolves voting power from the embedded token ledger
type ledgerVoteSource struct {
	ledger *ledger.Ledger
}

func (s *ledgerVoteSource) GetCurrentVotes(
	_ context.Context,
	account ledger.AccountID,
) (uint64, error) {
	return s.ledger.GetCurrentVotes(account), nil
}

func (s *ledgerVoteSource) GetPriorVotes(
	_ context.Context,
	account ledger.AccountID,
	at uint64,
) (uint64, error) {
	return s.ledger.GetPriorVotes(account, ledger.Timestamp(at)), nil
}

// loopbackDispatcher resolves tasks addressed to the engine's own
// account to its parameter setters, so passed proposals can reconfigure
// governance. Tasks for other targets go to the next dispatcher, or
// fail when none is configured.
type loopbackDispatcher struct {
	engine *governance.GovernanceEngine
	self   ledger.AccountID
	next   governance.Dispatcher
}

func (d *loopbackDispatcher) Dispatch(
	ctx context.Context,
	task governance.Task,
) error {
	if task.Target != d.self {
		if d.next == nil {
			return fmt.Errorf(
				"no dispatcher configured for target %s",
				task.Target,
			)
		}
		return d.next.Dispatch(ctx, task)
	}
	// A passed proposal acts with the admin's authority
	admin := d.engine.Params().Admin
	switch task.Method {
	case MethodSetQuorumVotes:
		value, err := decodeUint64Arg(task.Args)
		if err != nil {
			return err
		}
		return d.engine.SetQuorumVotes(admin, value)
	case MethodSetVotingDelay:
		value, err := decodeUint64Arg(task.Args)
		if err != nil {
			return err
		}
		return d.engine.SetVotingDelay(admin, value)
	case MethodSetVotingPeriod:
		value, err := decodeUint64Arg(task.Args)
		if err != nil {
			return err
		}
		return d.engine.SetVotingPeriod(admin, value)
	case MethodSetProposalThreshold:
		value, err := decodeUint64Arg(task.Args)
		if err != nil {
			return err
		}
		return d.engine.SetProposalThreshold(admin, value)
	case MethodSetTimelockDelay:
		value, err := decodeUint64Arg(task.Args)
		if err != nil {
			return err
		}
		return d.engine.SetTimelockDelay(admin, value)
	case MethodSetPendingAdmin:
		if len(task.Args) == 0 {
			return fmt.Errorf("empty pending admin argument")
		}
		return d.engine.SetPendingAdmin(
			admin,
			ledger.AccountID(task.Args),
		)
	default:
		return fmt.Errorf("unknown governance method %s", task.Method)
	}
}
