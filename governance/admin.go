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

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"github.com/blinklabs-io/bravo/ledger"
)

func (g *GovernanceEngine) saveParams(params *models.GovernanceParams) error {
	return g.withMetadataTxn(func(txn *database.Txn) error {
		return g.persistParams(params, txn)
	})
}

// SetQuorumVotes updates the support-vote count a proposal needs to
// pass. Admin only.
func (g *GovernanceEngine) SetQuorumVotes(
	caller ledger.AccountID,
	quorumVotes uint64,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set quorum votes requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.QuorumVotes = types.Uint64(quorumVotes)
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.quorumVotes = quorumVotes
	g.logger.Info(
		"updated quorum votes",
		"component", "governance",
		"quorum_votes", quorumVotes,
	)
	return nil
}

// SetVotingPeriod updates how long voting stays open on new proposals.
// Admin only.
func (g *GovernanceEngine) SetVotingPeriod(
	caller ledger.AccountID,
	votingPeriod uint64,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set voting period requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.VotingPeriod = votingPeriod
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.votingPeriod = votingPeriod
	g.logger.Info(
		"updated voting period",
		"component", "governance",
		"voting_period", votingPeriod,
	)
	return nil
}

// SetVotingDelay updates the delay before voting opens on new
// proposals. Admin only.
func (g *GovernanceEngine) SetVotingDelay(
	caller ledger.AccountID,
	votingDelay uint64,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set voting delay requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.VotingDelay = votingDelay
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.votingDelay = votingDelay
	g.logger.Info(
		"updated voting delay",
		"component", "governance",
		"voting_delay", votingDelay,
	)
	return nil
}

// SetProposalThreshold updates the voting power required to propose.
// Admin only.
func (g *GovernanceEngine) SetProposalThreshold(
	caller ledger.AccountID,
	proposalThreshold uint64,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set proposal threshold requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.ProposalThreshold = types.Uint64(proposalThreshold)
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.proposalThreshold = proposalThreshold
	g.logger.Info(
		"updated proposal threshold",
		"component", "governance",
		"proposal_threshold", proposalThreshold,
	)
	return nil
}

// SetTimelockDelay updates the delay between queueing a proposal and
// its task becoming executable. Admin only.
func (g *GovernanceEngine) SetTimelockDelay(
	caller ledger.AccountID,
	timelockDelay uint64,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set timelock delay requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.TimelockDelay = timelockDelay
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.timelock.SetDelay(timelockDelay)
	g.logger.Info(
		"updated timelock delay",
		"component", "governance",
		"timelock_delay", timelockDelay,
	)
	return nil
}

// SetPendingAdmin nominates the next admin. The nominee takes over only
// by calling AcceptAdmin. Admin only.
func (g *GovernanceEngine) SetPendingAdmin(
	caller ledger.AccountID,
	pendingAdmin ledger.AccountID,
) error {
	g.Lock()
	defer g.Unlock()
	if caller != g.admin {
		return fmt.Errorf(
			"set pending admin requires the governance admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.PendingAdmin = string(pendingAdmin)
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.pendingAdmin = pendingAdmin
	g.logger.Info(
		"nominated pending admin",
		"component", "governance",
		"pending_admin", pendingAdmin,
	)
	g.publish(
		SetPendingAdminEventType,
		SetPendingAdminEvent{
			Admin:        caller,
			PendingAdmin: pendingAdmin,
		},
	)
	return nil
}

// AcceptAdmin promotes the pending admin to admin and clears the
// pending slot. Only the pending admin may call it.
func (g *GovernanceEngine) AcceptAdmin(caller ledger.AccountID) error {
	g.Lock()
	defer g.Unlock()
	if g.pendingAdmin == "" || caller != g.pendingAdmin {
		return fmt.Errorf(
			"accept admin requires the pending admin: %w",
			ErrUnauthorized,
		)
	}
	params := g.paramsRow()
	params.Admin = string(caller)
	params.PendingAdmin = ""
	if err := g.saveParams(params); err != nil {
		return err
	}
	g.admin = caller
	g.pendingAdmin = ""
	g.logger.Info(
		"accepted governance admin",
		"component", "governance",
		"admin", caller,
	)
	g.publish(
		AcceptAdminEventType,
		AcceptAdminEvent{
			Admin: caller,
		},
	)
	return nil
}
