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
	"github.com/blinklabs-io/bravo/ledger"
)

// Queue moves a succeeded proposal into the timelock and returns the
// eta at which its task becomes executable
func (g *GovernanceEngine) Queue(id uint64, now uint64) (uint64, error) {
	g.Lock()
	defer g.Unlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return 0, err
	}
	if g.stateOf(p, now) != StateSucceeded {
		return 0, fmt.Errorf(
			"proposal %d can only be queued once succeeded: %w",
			id,
			ErrNotQueued,
		)
	}
	eta := now + g.timelock.Delay()
	task := p.Task
	task.Eta = eta
	updated := *p
	updated.Task = task
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.persistProposal(&updated, txn); err != nil {
			return err
		}
		return g.timelock.QueueTask(task, txn)
	})
	if err != nil {
		return 0, err
	}
	*p = updated
	g.logger.Info(
		"queued proposal",
		"component", "governance",
		"proposal_id", id,
		"eta", eta,
	)
	g.publish(
		QueueEventType,
		QueueEvent{
			ProposalID: id,
			Eta:        eta,
			Timestamp:  now,
		},
	)
	return eta, nil
}

// PreExecute starts executing a queued proposal. The timelock validates
// the execution window and consumes the task's queue slot, then the
// proposal is marked executing. The caller performs the actual dispatch
// and reports the outcome through PostExecute.
func (g *GovernanceEngine) PreExecute(id uint64, now uint64) error {
	g.Lock()
	defer g.Unlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return err
	}
	// Expired proposals fall through to the timelock's stale check
	if state := g.stateOf(p, now); state != StateQueued &&
		state != StateExpired {
		return fmt.Errorf(
			"proposal %d can only be executed once queued: %w",
			id,
			ErrNotQueued,
		)
	}
	updated := *p
	updated.Executing = true
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.timelock.PreExecuteTask(p.Task, now, txn); err != nil {
			return err
		}
		return g.persistProposal(&updated, txn)
	})
	if err != nil {
		return err
	}
	*p = updated
	g.logger.Info(
		"executing proposal",
		"component", "governance",
		"proposal_id", id,
		"target", p.Task.Target,
		"method", p.Task.Method,
	)
	return nil
}

// PostExecute records the outcome of an executing proposal's dispatch.
// Success marks the proposal executed. Failure clears the executing
// flag and re-queues the task, so the proposal returns to Queued and
// the dispatch can be retried within the grace period.
func (g *GovernanceEngine) PostExecute(
	id uint64,
	success bool,
	now uint64,
) error {
	g.Lock()
	defer g.Unlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return err
	}
	if g.stateOf(p, now) != StateExecuting {
		return fmt.Errorf(
			"proposal %d is not executing: %w",
			id,
			ErrNotQueued,
		)
	}
	updated := *p
	updated.Executing = false
	updated.Executed = success
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.persistProposal(&updated, txn); err != nil {
			return err
		}
		return g.timelock.PostExecuteTask(p.Task, success, txn)
	})
	if err != nil {
		return err
	}
	*p = updated
	if success {
		g.metrics.executionsTotal.Inc()
		g.logger.Info(
			"executed proposal",
			"component", "governance",
			"proposal_id", id,
		)
	} else {
		g.metrics.failedExecutionsTotal.Inc()
		g.logger.Warn(
			"proposal execution failed, task requeued",
			"component", "governance",
			"proposal_id", id,
			"eta", p.Task.Eta,
		)
	}
	g.publish(
		ExecuteEventType,
		ExecuteEvent{
			ProposalID: id,
			Success:    success,
			Timestamp:  now,
		},
	)
	return nil
}

// Cancel cancels a proposal and removes its task from the timelock if
// queued. The proposer can always cancel; anyone else can cancel only
// when the proposer's current voting power has fallen to or below the
// proposal threshold. Executing and executed proposals can no longer be
// canceled.
func (g *GovernanceEngine) Cancel(
	id uint64,
	caller ledger.AccountID,
	proposerCurrentVotes uint64,
	now uint64,
) error {
	g.Lock()
	defer g.Unlock()
	p, err := g.proposalByID(id)
	if err != nil {
		return err
	}
	switch g.stateOf(p, now) {
	case StateExecuting, StateExecuted:
		return fmt.Errorf(
			"proposal %d can no longer be canceled: %w",
			id,
			ErrUnauthorized,
		)
	}
	if caller != p.Proposer && proposerCurrentVotes > g.proposalThreshold {
		return fmt.Errorf(
			"proposer %s is still above the proposal threshold: %w",
			p.Proposer,
			ErrUnauthorized,
		)
	}
	updated := *p
	updated.Canceled = true
	err = g.withMetadataTxn(func(txn *database.Txn) error {
		if err := g.persistProposal(&updated, txn); err != nil {
			return err
		}
		return g.timelock.CancelTask(p.Task, txn)
	})
	if err != nil {
		return err
	}
	*p = updated
	g.logger.Info(
		"canceled proposal",
		"component", "governance",
		"proposal_id", id,
		"caller", caller,
	)
	g.publish(
		CancelEventType,
		CancelEvent{
			ProposalID: id,
			Caller:     caller,
			Timestamp:  now,
		},
	)
	return nil
}
