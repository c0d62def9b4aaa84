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
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller is not allowed to
	// perform the requested operation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBelowThreshold is returned when the proposer's voting power does
	// not exceed the proposal threshold
	ErrBelowThreshold = errors.New("below proposal threshold")

	// ErrInvalidProposalId is returned when no proposal exists with the
	// given ID
	ErrInvalidProposalId = errors.New("invalid proposal id")

	// ErrVotingClosed is returned when casting a vote on a proposal that
	// is not active
	ErrVotingClosed = errors.New("voting is closed")

	// ErrNotQueued is returned when a proposal or task is not in the
	// right stage of the execution pipeline
	ErrNotQueued = errors.New("not queued")

	// ErrTooEarly is returned when executing a task before its eta
	ErrTooEarly = errors.New("too early to execute")

	// ErrStale is returned when executing a task after its grace period
	ErrStale = errors.New("task is stale")

	// ErrAlreadyHasLiveProposal is returned when the proposer's latest
	// proposal has not finished
	ErrAlreadyHasLiveProposal = errors.New("proposer already has a live proposal")

	// ErrAlreadyVoted is returned when a voter casts a second vote on the
	// same proposal
	ErrAlreadyVoted = errors.New("already voted")

	// ErrVoteQueryFailed is returned when a voting power lookup against
	// the ledger fails
	ErrVoteQueryFailed = errors.New("vote query failed")

	// ErrExternalCallFailed is returned when dispatching a proposal's
	// task fails, whether the call never went out or the target rejected
	// it
	ErrExternalCallFailed = errors.New("external call failed")

	// ErrStorageError is returned when persisting state or reading from
	// the append log fails
	ErrStorageError = errors.New("storage error")
)

// BelowThresholdError provides details when a proposer's voting power
// does not exceed the proposal threshold
type BelowThresholdError struct {
	Votes     uint64
	Threshold uint64
}

func (e *BelowThresholdError) Error() string {
	return fmt.Sprintf(
		"proposer votes %d below proposal threshold %d",
		e.Votes,
		e.Threshold,
	)
}

func (e *BelowThresholdError) Unwrap() error {
	return ErrBelowThreshold
}

// TooEarlyError provides details when a task is executed before its eta
type TooEarlyError struct {
	Eta uint64
	Now uint64
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf(
		"task has not surpassed the time lock: eta %d, now %d",
		e.Eta,
		e.Now,
	)
}

func (e *TooEarlyError) Unwrap() error {
	return ErrTooEarly
}

// StaleError provides details when a task is executed after its grace
// period
type StaleError struct {
	Eta uint64
	Now uint64
}

func (e *StaleError) Error() string {
	return fmt.Sprintf(
		"task is stale: eta %d, grace period end %d, now %d",
		e.Eta,
		e.Eta+GracePeriod,
		e.Now,
	)
}

func (e *StaleError) Unwrap() error {
	return ErrStale
}
