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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Healthy bool `json:"healthy"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// StatusResponse acknowledges an operation with no other output.
type StatusResponse struct {
	Status string `json:"status"`
}

// TaskResponse is the call a passed proposal dispatches. Args is
// base64-encoded in JSON. A zero eta means the task has not been
// queued.
type TaskResponse struct {
	Target string `json:"target"`
	Method string `json:"method"`
	Args   []byte `json:"args,omitempty"`
	Cycles uint64 `json:"cycles"`
	Eta    uint64 `json:"eta"`
}

// ProposalResponse represents a governance proposal. The description
// body is only filled on the single-proposal endpoint.
type ProposalResponse struct {
	ID           uint64       `json:"id"`
	Proposer     string       `json:"proposer"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Task         TaskResponse `json:"task"`
	StartTime    uint64       `json:"start_time"`
	EndTime      uint64       `json:"end_time"`
	SupportVotes uint64       `json:"support_votes"`
	AgainstVotes uint64       `json:"against_votes"`
	AbstainVotes uint64       `json:"abstain_votes"`
	State        string       `json:"state"`
}

// StateResponse is returned by GET /governance/proposals/{id}/state.
type StateResponse struct {
	ID    uint64 `json:"id"`
	State string `json:"state"`
}

// ReceiptResponse represents a recorded vote on a proposal.
type ReceiptResponse struct {
	Voter    string `json:"voter"`
	VoteType string `json:"vote_type"`
	Votes    uint64 `json:"votes"`
	Reason   string `json:"reason,omitempty"`
}

// GovernanceConfigResponse is returned by GET /governance/config.
type GovernanceConfigResponse struct {
	Name              string `json:"name"`
	Admin             string `json:"admin"`
	PendingAdmin      string `json:"pending_admin,omitempty"`
	QuorumVotes       uint64 `json:"quorum_votes"`
	ProposalThreshold uint64 `json:"proposal_threshold"`
	VotingDelay       uint64 `json:"voting_delay"`
	VotingPeriod      uint64 `json:"voting_period"`
	TimelockDelay     uint64 `json:"timelock_delay"`
	ProposalCount     uint64 `json:"proposal_count"`
}

// TokenMetadataResponse is returned by GET /ledger/metadata.
type TokenMetadataResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	Owner       string `json:"owner"`
	FeeTo       string `json:"fee_to,omitempty"`
	Fee         uint64 `json:"fee"`
	TotalSupply uint64 `json:"total_supply"`
}

// AccountResponse is returned by GET /ledger/accounts/{id}.
type AccountResponse struct {
	Account      string `json:"account"`
	Balance      uint64 `json:"balance"`
	Delegate     string `json:"delegate"`
	CurrentVotes uint64 `json:"current_votes"`
}

// VotesResponse is returned by GET /ledger/accounts/{id}/votes and
// carries the account's voting power at the requested time.
type VotesResponse struct {
	Account string `json:"account"`
	At      uint64 `json:"at"`
	Votes   uint64 `json:"votes"`
}

// HolderResponse pairs an account with its balance in holder listings.
type HolderResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

// ProposeRequest is the body of POST /governance/proposals.
type ProposeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Method      string `json:"method"`
	Args        []byte `json:"args,omitempty"`
	Cycles      uint64 `json:"cycles"`
}

// ProposeResponse carries the new proposal's ID.
type ProposeResponse struct {
	ID uint64 `json:"id"`
}

// VoteRequest is the body of POST /governance/proposals/{id}/votes.
// VoteType is one of "support", "against", or "abstain".
type VoteRequest struct {
	VoteType string `json:"vote_type"`
	Reason   string `json:"reason,omitempty"`
}

// QueueResponse carries the eta assigned to a queued proposal.
type QueueResponse struct {
	ID  uint64 `json:"id"`
	Eta uint64 `json:"eta"`
}

// ParamRequest carries a single numeric parameter value.
type ParamRequest struct {
	Value uint64 `json:"value"`
}

// AccountRequest carries a single account identity.
type AccountRequest struct {
	Account string `json:"account"`
}

// TransferRequest is the body of POST /ledger/transfers. When From is
// set the transfer draws on an allowance granted to the caller;
// otherwise it moves the caller's own balance.
type TransferRequest struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

// ApprovalRequest is the body of POST /ledger/approvals.
type ApprovalRequest struct {
	Spender string `json:"spender"`
	Value   uint64 `json:"value"`
}

// MintRequest is the body of POST /ledger/mint.
type MintRequest struct {
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

// BurnRequest is the body of POST /ledger/burn.
type BurnRequest struct {
	Value uint64 `json:"value"`
}

// DelegateRequest is the body of POST /ledger/delegate.
type DelegateRequest struct {
	Delegatee string `json:"delegatee"`
}
