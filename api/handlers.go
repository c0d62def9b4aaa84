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

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
)

// CallerHeader is the trusted header carrying the caller's account
// identity. The server performs no authentication itself; the
// deployment is expected to set this header at its edge.
const CallerHeader = "X-Bravo-Caller"

// writeJSON writes a JSON response with the given status
// code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// statusForError maps a domain error onto an HTTP status code and
// status text.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, governance.ErrInvalidProposalId):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, governance.ErrExternalCallFailed):
		return http.StatusBadGateway, "Bad Gateway"
	case errors.Is(err, governance.ErrUnauthorized),
		errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, governance.ErrVotingClosed),
		errors.Is(err, governance.ErrNotQueued),
		errors.Is(err, governance.ErrTooEarly),
		errors.Is(err, governance.ErrStale),
		errors.Is(err, governance.ErrAlreadyHasLiveProposal),
		errors.Is(err, governance.ErrAlreadyVoted):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, governance.ErrBelowThreshold),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance):
		return http.StatusBadRequest, "Bad Request"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// writeOperationError maps a domain error onto an HTTP error response.
// Server-side failures are logged; client mistakes are not.
func (a *Api) writeOperationError(
	w http.ResponseWriter,
	err error,
) {
	status, errStr := statusForError(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error(
			"request failed",
			"error", err,
		)
	}
	writeError(w, status, errStr, err.Error())
}

// requireCaller resolves the caller identity from the trusted header.
// Requests without it are rejected before reaching the node.
func (a *Api) requireCaller(
	w http.ResponseWriter,
	r *http.Request,
) (ledger.AccountID, bool) {
	caller := ledger.AccountID(r.Header.Get(CallerHeader))
	if caller == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing "+CallerHeader+" header",
		)
		return "", false
	}
	return caller, true
}

// parseProposalID parses the {id} path segment.
func parseProposalID(
	w http.ResponseWriter,
	r *http.Request,
) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid proposal id",
		)
		return 0, false
	}
	return id, true
}

// decodeRequest decodes a JSON request body.
func decodeRequest(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return false
	}
	return true
}

func parseVoteType(s string) (governance.VoteType, error) {
	switch strings.ToLower(s) {
	case "support":
		return governance.VoteTypeSupport, nil
	case "against":
		return governance.VoteTypeAgainst, nil
	case "abstain":
		return governance.VoteTypeAbstain, nil
	default:
		return 0, fmt.Errorf("unknown vote type %q", s)
	}
}

// proposalResponse converts a proposal for the wire, evaluating its
// state as of now.
func (a *Api) proposalResponse(p *governance.Proposal) ProposalResponse {
	resp := ProposalResponse{
		ID:       p.ID,
		Proposer: string(p.Proposer),
		Title:    p.Title,
		Task: TaskResponse{
			Target: string(p.Task.Target),
			Method: p.Task.Method,
			Args:   p.Task.Args,
			Cycles: p.Task.Cycles,
			Eta:    p.Task.Eta,
		},
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		SupportVotes: p.SupportVotes,
		AgainstVotes: p.AgainstVotes,
		AbstainVotes: p.AbstainVotes,
	}
	if state, err := a.governor.State(p.ID); err == nil {
		resp.State = state.String()
	}
	return resp
}

// handleHealth handles GET /health and returns node health status.
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Healthy: true,
	})
}

// handleListProposals handles GET /governance/proposals and returns a
// page of proposals, newest first.
func (a *Api) handleListProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			err.Error(),
		)
		return
	}
	proposals := a.config.Governance.GetProposals(
		params.Page-1,
		params.Count,
	)
	total := int(a.config.Governance.ProposalCount()) // #nosec G115
	SetPaginationHeaders(w, total, params)
	resp := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		resp = append(resp, a.proposalResponse(&proposals[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetProposal handles GET /governance/proposals/{id} and returns
// the proposal with its description body.
func (a *Api) handleGetProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	p, err := a.config.Governance.GetProposal(id)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	desc, err := a.config.Governance.GetDescription(id)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	resp := a.proposalResponse(p)
	resp.Description = desc
	writeJSON(w, http.StatusOK, resp)
}

// handleGetProposalState handles
// GET /governance/proposals/{id}/state.
func (a *Api) handleGetProposalState(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	state, err := a.governor.State(id)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		ID:    id,
		State: state.String(),
	})
}

// handleGetProposalReceipts handles
// GET /governance/proposals/{id}/receipts and returns a page of vote
// receipts sorted by voter.
func (a *Api) handleGetProposalReceipts(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			err.Error(),
		)
		return
	}
	receipts, err := a.config.Governance.GetReceipts(
		id,
		params.Page-1,
		params.Count,
	)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	resp := make([]ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		item := ReceiptResponse{
			Voter:    string(receipt.Voter),
			VoteType: receipt.VoteType.String(),
			Votes:    receipt.Votes,
		}
		if receipt.Reason != nil {
			reason, err := a.config.Governance.GetReason(
				id,
				receipt.Voter,
			)
			if err != nil {
				a.writeOperationError(w, err)
				return
			}
			item.Reason = reason
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGovernanceConfig handles GET /governance/config and returns
// the governance parameters.
func (a *Api) handleGovernanceConfig(
	w http.ResponseWriter,
	_ *http.Request,
) {
	params := a.config.Governance.Params()
	writeJSON(w, http.StatusOK, GovernanceConfigResponse{
		Name:              params.Name,
		Admin:             string(params.Admin),
		PendingAdmin:      string(params.PendingAdmin),
		QuorumVotes:       params.QuorumVotes,
		ProposalThreshold: params.ProposalThreshold,
		VotingDelay:       params.VotingDelay,
		VotingPeriod:      params.VotingPeriod,
		TimelockDelay:     params.TimelockDelay,
		ProposalCount:     a.config.Governance.ProposalCount(),
	})
}

// handleTokenMetadata handles GET /ledger/metadata and returns the
// token parameters.
func (a *Api) handleTokenMetadata(
	w http.ResponseWriter,
	_ *http.Request,
) {
	metadata := a.config.Ledger.Metadata()
	writeJSON(w, http.StatusOK, TokenMetadataResponse{
		Name:        metadata.Name,
		Symbol:      metadata.Symbol,
		Decimals:    metadata.Decimals,
		Owner:       string(metadata.Owner),
		FeeTo:       string(metadata.FeeTo),
		Fee:         metadata.Fee,
		TotalSupply: metadata.TotalSupply,
	})
}

// handleGetAccount handles GET /ledger/accounts/{id} and returns the
// account's balance, delegate, and current voting power.
func (a *Api) handleGetAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	account := ledger.AccountID(r.PathValue("id"))
	writeJSON(w, http.StatusOK, AccountResponse{
		Account:      string(account),
		Balance:      a.config.Ledger.BalanceOf(account),
		Delegate:     string(a.config.Ledger.DelegateOf(account)),
		CurrentVotes: a.config.Ledger.GetCurrentVotes(account),
	})
}

// handleGetAccountVotes handles GET /ledger/accounts/{id}/votes and
// returns the account's voting power at the time given by the "at"
// parameter.
func (a *Api) handleGetAccountVotes(
	w http.ResponseWriter,
	r *http.Request,
) {
	account := ledger.AccountID(r.PathValue("id"))
	atParam := r.URL.Query().Get("at")
	if atParam == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing at parameter",
		)
		return
	}
	at, err := strconv.ParseUint(atParam, 10, 64)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid at parameter",
		)
		return
	}
	votes := a.config.Ledger.GetPriorVotes(
		account,
		ledger.Timestamp(at),
	)
	writeJSON(w, http.StatusOK, VotesResponse{
		Account: string(account),
		At:      at,
		Votes:   votes,
	})
}

// handleListHolders handles GET /ledger/holders and returns a page of
// token holders by descending balance.
func (a *Api) handleListHolders(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			err.Error(),
		)
		return
	}
	SetPaginationHeaders(w, a.config.Ledger.HolderCount(), params)
	holders := a.config.Ledger.Holders(params.Page-1, params.Count)
	resp := make([]HolderResponse, 0, len(holders))
	for _, holder := range holders {
		resp = append(resp, HolderResponse{
			Account: string(holder.Account),
			Balance: holder.Balance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePropose handles POST /governance/proposals.
func (a *Api) handlePropose(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req ProposeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing title",
		)
		return
	}
	if req.Target == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing target account",
		)
		return
	}
	if req.Method == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing method",
		)
		return
	}
	id, err := a.governor.Propose(
		r.Context(),
		caller,
		req.Title,
		req.Description,
		ledger.AccountID(req.Target),
		req.Method,
		req.Args,
		req.Cycles,
	)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProposeResponse{ID: id})
}

// handleCastVote handles POST /governance/proposals/{id}/votes.
func (a *Api) handleCastVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	voteType, err := parseVoteType(req.VoteType)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			err.Error(),
		)
		return
	}
	receipt, err := a.governor.CastVote(
		r.Context(),
		id,
		voteType,
		req.Reason,
		caller,
	)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{
		Voter:    string(receipt.Voter),
		VoteType: receipt.VoteType.String(),
		Votes:    receipt.Votes,
		Reason:   req.Reason,
	})
}

// handleQueue handles POST /governance/proposals/{id}/queue. Queueing
// is permissionless, so no caller identity is required.
func (a *Api) handleQueue(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	eta, err := a.governor.Queue(id)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QueueResponse{
		ID:  id,
		Eta: eta,
	})
}

// handleExecute handles POST /governance/proposals/{id}/execute.
// Execution is permissionless, so no caller identity is required.
func (a *Api) handleExecute(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	if err := a.governor.Execute(r.Context(), id); err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleCancel handles POST /governance/proposals/{id}/cancel.
func (a *Api) handleCancel(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	if err := a.governor.Cancel(r.Context(), id, caller); err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleSetParam builds a handler for setting a single numeric
// parameter on behalf of the caller.
func (a *Api) handleSetParam(
	set func(ledger.AccountID, uint64) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := a.requireCaller(w, r)
		if !ok {
			return
		}
		var req ParamRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if err := set(caller, req.Value); err != nil {
			a.writeOperationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// handleSetAccount builds a handler for setting a single account
// parameter on behalf of the caller.
func (a *Api) handleSetAccount(
	set func(ledger.AccountID, ledger.AccountID) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := a.requireCaller(w, r)
		if !ok {
			return
		}
		var req AccountRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Account == "" {
			writeError(
				w,
				http.StatusBadRequest,
				"Bad Request",
				"missing account",
			)
			return
		}
		if err := set(caller, ledger.AccountID(req.Account)); err != nil {
			a.writeOperationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// handleAcceptAdmin handles POST /governance/admin/accept, completing
// a pending admin handover.
func (a *Api) handleAcceptAdmin(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	if err := a.config.Governance.AcceptAdmin(caller); err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleTransfer handles POST /ledger/transfers. With a from account
// in the body the transfer draws on an allowance granted to the
// caller; otherwise it moves the caller's own balance.
func (a *Api) handleTransfer(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing to account",
		)
		return
	}
	var err error
	if req.From != "" {
		err = a.governor.TransferFrom(
			caller,
			ledger.AccountID(req.From),
			ledger.AccountID(req.To),
			req.Value,
		)
	} else {
		err = a.governor.Transfer(
			caller,
			ledger.AccountID(req.To),
			req.Value,
		)
	}
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleApprove handles POST /ledger/approvals.
func (a *Api) handleApprove(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req ApprovalRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Spender == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing spender account",
		)
		return
	}
	err := a.governor.Approve(
		caller,
		ledger.AccountID(req.Spender),
		req.Value,
	)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleMint handles POST /ledger/mint.
func (a *Api) handleMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req MintRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing to account",
		)
		return
	}
	err := a.governor.Mint(caller, ledger.AccountID(req.To), req.Value)
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleBurn handles POST /ledger/burn.
func (a *Api) handleBurn(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req BurnRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := a.governor.Burn(caller, req.Value); err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleDelegate handles POST /ledger/delegate.
func (a *Api) handleDelegate(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.requireCaller(w, r)
	if !ok {
		return
	}
	var req DelegateRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Delegatee == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"missing delegatee account",
		)
		return
	}
	err := a.governor.Delegate(caller, ledger.AccountID(req.Delegatee))
	if err != nil {
		a.writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
