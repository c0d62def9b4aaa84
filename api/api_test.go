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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin    = "admin"
	testProposer = "proposer"
)

// mockGovernor implements Governor for testing.
type mockGovernor struct {
	proposeID         uint64
	proposeErr        error
	receipt           *governance.Receipt
	castVoteErr       error
	queueEta          uint64
	queueErr          error
	executeErr        error
	cancelErr         error
	state             governance.ProposalState
	stateErr          error
	tokenErr          error
	lastCaller        ledger.AccountID
	transferFromUsed  bool
	delegateeReceived ledger.AccountID
}

func (m *mockGovernor) Propose(
	_ context.Context,
	proposer ledger.AccountID,
	_ string,
	_ string,
	_ ledger.AccountID,
	_ string,
	_ []byte,
	_ uint64,
) (uint64, error) {
	m.lastCaller = proposer
	return m.proposeID, m.proposeErr
}

func (m *mockGovernor) CastVote(
	_ context.Context,
	_ uint64,
	_ governance.VoteType,
	_ string,
	voter ledger.AccountID,
) (*governance.Receipt, error) {
	m.lastCaller = voter
	return m.receipt, m.castVoteErr
}

func (m *mockGovernor) Queue(uint64) (uint64, error) {
	return m.queueEta, m.queueErr
}

func (m *mockGovernor) Execute(context.Context, uint64) error {
	return m.executeErr
}

func (m *mockGovernor) Cancel(
	_ context.Context,
	_ uint64,
	caller ledger.AccountID,
) error {
	m.lastCaller = caller
	return m.cancelErr
}

func (m *mockGovernor) State(uint64) (governance.ProposalState, error) {
	return m.state, m.stateErr
}

func (m *mockGovernor) Transfer(
	caller ledger.AccountID,
	_ ledger.AccountID,
	_ uint64,
) error {
	m.lastCaller = caller
	return m.tokenErr
}

func (m *mockGovernor) TransferFrom(
	caller ledger.AccountID,
	_ ledger.AccountID,
	_ ledger.AccountID,
	_ uint64,
) error {
	m.lastCaller = caller
	m.transferFromUsed = true
	return m.tokenErr
}

func (m *mockGovernor) Approve(
	caller ledger.AccountID,
	_ ledger.AccountID,
	_ uint64,
) error {
	m.lastCaller = caller
	return m.tokenErr
}

func (m *mockGovernor) Mint(
	caller ledger.AccountID,
	_ ledger.AccountID,
	_ uint64,
) error {
	m.lastCaller = caller
	return m.tokenErr
}

func (m *mockGovernor) Burn(caller ledger.AccountID, _ uint64) error {
	m.lastCaller = caller
	return m.tokenErr
}

func (m *mockGovernor) Delegate(
	caller ledger.AccountID,
	delegatee ledger.AccountID,
) error {
	m.lastCaller = caller
	m.delegateeReceived = delegatee
	return m.tokenErr
}

func newTestApi(t *testing.T, governor Governor) *Api {
	t.Helper()
	engine, err := governance.NewGovernanceEngine(governance.GovernanceConfig{
		Name:              "Governor Bravo",
		Admin:             testAdmin,
		QuorumVotes:       400,
		ProposalThreshold: 100,
		VotingDelay:       10,
		VotingPeriod:      100,
		TimelockDelay:     1_000,
	})
	require.NoError(t, err)
	l, err := ledger.NewLedger(ledger.LedgerConfig{
		Name:          "Bravo",
		Symbol:        "BRAVO",
		Decimals:      8,
		Owner:         "owner",
		InitialSupply: 1_000_000,
	})
	require.NoError(t, err)
	return New(
		ApiConfig{
			ListenAddress: ":0",
			Governance:    engine,
			Ledger:        l,
		},
		governor,
		slog.Default(),
	)
}

// seedProposal creates a proposal directly on the engine at time 1000,
// so voting runs from 1010 to 1110.
func seedProposal(t *testing.T, a *Api) uint64 {
	t.Helper()
	id, err := a.config.Governance.Propose(
		testProposer,
		200,
		"Raise the transfer fee",
		"Raise the transfer fee to 3 base units",
		"token",
		"set_fee",
		[]byte{0x03},
		0,
		1_000,
	)
	require.NoError(t, err)
	return id
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestStartStop(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	err := a.Start(t.Context())
	require.NoError(t, err)

	// Verify server is running
	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()

	// Stop the server
	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = a.Stop(stopCtx)
	require.NoError(t, err)

	// Verify server is stopped
	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	ctx := t.Context()
	err := a.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = a.Stop(stopCtx)
	}()

	// Starting again should error
	err = a.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestStopIdempotent(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	// Stop without starting should not error
	ctx, cancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer cancel()
	err := a.Stop(ctx)
	require.NoError(t, err)
}

func TestNilLogger(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	assert.NotNil(t, a.logger)

	b := New(ApiConfig{ListenAddress: ":0"}, &mockGovernor{}, nil)
	assert.NotNil(t, b.logger)
}

func TestDefaultListenAddress(t *testing.T) {
	a := New(ApiConfig{}, &mockGovernor{}, slog.Default())
	assert.Equal(t, ":8080", a.config.ListenAddress)
}

func TestHandleHealth(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"application/json",
		w.Header().Get("Content-Type"),
	)

	var resp HealthResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.True(t, resp.Healthy)
}

func TestHandleListProposals(t *testing.T) {
	a := newTestApi(t, &mockGovernor{state: governance.StatePending})
	seedProposal(t, a)

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals",
		nil,
	)
	w := httptest.NewRecorder()
	a.handleListProposals(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"1",
		w.Header().Get("X-Pagination-Count-Total"),
	)

	var resp []ProposalResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, uint64(0), resp[0].ID)
	assert.Equal(t, testProposer, resp[0].Proposer)
	assert.Equal(t, "Raise the transfer fee", resp[0].Title)
	assert.Equal(t, "pending", resp[0].State)
	assert.Equal(t, "token", resp[0].Task.Target)
	assert.Equal(t, "set_fee", resp[0].Task.Method)
	assert.Equal(t, uint64(1_010), resp[0].StartTime)
	assert.Equal(t, uint64(1_110), resp[0].EndTime)
	// Descriptions are only served on the single-proposal endpoint
	assert.Empty(t, resp[0].Description)
}

func TestHandleGetProposal(t *testing.T) {
	a := newTestApi(t, &mockGovernor{state: governance.StatePending})
	seedProposal(t, a)

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals/0",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleGetProposal(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ProposalResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), resp.ID)
	assert.Equal(
		t,
		"Raise the transfer fee to 3 base units",
		resp.Description,
	)
	assert.Equal(t, []byte{0x03}, resp.Task.Args)
}

func TestHandleGetProposalNotFound(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals/99",
		nil,
	)
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()
	a.handleGetProposal(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Not Found", resp.Error)
}

func TestHandleGetProposalState(t *testing.T) {
	a := newTestApi(t, &mockGovernor{state: governance.StateActive})

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals/0/state",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleGetProposalState(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StateResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.State)
}

func TestHandleGetProposalStateInvalidID(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals/bogus/state",
		nil,
	)
	req.SetPathValue("id", "bogus")
	w := httptest.NewRecorder()
	a.handleGetProposalState(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetProposalReceipts(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	id := seedProposal(t, a)
	_, err := a.config.Governance.CastVote(
		id,
		governance.VoteTypeSupport,
		500,
		"strongly in favor",
		"whale",
		1_020,
	)
	require.NoError(t, err)
	_, err = a.config.Governance.CastVote(
		id,
		governance.VoteTypeAgainst,
		50,
		"",
		"minnow",
		1_021,
	)
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/proposals/0/receipts",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleGetProposalReceipts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []ReceiptResponse
	err = json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	// Receipts are sorted by voter
	assert.Equal(t, "minnow", resp[0].Voter)
	assert.Equal(t, "against", resp[0].VoteType)
	assert.Equal(t, uint64(50), resp[0].Votes)
	assert.Empty(t, resp[0].Reason)
	assert.Equal(t, "whale", resp[1].Voter)
	assert.Equal(t, "support", resp[1].VoteType)
	assert.Equal(t, uint64(500), resp[1].Votes)
	assert.Equal(t, "strongly in favor", resp[1].Reason)
}

func TestHandleGovernanceConfig(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/governance/config",
		nil,
	)
	w := httptest.NewRecorder()
	a.handleGovernanceConfig(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp GovernanceConfigResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "Governor Bravo", resp.Name)
	assert.Equal(t, testAdmin, resp.Admin)
	assert.Equal(t, uint64(400), resp.QuorumVotes)
	assert.Equal(t, uint64(100), resp.ProposalThreshold)
	assert.Equal(t, uint64(10), resp.VotingDelay)
	assert.Equal(t, uint64(100), resp.VotingPeriod)
	assert.Equal(t, uint64(1_000), resp.TimelockDelay)
	assert.Equal(t, uint64(0), resp.ProposalCount)
}

func TestHandleTokenMetadata(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(http.MethodGet, "/ledger/metadata", nil)
	w := httptest.NewRecorder()
	a.handleTokenMetadata(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp TokenMetadataResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", resp.Name)
	assert.Equal(t, "BRAVO", resp.Symbol)
	assert.Equal(t, uint8(8), resp.Decimals)
	assert.Equal(t, "owner", resp.Owner)
	assert.Equal(t, uint64(1_000_000), resp.TotalSupply)
}

func TestHandleGetAccount(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/ledger/accounts/owner",
		nil,
	)
	req.SetPathValue("id", "owner")
	w := httptest.NewRecorder()
	a.handleGetAccount(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AccountResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "owner", resp.Account)
	assert.Equal(t, uint64(1_000_000), resp.Balance)
	assert.Equal(t, "owner", resp.Delegate)
	assert.Equal(t, uint64(1_000_000), resp.CurrentVotes)
}

func TestHandleGetAccountVotes(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/ledger/accounts/owner/votes?at=100",
		nil,
	)
	req.SetPathValue("id", "owner")
	w := httptest.NewRecorder()
	a.handleGetAccountVotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp VotesResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "owner", resp.Account)
	assert.Equal(t, uint64(100), resp.At)
	assert.Equal(t, uint64(1_000_000), resp.Votes)
}

func TestHandleGetAccountVotesMissingAt(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodGet,
		"/ledger/accounts/owner/votes",
		nil,
	)
	req.SetPathValue("id", "owner")
	w := httptest.NewRecorder()
	a.handleGetAccountVotes(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListHolders(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	require.NoError(t, a.config.Ledger.Transfer("owner", "alice", 300, 50))

	req := httptest.NewRequest(http.MethodGet, "/ledger/holders", nil)
	w := httptest.NewRecorder()
	a.handleListHolders(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"2",
		w.Header().Get("X-Pagination-Count-Total"),
	)

	var resp []HolderResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	// Holders are sorted by descending balance
	assert.Equal(t, "owner", resp[0].Account)
	assert.Equal(t, "alice", resp[1].Account)
	assert.Equal(t, uint64(300), resp[1].Balance)
}

func TestHandlePropose(t *testing.T) {
	mock := &mockGovernor{proposeID: 7}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals",
		jsonBody(t, ProposeRequest{
			Title:       "Raise the transfer fee",
			Description: "Raise the transfer fee to 3 base units",
			Target:      "token",
			Method:      "set_fee",
			Args:        []byte{0x03},
		}),
	)
	req.Header.Set(CallerHeader, testProposer)
	w := httptest.NewRecorder()
	a.handlePropose(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ProposeResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), resp.ID)
	assert.Equal(t, ledger.AccountID(testProposer), mock.lastCaller)
}

func TestHandleProposeMissingCaller(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals",
		jsonBody(t, ProposeRequest{
			Title:  "Raise the transfer fee",
			Target: "token",
			Method: "set_fee",
		}),
	)
	w := httptest.NewRecorder()
	a.handlePropose(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, CallerHeader)
}

func TestHandleProposeBelowThreshold(t *testing.T) {
	mock := &mockGovernor{
		proposeErr: &governance.BelowThresholdError{
			Votes:     50,
			Threshold: 100,
		},
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals",
		jsonBody(t, ProposeRequest{
			Title:  "Raise the transfer fee",
			Target: "token",
			Method: "set_fee",
		}),
	)
	req.Header.Set(CallerHeader, testProposer)
	w := httptest.NewRecorder()
	a.handlePropose(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCastVote(t *testing.T) {
	mock := &mockGovernor{
		receipt: &governance.Receipt{
			Voter:    "whale",
			VoteType: governance.VoteTypeSupport,
			Votes:    500,
		},
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/votes",
		jsonBody(t, VoteRequest{
			VoteType: "support",
			Reason:   "strongly in favor",
		}),
	)
	req.SetPathValue("id", "0")
	req.Header.Set(CallerHeader, "whale")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReceiptResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "whale", resp.Voter)
	assert.Equal(t, "support", resp.VoteType)
	assert.Equal(t, uint64(500), resp.Votes)
	assert.Equal(t, "strongly in favor", resp.Reason)
}

func TestHandleCastVoteUnknownType(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/votes",
		jsonBody(t, VoteRequest{VoteType: "sideways"}),
	)
	req.SetPathValue("id", "0")
	req.Header.Set(CallerHeader, "whale")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCastVoteClosed(t *testing.T) {
	mock := &mockGovernor{
		castVoteErr: fmt.Errorf(
			"proposal 0 is not active: %w",
			governance.ErrVotingClosed,
		),
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/votes",
		jsonBody(t, VoteRequest{VoteType: "support"}),
	)
	req.SetPathValue("id", "0")
	req.Header.Set(CallerHeader, "whale")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleQueue(t *testing.T) {
	mock := &mockGovernor{queueEta: 5_000}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/3/queue",
		nil,
	)
	req.SetPathValue("id", "3")
	w := httptest.NewRecorder()
	a.handleQueue(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp QueueResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), resp.ID)
	assert.Equal(t, uint64(5_000), resp.Eta)
}

func TestHandleExecute(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/execute",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleExecute(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleExecuteDispatchFailed(t *testing.T) {
	mock := &mockGovernor{
		executeErr: fmt.Errorf(
			"failed to dispatch task for proposal 0: %w: %w",
			governance.ErrExternalCallFailed,
			assert.AnError,
		),
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/execute",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleExecute(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleExecuteTooEarly(t *testing.T) {
	mock := &mockGovernor{
		executeErr: &governance.TooEarlyError{Eta: 5_000, Now: 4_000},
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/execute",
		nil,
	)
	req.SetPathValue("id", "0")
	w := httptest.NewRecorder()
	a.handleExecute(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleCancel(t *testing.T) {
	mock := &mockGovernor{}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/cancel",
		nil,
	)
	req.SetPathValue("id", "0")
	req.Header.Set(CallerHeader, testProposer)
	w := httptest.NewRecorder()
	a.handleCancel(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledger.AccountID(testProposer), mock.lastCaller)
}

func TestHandleCancelUnauthorized(t *testing.T) {
	mock := &mockGovernor{
		cancelErr: fmt.Errorf(
			"proposer is still above the proposal threshold: %w",
			governance.ErrUnauthorized,
		),
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/proposals/0/cancel",
		nil,
	)
	req.SetPathValue("id", "0")
	req.Header.Set(CallerHeader, "rando")
	w := httptest.NewRecorder()
	a.handleCancel(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleSetParam(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	handler := a.handleSetParam(a.config.Governance.SetQuorumVotes)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/admin/quorum-votes",
		jsonBody(t, ParamRequest{Value: 900}),
	)
	req.Header.Set(CallerHeader, testAdmin)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		uint64(900),
		a.config.Governance.Params().QuorumVotes,
	)
}

func TestHandleSetParamUnauthorized(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	handler := a.handleSetParam(a.config.Governance.SetQuorumVotes)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/admin/quorum-votes",
		jsonBody(t, ParamRequest{Value: 900}),
	)
	req.Header.Set(CallerHeader, "rando")
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(
		t,
		uint64(400),
		a.config.Governance.Params().QuorumVotes,
	)
}

func TestHandleAdminHandover(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})
	handler := a.handleSetAccount(a.config.Governance.SetPendingAdmin)

	req := httptest.NewRequest(
		http.MethodPost,
		"/governance/admin/pending-admin",
		jsonBody(t, AccountRequest{Account: "successor"}),
	)
	req.Header.Set(CallerHeader, testAdmin)
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(
		http.MethodPost,
		"/governance/admin/accept",
		nil,
	)
	req.Header.Set(CallerHeader, "successor")
	w = httptest.NewRecorder()
	a.handleAcceptAdmin(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	params := a.config.Governance.Params()
	assert.Equal(t, ledger.AccountID("successor"), params.Admin)
	assert.Equal(t, ledger.AccountID(""), params.PendingAdmin)
}

func TestHandleTransfer(t *testing.T) {
	mock := &mockGovernor{}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/transfers",
		jsonBody(t, TransferRequest{To: "alice", Value: 100}),
	)
	req.Header.Set(CallerHeader, "owner")
	w := httptest.NewRecorder()
	a.handleTransfer(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledger.AccountID("owner"), mock.lastCaller)
	assert.False(t, mock.transferFromUsed)
}

func TestHandleTransferFrom(t *testing.T) {
	mock := &mockGovernor{}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/transfers",
		jsonBody(t, TransferRequest{
			From:  "owner",
			To:    "alice",
			Value: 100,
		}),
	)
	req.Header.Set(CallerHeader, "spender")
	w := httptest.NewRecorder()
	a.handleTransfer(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.transferFromUsed)
}

func TestHandleTransferMissingTo(t *testing.T) {
	a := newTestApi(t, &mockGovernor{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/transfers",
		jsonBody(t, TransferRequest{Value: 100}),
	)
	req.Header.Set(CallerHeader, "owner")
	w := httptest.NewRecorder()
	a.handleTransfer(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTransferInsufficientBalance(t *testing.T) {
	mock := &mockGovernor{
		tokenErr: &ledger.InsufficientBalanceError{
			Account:  "owner",
			Balance:  50,
			Required: 102,
		},
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/transfers",
		jsonBody(t, TransferRequest{To: "alice", Value: 100}),
	)
	req.Header.Set(CallerHeader, "owner")
	w := httptest.NewRecorder()
	a.handleTransfer(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMintUnauthorized(t *testing.T) {
	mock := &mockGovernor{
		tokenErr: fmt.Errorf(
			"mint requires the token owner: %w",
			ledger.ErrUnauthorized,
		),
	}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/mint",
		jsonBody(t, MintRequest{To: "alice", Value: 100}),
	)
	req.Header.Set(CallerHeader, "rando")
	w := httptest.NewRecorder()
	a.handleMint(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleBurn(t *testing.T) {
	mock := &mockGovernor{}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/burn",
		jsonBody(t, BurnRequest{Value: 100}),
	)
	req.Header.Set(CallerHeader, "owner")
	w := httptest.NewRecorder()
	a.handleBurn(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledger.AccountID("owner"), mock.lastCaller)
}

func TestHandleDelegate(t *testing.T) {
	mock := &mockGovernor{}
	a := newTestApi(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/ledger/delegate",
		jsonBody(t, DelegateRequest{Delegatee: "steward"}),
	)
	req.Header.Set(CallerHeader, "alice")
	w := httptest.NewRecorder()
	a.handleDelegate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledger.AccountID("alice"), mock.lastCaller)
	assert.Equal(t, ledger.AccountID("steward"), mock.delegateeReceived)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid proposal id",
			err:  governance.ErrInvalidProposalId,
			want: http.StatusNotFound,
		},
		{
			name: "external call failed",
			err: fmt.Errorf(
				"dispatch: %w",
				governance.ErrExternalCallFailed,
			),
			want: http.StatusBadGateway,
		},
		{
			name: "governance unauthorized",
			err:  governance.ErrUnauthorized,
			want: http.StatusForbidden,
		},
		{
			name: "ledger unauthorized",
			err:  ledger.ErrUnauthorized,
			want: http.StatusForbidden,
		},
		{
			name: "voting closed",
			err:  governance.ErrVotingClosed,
			want: http.StatusConflict,
		},
		{
			name: "not queued",
			err:  governance.ErrNotQueued,
			want: http.StatusConflict,
		},
		{
			name: "stale task",
			err:  &governance.StaleError{Eta: 1, Now: 2},
			want: http.StatusConflict,
		},
		{
			name: "already voted",
			err:  governance.ErrAlreadyVoted,
			want: http.StatusConflict,
		},
		{
			name: "live proposal",
			err:  governance.ErrAlreadyHasLiveProposal,
			want: http.StatusConflict,
		},
		{
			name: "below threshold",
			err:  &governance.BelowThresholdError{},
			want: http.StatusBadRequest,
		},
		{
			name: "insufficient balance",
			err:  ledger.ErrInsufficientBalance,
			want: http.StatusBadRequest,
		},
		{
			name: "insufficient allowance",
			err:  ledger.ErrInsufficientAllowance,
			want: http.StatusBadRequest,
		},
		{
			name: "vote query failed",
			err:  governance.ErrVoteQueryFailed,
			want: http.StatusInternalServerError,
		},
		{
			name: "storage error",
			err:  governance.ErrStorageError,
			want: http.StatusInternalServerError,
		},
		{
			name: "unknown error",
			err:  assert.AnError,
			want: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, _ := statusForError(test.err)
			assert.Equal(t, test.want, status)
		})
	}
}

func TestVoteClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(
		"GET /ledger/accounts/{id}",
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, AccountResponse{
				Account:      r.PathValue("id"),
				CurrentVotes: 42,
			})
		},
	)
	mux.HandleFunc(
		"GET /ledger/accounts/{id}/votes",
		func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, VotesResponse{
				Account: r.PathValue("id"),
				At:      100,
				Votes:   17,
			})
		},
	)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewVoteClient(srv.URL)

	votes, err := client.GetCurrentVotes(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), votes)

	votes, err = client.GetPriorVotes(t.Context(), "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), votes)
}

func TestVoteClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			writeError(
				w,
				http.StatusInternalServerError,
				"Internal Server Error",
				"boom",
			)
		},
	))
	defer srv.Close()

	client := NewVoteClient(srv.URL)

	_, err := client.GetCurrentVotes(t.Context(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
