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

package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/event"
	"github.com/blinklabs-io/bravo/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner     = ledger.AccountID("owner")
	testCollector = ledger.AccountID("collector")
	testSupply    = uint64(1_000_000)
	testFee       = uint64(2)
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.NewLedger(ledger.LedgerConfig{
		Name:          "Bravo Governance Token",
		Symbol:        "BRAVO",
		Decimals:      8,
		Owner:         testOwner,
		FeeTo:         testCollector,
		Fee:           testFee,
		InitialSupply: testSupply,
	})
	require.NoError(t, err)
	return l
}

// assertConservation checks that the sum of all balances equals the
// total supply
func assertConservation(t *testing.T, l *ledger.Ledger) {
	t.Helper()
	var total uint64
	for _, holder := range l.Holders(0, l.HolderCount()) {
		total += holder.Balance
	}
	require.Equal(t, l.TotalSupply(), total)
}

func TestLedgerSeed(t *testing.T) {
	l := newTestLedger(t)
	meta := l.Metadata()
	assert.Equal(t, "Bravo Governance Token", meta.Name)
	assert.Equal(t, "BRAVO", meta.Symbol)
	assert.Equal(t, uint8(8), meta.Decimals)
	assert.Equal(t, testOwner, meta.Owner)
	assert.Equal(t, testCollector, meta.FeeTo)
	assert.Equal(t, testFee, meta.Fee)
	assert.Equal(t, testSupply, meta.TotalSupply)
	assert.Equal(t, testSupply, l.BalanceOf(testOwner))
	assert.Equal(t, 1, l.HolderCount())
	// The initial supply is visible to prior-votes queries from the start
	assert.Equal(t, testSupply, l.GetCurrentVotes(testOwner))
	assert.Equal(t, testSupply, l.GetPriorVotes(testOwner, 1))
	assertConservation(t, l)
}

func TestTransfer(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "alice", 1000, 100))
	assert.Equal(t, testSupply-1000-testFee, l.BalanceOf(testOwner))
	assert.Equal(t, uint64(1000), l.BalanceOf("alice"))
	assert.Equal(t, testFee, l.BalanceOf(testCollector))
	assertConservation(t, l)

	// Balance must cover value plus fee
	err := l.Transfer("alice", "bob", 999, 200)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	var balErr *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, ledger.AccountID("alice"), balErr.Account)
	assert.Equal(t, uint64(1000), balErr.Balance)
	assert.Equal(t, uint64(1001), balErr.Required)

	// Exactly value plus fee drains the account and removes its entry
	require.NoError(t, l.Transfer("alice", "bob", 998, 300))
	assert.Equal(t, uint64(0), l.BalanceOf("alice"))
	assert.Equal(t, uint64(998), l.BalanceOf("bob"))
	holders := l.Holders(0, l.HolderCount())
	for _, holder := range holders {
		assert.NotEqual(t, ledger.AccountID("alice"), holder.Account)
	}
	assertConservation(t, l)
}

func TestApproveAndTransferFrom(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "alice", 1000, 100))

	// The stored allowance covers the value plus the transfer fee
	require.NoError(t, l.Approve("alice", "bob", 100, 200))
	assert.Equal(t, uint64(100+testFee), l.Allowance("alice", "bob"))
	assert.Equal(t, uint64(998), l.BalanceOf("alice"))
	assertConservation(t, l)

	require.NoError(t, l.TransferFrom("bob", "alice", "carol", 100, 300))
	assert.Equal(t, uint64(100), l.BalanceOf("carol"))
	assert.Equal(t, uint64(998-100-testFee), l.BalanceOf("alice"))
	// The allowance was consumed exactly and the entry removed
	assert.Equal(t, uint64(0), l.Allowance("alice", "bob"))
	assertConservation(t, l)

	err := l.TransferFrom("bob", "alice", "carol", 1, 400)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)
	var allowErr *ledger.InsufficientAllowanceError
	require.ErrorAs(t, err, &allowErr)
	assert.Equal(t, ledger.AccountID("alice"), allowErr.Owner)
	assert.Equal(t, ledger.AccountID("bob"), allowErr.Spender)
	assert.Equal(t, uint64(0), allowErr.Allowance)
	assert.Equal(t, uint64(1+testFee), allowErr.Required)

	// Approving zero removes the entry but still charges the fee
	require.NoError(t, l.Approve("alice", "bob", 50, 500))
	require.NoError(t, l.Approve("alice", "bob", 0, 600))
	assert.Equal(t, uint64(0), l.Allowance("alice", "bob"))
	assert.Equal(t, uint64(998-100-testFee-testFee-testFee), l.BalanceOf("alice"))
	assertConservation(t, l)
}

func TestMintAndBurn(t *testing.T) {
	l := newTestLedger(t)

	err := l.Mint("alice", "alice", 100, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, l.Mint(testOwner, "alice", 5000, 200))
	assert.Equal(t, testSupply+5000, l.TotalSupply())
	assert.Equal(t, uint64(5000), l.BalanceOf("alice"))
	assert.Equal(t, uint64(5000), l.GetCurrentVotes("alice"))
	assertConservation(t, l)

	err = l.Burn("alice", 5001, 300)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	require.NoError(t, l.Burn("alice", 5000, 400))
	assert.Equal(t, testSupply, l.TotalSupply())
	assert.Equal(t, uint64(0), l.BalanceOf("alice"))
	assert.Equal(t, uint64(0), l.GetCurrentVotes("alice"))
	assertConservation(t, l)
}

func TestDelegate(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Delegate(testOwner, "alice", 100))
	assert.Equal(t, ledger.AccountID("alice"), l.DelegateOf(testOwner))
	assert.Equal(t, uint64(0), l.GetCurrentVotes(testOwner))
	assert.Equal(t, testSupply, l.GetCurrentVotes("alice"))

	// Balance changes move voting power on the delegatee
	require.NoError(t, l.Transfer(testOwner, "bob", 500, 200))
	assert.Equal(t, testSupply-500-testFee, l.GetCurrentVotes("alice"))
	assert.Equal(t, uint64(500), l.GetCurrentVotes("bob"))
	assert.Equal(t, testFee, l.GetCurrentVotes(testCollector))

	require.NoError(t, l.Delegate("bob", "carol", 300))
	assert.Equal(t, uint64(0), l.GetCurrentVotes("bob"))
	assert.Equal(t, uint64(500), l.GetCurrentVotes("carol"))

	// Zero balance cannot delegate, even with delegated votes on hand
	err := l.Delegate("carol", "dave", 400)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Delegating to self restores the default
	require.NoError(t, l.Delegate(testOwner, testOwner, 500))
	assert.Equal(t, testOwner, l.DelegateOf(testOwner))
	assert.Equal(t, testSupply-500-testFee, l.GetCurrentVotes(testOwner))
	assert.Equal(t, uint64(0), l.GetCurrentVotes("alice"))
}

func TestGetPriorVotes(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "alice", 100, 100))
	require.NoError(t, l.Transfer(testOwner, "alice", 200, 200))
	require.NoError(t, l.Transfer(testOwner, "alice", 300, 300))

	// No history at all
	assert.Equal(t, uint64(0), l.GetPriorVotes("nobody", 500))
	// History starts after the requested time
	assert.Equal(t, uint64(0), l.GetPriorVotes("alice", 99))
	// Exact checkpoint timestamps
	assert.Equal(t, uint64(100), l.GetPriorVotes("alice", 100))
	assert.Equal(t, uint64(300), l.GetPriorVotes("alice", 200))
	// Between checkpoints the older value holds
	assert.Equal(t, uint64(100), l.GetPriorVotes("alice", 150))
	assert.Equal(t, uint64(300), l.GetPriorVotes("alice", 299))
	// At or past the newest checkpoint
	assert.Equal(t, uint64(600), l.GetPriorVotes("alice", 300))
	assert.Equal(t, uint64(600), l.GetPriorVotes("alice", 9999))
}

func TestCheckpointSameTimestamp(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "dave", 100, 500))
	require.NoError(t, l.Transfer(testOwner, "dave", 200, 500))
	assert.Equal(t, uint64(300), l.GetCurrentVotes("dave"))

	// Repeated writes within one timestamp collapse to a single
	// checkpoint holding the final value
	snap := l.Snapshot()
	daveCheckpoints := 0
	for _, cp := range snap.Checkpoints {
		if cp.Account == "dave" {
			daveCheckpoints++
			assert.Equal(t, uint64(500), cp.Timestamp)
			assert.Equal(t, uint64(300), cp.Votes)
		}
	}
	assert.Equal(t, 1, daveCheckpoints)
}

func TestHolders(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "alice", 5000, 100))
	require.NoError(t, l.Transfer(testOwner, "bob", 3000, 200))
	require.NoError(t, l.Transfer(testOwner, "carol", 3000, 300))

	// owner, alice, bob, carol, collector
	assert.Equal(t, 5, l.HolderCount())
	holders := l.Holders(0, 10)
	require.Len(t, holders, 5)
	assert.Equal(t, testOwner, holders[0].Account)
	assert.Equal(t, ledger.AccountID("alice"), holders[1].Account)
	// Equal balances fall back to address order
	assert.Equal(t, ledger.AccountID("bob"), holders[2].Account)
	assert.Equal(t, ledger.AccountID("carol"), holders[3].Account)
	assert.Equal(t, testCollector, holders[4].Account)

	page := l.Holders(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, ledger.AccountID("bob"), page[0].Account)
	assert.Equal(t, ledger.AccountID("carol"), page[1].Account)

	assert.Empty(t, l.Holders(5, 2))
	assert.Empty(t, l.Holders(0, 0))
}

func TestTokenAdmin(t *testing.T) {
	l := newTestLedger(t)

	err := l.SetFee("alice", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, l.SetFee(testOwner, 10))
	require.NoError(t, l.SetFeeTo(testOwner, "treasury"))
	assert.Equal(t, uint64(10), l.Metadata().Fee)
	assert.Equal(t, ledger.AccountID("treasury"), l.Metadata().FeeTo)

	// The new fee and recipient apply to subsequent transfers
	require.NoError(t, l.Transfer(testOwner, "alice", 100, 100))
	assert.Equal(t, uint64(10), l.BalanceOf("treasury"))
	assertConservation(t, l)

	require.NoError(t, l.SetOwner(testOwner, "alice"))
	err = l.SetFee(testOwner, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	require.NoError(t, l.SetFee("alice", 1))
	assert.Equal(t, uint64(1), l.Metadata().Fee)
}

func TestLedgerEvents(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	l, err := ledger.NewLedger(ledger.LedgerConfig{
		EventBus:      bus,
		Name:          "Bravo Governance Token",
		Symbol:        "BRAVO",
		Owner:         testOwner,
		FeeTo:         testCollector,
		Fee:           testFee,
		InitialSupply: testSupply,
	})
	require.NoError(t, err)

	_, transferCh := bus.Subscribe(ledger.TransferEventType)
	_, delegateCh := bus.Subscribe(ledger.DelegateEventType)

	require.NoError(t, l.Transfer(testOwner, "alice", 1000, 100))
	select {
	case evt := <-transferCh:
		payload, ok := evt.Data.(ledger.TransferEvent)
		require.True(t, ok)
		assert.Equal(t, testOwner, payload.From)
		assert.Equal(t, ledger.AccountID("alice"), payload.To)
		assert.Equal(t, uint64(1000), payload.Value)
		assert.Equal(t, testFee, payload.Fee)
		assert.Equal(t, ledger.Timestamp(100), payload.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for transfer event")
	}

	require.NoError(t, l.Delegate("alice", "bob", 200))
	select {
	case evt := <-delegateCh:
		payload, ok := evt.Data.(ledger.DelegateEvent)
		require.True(t, ok)
		assert.Equal(t, ledger.AccountID("alice"), payload.Account)
		assert.Equal(t, ledger.AccountID("alice"), payload.From)
		assert.Equal(t, ledger.AccountID("bob"), payload.To)
		assert.Equal(t, uint64(1000), payload.Balance)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for delegate event")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Transfer(testOwner, "alice", 1000, 100))
	require.NoError(t, l.Approve("alice", "bob", 50, 200))
	require.NoError(t, l.Delegate("alice", "carol", 300))

	snap := l.Snapshot()
	restored, err := ledger.NewLedger(ledger.LedgerConfig{})
	require.NoError(t, err)
	require.NoError(t, restored.LoadSnapshot(snap, nil))

	assert.Equal(t, l.Metadata(), restored.Metadata())
	assert.Equal(t, l.BalanceOf("alice"), restored.BalanceOf("alice"))
	assert.Equal(t, l.BalanceOf(testOwner), restored.BalanceOf(testOwner))
	assert.Equal(t, l.Allowance("alice", "bob"), restored.Allowance("alice", "bob"))
	assert.Equal(t, ledger.AccountID("carol"), restored.DelegateOf("alice"))
	assert.Equal(t, l.GetCurrentVotes("carol"), restored.GetCurrentVotes("carol"))
	assert.Equal(
		t,
		l.GetPriorVotes(testOwner, 150),
		restored.GetPriorVotes(testOwner, 150),
	)
	assertConservation(t, restored)
}

func TestLedgerPersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)

	cfg := ledger.LedgerConfig{
		DB:            db,
		Name:          "Bravo Governance Token",
		Symbol:        "BRAVO",
		Decimals:      8,
		Owner:         testOwner,
		FeeTo:         testCollector,
		Fee:           testFee,
		InitialSupply: testSupply,
	}
	l, err := ledger.NewLedger(cfg)
	require.NoError(t, err)
	require.NoError(t, l.Transfer(testOwner, "alice", 1000, 100))
	require.NoError(t, l.Delegate("alice", testOwner, 200))
	require.NoError(t, l.Approve("alice", "bob", 50, 300))
	require.NoError(t, db.Close())

	// Reload from the same data dir; the config's token parameters are
	// ignored in favor of the stored state
	db2, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db2.Close()
	cfg2 := cfg
	cfg2.DB = db2
	cfg2.Name = "Other Token"
	restored, err := ledger.NewLedger(cfg2)
	require.NoError(t, err)

	assert.Equal(t, "Bravo Governance Token", restored.Metadata().Name)
	assert.Equal(t, testSupply, restored.TotalSupply())
	assert.Equal(t, uint64(998), restored.BalanceOf("alice"))
	assert.Equal(t, uint64(52), restored.Allowance("alice", "bob"))
	assert.Equal(t, testOwner, restored.DelegateOf("alice"))
	assert.Equal(
		t,
		testSupply-1000-testFee+1000-testFee,
		restored.GetCurrentVotes(testOwner),
	)
	assert.Equal(
		t,
		testSupply-1000-testFee,
		restored.GetPriorVotes(testOwner, 150),
	)
	assertConservation(t, restored)

	// Matching errors still behave after a reload
	err = restored.Transfer("alice", "bob", 5000, 400)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientBalance))
}
