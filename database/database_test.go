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

package database_test

import (
	"testing"

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stores for tests. The sqlite shared cache lives for the
// duration of the test binary, so each test uses its own keys.
var dbConfig = &database.Config{
	Logger:       nil,
	PromRegistry: nil,
	DataDir:      "",
}

func TestAccountRoundTrip(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	acct := &models.Account{
		Address:  "acct-round-trip",
		Balance:  types.Uint64(1000),
		Delegate: "acct-round-trip-delegate",
	}
	require.NoError(t, db.SetAccount(acct, nil))

	got, err := db.GetAccount("acct-round-trip", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.Uint64(1000), got.Balance)
	assert.Equal(t, "acct-round-trip-delegate", got.Delegate)

	// Upsert on the same address updates in place
	require.NoError(
		t,
		db.SetAccount(
			&models.Account{
				Address:  "acct-round-trip",
				Balance:  types.Uint64(250),
				Delegate: "acct-round-trip-delegate",
			},
			nil,
		),
	)
	got, err = db.GetAccount("acct-round-trip", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.Uint64(250), got.Balance)

	require.NoError(t, db.DeleteAccount("acct-round-trip", nil))
	got, err = db.GetAccount("acct-round-trip", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error
	require.NoError(t, db.DeleteAccount("acct-round-trip", nil))
}

func TestAllowanceRoundTrip(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	allow := &models.Allowance{
		Owner:   "allow-owner",
		Spender: "allow-spender",
		Amount:  types.Uint64(500),
	}
	require.NoError(t, db.SetAllowance(allow, nil))

	got, err := db.GetAllowance("allow-owner", "allow-spender", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.Uint64(500), got.Amount)

	got, err = db.GetAllowance("allow-owner", "allow-nobody", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.DeleteAllowance("allow-owner", "allow-spender", nil))
	got, err = db.GetAllowance("allow-owner", "allow-spender", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckpointOrdering(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	// Insert out of order and expect them back sorted by timestamp
	for _, cp := range []models.Checkpoint{
		{Account: "cp-acct", Timestamp: 300, Votes: types.Uint64(9)},
		{Account: "cp-acct", Timestamp: 100, Votes: types.Uint64(3)},
		{Account: "cp-acct", Timestamp: 200, Votes: types.Uint64(6)},
	} {
		require.NoError(t, db.SetCheckpoint(&cp, nil))
	}
	cps, err := db.GetCheckpoints("cp-acct", nil)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, uint64(100), cps[0].Timestamp)
	assert.Equal(t, uint64(200), cps[1].Timestamp)
	assert.Equal(t, uint64(300), cps[2].Timestamp)

	// Writing the same timestamp again overwrites rather than appending
	require.NoError(
		t,
		db.SetCheckpoint(
			&models.Checkpoint{
				Account:   "cp-acct",
				Timestamp: 200,
				Votes:     types.Uint64(7),
			},
			nil,
		),
	)
	cps, err = db.GetCheckpoints("cp-acct", nil)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, types.Uint64(7), cps[1].Votes)
}

func TestProposalAndReceiptRoundTrip(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	prop := &models.Proposal{
		ProposalID: 9001,
		Proposer:   "prop-proposer",
		Title:      "test proposal",
		StartTime:  1000,
		EndTime:    2000,
		TaskTarget: "registry",
		TaskMethod: "set_param",
		TaskArgs:   []byte{0x01, 0x02},
		TaskCycles: types.Uint64(0),
	}
	require.NoError(t, db.SetProposal(prop, nil))

	got, err := db.GetProposal(9001, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "prop-proposer", got.Proposer)
	assert.Equal(t, uint64(1000), got.StartTime)

	// Tallies and flags update on conflict, creation-time fields do not
	update := &models.Proposal{
		ProposalID:   9001,
		Proposer:     "prop-proposer",
		Title:        "changed title",
		StartTime:    1000,
		EndTime:      2000,
		TaskTarget:   "registry",
		TaskMethod:   "set_param",
		TaskArgs:     []byte{0x01, 0x02},
		SupportVotes: types.Uint64(12345),
		Canceled:     true,
	}
	require.NoError(t, db.SetProposal(update, nil))
	got, err = db.GetProposal(9001, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.Uint64(12345), got.SupportVotes)
	assert.True(t, got.Canceled)
	assert.Equal(t, "test proposal", got.Title)

	receipt := &models.VoteReceipt{
		ProposalID: 9001,
		Voter:      "receipt-voter",
		Support:    1,
		Votes:      types.Uint64(42),
	}
	require.NoError(t, db.SetReceipt(receipt, nil))
	gotReceipt, err := db.GetReceipt(9001, "receipt-voter", nil)
	require.NoError(t, err)
	require.NotNil(t, gotReceipt)
	assert.Equal(t, uint8(1), gotReceipt.Support)
	assert.Equal(t, types.Uint64(42), gotReceipt.Votes)

	gotReceipt, err = db.GetReceipt(9001, "receipt-nobody", nil)
	require.NoError(t, err)
	assert.Nil(t, gotReceipt)
}

func TestTimelockTaskRoundTrip(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	hash := make([]byte, 32)
	hash[0] = 0xab
	task := &models.TimelockTask{
		TaskHash: hash,
		Target:   "registry",
		Method:   "set_param",
		Args:     []byte{0x0f},
		Cycles:   types.Uint64(0),
		Eta:      5000,
	}
	require.NoError(t, db.SetTimelockTask(task, nil))

	tasks, err := db.GetTimelockTasks(nil)
	require.NoError(t, err)
	found := false
	for _, tmp := range tasks {
		if string(tmp.TaskHash) == string(hash) {
			found = true
			assert.Equal(t, uint64(5000), tmp.Eta)
		}
	}
	assert.True(t, found)

	require.NoError(t, db.DeleteTimelockTask(hash, nil))
	tasks, err = db.GetTimelockTasks(nil)
	require.NoError(t, err)
	for _, tmp := range tasks {
		assert.NotEqual(t, string(hash), string(tmp.TaskHash))
	}
}

func TestTransactionRollback(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	txn := db.Transaction(true)
	acct := &models.Account{
		Address: "rollback-acct",
		Balance: types.Uint64(77),
	}
	require.NoError(t, db.SetAccount(acct, txn))
	require.NoError(t, txn.Rollback())

	got, err := db.GetAccount("rollback-acct", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCommitTimestamp(t *testing.T) {
	// Committing a full transaction writes a timestamp into both
	// stores, so this test gets its own on-disk database
	cfg := &database.Config{
		DataDir: t.TempDir(),
	}
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	txn := db.Transaction(true)
	acct := &models.Account{
		Address: "commit-ts-acct",
		Balance: types.Uint64(1),
	}
	require.NoError(t, db.SetAccount(acct, txn))
	require.NoError(t, txn.Commit())

	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Greater(t, metadataTs, int64(0))
	assert.Equal(t, metadataTs, blobTs)
}

func TestBlobMemory(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	mem := database.NewBlobMemory(db)
	assert.Equal(t, uint64(0), mem.Size())

	newSize, err := mem.Grow(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*appendlog.PageSize), newSize)
	assert.Equal(t, uint64(2*appendlog.PageSize), mem.Size())

	// Pages that were never written read back as zeroes
	buf := make([]byte, 16)
	require.NoError(t, mem.Read(appendlog.PageSize-8, buf))
	assert.Equal(t, make([]byte, 16), buf)

	// Write across the page boundary and read it back
	data := []byte("hello governance")
	require.NoError(t, mem.Write(appendlog.PageSize-8, data))
	require.NoError(t, mem.Read(appendlog.PageSize-8, buf))
	assert.Equal(t, data, buf)

	// Patching part of a page preserves the rest
	require.NoError(t, mem.Write(appendlog.PageSize-8, []byte("HELLO")))
	require.NoError(t, mem.Read(appendlog.PageSize-8, buf))
	assert.Equal(t, []byte("HELLOgovernance"), buf[:15])

	// Access past the grown size fails
	err = mem.Read(2*appendlog.PageSize, buf)
	assert.ErrorContains(t, err, "read beyond memory size")
	err = mem.Write(2*appendlog.PageSize-4, data)
	assert.ErrorContains(t, err, "write beyond memory size")
}

func TestBlobMemoryRestore(t *testing.T) {
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	defer db.Close()

	log := appendlog.NewLog(database.NewBlobMemory(db))
	pos, err := log.Append([]byte("restored bytes"))
	require.NoError(t, err)
	size := log.Size()

	// A fresh memory over the same stores picks up where we left off
	mem := database.NewBlobMemory(db)
	mem.Restore(size)
	restored := appendlog.NewLog(mem)
	require.NoError(t, restored.Restore(size))
	got, err := restored.Read(pos)
	require.NoError(t, err)
	assert.Equal(t, []byte("restored bytes"), got)

	// And appends continue past the restored contents
	pos2, err := restored.Append([]byte("more bytes"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pos2.Offset, pos.Offset+pos.Length)
}
