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

package governance_test

import (
	"testing"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/governance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimelock(t *testing.T, db *database.Database) *governance.Timelock {
	t.Helper()
	timelock, err := governance.NewTimelock(governance.TimelockConfig{
		DB:    db,
		Delay: 2 * governance.OneDay,
	})
	require.NoError(t, err)
	return timelock
}

func TestTaskHash(t *testing.T) {
	base := governance.Task{
		Target: "target",
		Method: "set_fee",
		Args:   []byte{0x01, 0x02},
		Cycles: 5,
		Eta:    100,
	}
	same := base
	same.Args = []byte{0x01, 0x02}
	assert.Equal(t, base.Hash(), same.Hash())

	// Every field is part of the task identity
	for name, mutate := range map[string]func(task *governance.Task){
		"target": func(task *governance.Task) { task.Target = "other" },
		"method": func(task *governance.Task) { task.Method = "set_owner" },
		"args":   func(task *governance.Task) { task.Args = []byte{0x01, 0x03} },
		"cycles": func(task *governance.Task) { task.Cycles = 6 },
		"eta":    func(task *governance.Task) { task.Eta = 101 },
	} {
		changed := base
		mutate(&changed)
		assert.NotEqual(
			t,
			base.Hash(),
			changed.Hash(),
			"changing %s did not change the hash",
			name,
		)
	}

	// Fields are length-prefixed, so content cannot shift between them
	a := governance.Task{Target: "ab", Method: "c"}
	b := governance.Task{Target: "a", Method: "bc"}
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestTimelockQueueIdempotence(t *testing.T) {
	timelock := newTestTimelock(t, nil)
	assert.Equal(t, uint64(2*governance.OneDay), timelock.Delay())

	taskA := governance.Task{
		Target: "target",
		Method: "set_fee",
		Args:   []byte{0x01},
		Eta:    300,
	}
	taskB := governance.Task{Target: "target", Method: "set_owner", Eta: 100}

	require.NoError(t, timelock.QueueTask(taskA, nil))
	require.NoError(t, timelock.QueueTask(taskA, nil))
	require.NoError(t, timelock.QueueTask(taskB, nil))
	assert.Equal(t, 2, timelock.Len())
	assert.True(t, timelock.Contains(taskA))

	// Tasks come back ordered by eta
	tasks := timelock.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, taskB, tasks[0])
	assert.Equal(t, taskA, tasks[1])

	// Canceling an absent task is a no-op
	absent := taskA
	absent.Eta = 999
	require.NoError(t, timelock.CancelTask(absent, nil))
	assert.Equal(t, 2, timelock.Len())

	require.NoError(t, timelock.CancelTask(taskA, nil))
	assert.False(t, timelock.Contains(taskA))
	assert.Equal(t, 1, timelock.Len())
}

func TestTimelockExecutionWindow(t *testing.T) {
	timelock := newTestTimelock(t, nil)
	task := governance.Task{
		Target: "target",
		Method: "upgrade",
		Eta:    uint64(5 * governance.OneDay),
	}

	err := timelock.PreExecuteTask(task, task.Eta, nil)
	assert.ErrorIs(t, err, governance.ErrNotQueued)

	require.NoError(t, timelock.QueueTask(task, nil))

	err = timelock.PreExecuteTask(task, task.Eta-1, nil)
	assert.ErrorIs(t, err, governance.ErrTooEarly)
	var tooEarly *governance.TooEarlyError
	require.ErrorAs(t, err, &tooEarly)
	assert.Equal(t, task.Eta, tooEarly.Eta)
	assert.Equal(t, task.Eta-1, tooEarly.Now)
	// A rejected attempt leaves the task queued
	assert.True(t, timelock.Contains(task))

	err = timelock.PreExecuteTask(
		task,
		task.Eta+governance.GracePeriod+1,
		nil,
	)
	assert.ErrorIs(t, err, governance.ErrStale)
	var stale *governance.StaleError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, task.Eta, stale.Eta)
	assert.True(t, timelock.Contains(task))

	// Both edges of the execution window are inclusive
	require.NoError(t, timelock.PreExecuteTask(task, task.Eta, nil))
	assert.False(t, timelock.Contains(task))
	require.NoError(t, timelock.QueueTask(task, nil))
	require.NoError(
		t,
		timelock.PreExecuteTask(task, task.Eta+governance.GracePeriod, nil),
	)
	assert.Equal(t, 0, timelock.Len())

	// The slot was consumed, so another attempt finds nothing
	err = timelock.PreExecuteTask(task, task.Eta, nil)
	assert.ErrorIs(t, err, governance.ErrNotQueued)
}

func TestTimelockPostExecute(t *testing.T) {
	timelock := newTestTimelock(t, nil)
	task := governance.Task{Target: "target", Method: "upgrade", Eta: 100}

	require.NoError(t, timelock.QueueTask(task, nil))
	require.NoError(t, timelock.PreExecuteTask(task, task.Eta, nil))

	// A failed execution puts the task back for a retry
	require.NoError(t, timelock.PostExecuteTask(task, false, nil))
	assert.True(t, timelock.Contains(task))

	require.NoError(t, timelock.PreExecuteTask(task, task.Eta+1, nil))
	require.NoError(t, timelock.PostExecuteTask(task, true, nil))
	assert.False(t, timelock.Contains(task))
	assert.Equal(t, 0, timelock.Len())
}

func TestTimelockRestoreTasks(t *testing.T) {
	timelock := newTestTimelock(t, nil)
	old := governance.Task{Target: "target", Method: "old", Eta: 100}
	require.NoError(t, timelock.QueueTask(old, nil))

	replacement := governance.Task{Target: "target", Method: "new", Eta: 200}
	require.NoError(
		t,
		timelock.RestoreTasks([]governance.Task{replacement}, nil),
	)
	assert.False(t, timelock.Contains(old))
	assert.True(t, timelock.Contains(replacement))
	assert.Equal(t, 1, timelock.Len())
}

func TestTimelockPersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)

	timelock := newTestTimelock(t, db)
	taskA := governance.Task{
		Target: "target",
		Method: "set_fee",
		Args:   []byte{0x2a},
		Cycles: 3,
		Eta:    uint64(3 * governance.OneDay),
	}
	taskB := governance.Task{
		Target: "target",
		Method: "upgrade",
		Eta:    uint64(4 * governance.OneDay),
	}
	require.NoError(t, timelock.QueueTask(taskA, nil))
	require.NoError(t, timelock.QueueTask(taskB, nil))
	require.NoError(t, timelock.CancelTask(taskB, nil))
	require.NoError(t, db.Close())

	db2, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	restored := newTestTimelock(t, db2)
	assert.Equal(t, 1, restored.Len())
	assert.True(t, restored.Contains(taskA))
	assert.False(t, restored.Contains(taskB))

	// Consuming the task removes the stored row as well
	require.NoError(t, restored.PreExecuteTask(taskA, taskA.Eta, nil))
	require.NoError(t, db2.Close())

	db3, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db3.Close()
	emptied := newTestTimelock(t, db3)
	assert.Equal(t, 0, emptied.Len())
}
