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
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"github.com/blinklabs-io/bravo/ledger"

	"github.com/prometheus/client_golang/prometheus"
)

// OneDay is one day in nanoseconds
const OneDay = 24 * 3600 * 1_000_000_000

const (
	// GracePeriod is how long past its eta a queued task remains
	// executable
	GracePeriod = 14 * OneDay
	// MinTimelockDelay is the minimum delay between queueing a task and
	// its eta
	MinTimelockDelay = 2 * OneDay
	// MaxTimelockDelay is the maximum delay between queueing a task and
	// its eta
	MaxTimelockDelay = 30 * OneDay
)

type TimelockConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	// DB is the write-through store for the queued task set. With a nil
	// DB the timelock runs memory-only.
	DB    *database.Database
	Delay uint64
}

// Timelock holds the set of tasks waiting out their execution delay.
// Queueing and canceling are idempotent set operations; executing a
// task inside its window consumes its slot, and a failed execution puts
// it back so it can be retried within the grace period.
type Timelock struct {
	config  TimelockConfig
	logger  *slog.Logger
	db      *database.Database
	metrics timelockMetrics
	delay   uint64
	tasks   map[[32]byte]Task
	sync.RWMutex
}

// NewTimelock creates a Timelock from the given config, reloading any
// queued tasks from the database
func NewTimelock(config TimelockConfig) (*Timelock, error) {
	t := &Timelock{
		config: config,
		db:     config.DB,
		delay:  config.Delay,
		tasks:  make(map[[32]byte]Task),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		t.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		t.logger = config.Logger
	}
	t.metrics.init(config.PromRegistry)
	if t.db != nil {
		rows, err := t.db.GetTimelockTasks(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load timelock tasks: %w", err)
		}
		for _, row := range rows {
			task := rowToTask(row)
			t.tasks[task.Hash()] = task
		}
		if len(t.tasks) > 0 {
			t.logger.Info(
				"loaded queued timelock tasks",
				"component", "timelock",
				"tasks", len(t.tasks),
			)
		}
	}
	t.metrics.queuedTasks.Set(float64(len(t.tasks)))
	return t, nil
}

// Delay returns the current delay between queueing a task and its eta
func (t *Timelock) Delay() uint64 {
	t.RLock()
	defer t.RUnlock()
	return t.delay
}

// SetDelay updates the delay. Persistence of the delay belongs to the
// governance parameters, so this only touches memory.
func (t *Timelock) SetDelay(delay uint64) {
	t.Lock()
	defer t.Unlock()
	t.delay = delay
}

// Len returns the number of queued tasks
func (t *Timelock) Len() int {
	t.RLock()
	defer t.RUnlock()
	return len(t.tasks)
}

// Contains reports whether the task is queued
func (t *Timelock) Contains(task Task) bool {
	t.RLock()
	defer t.RUnlock()
	_, ok := t.tasks[task.Hash()]
	return ok
}

// Tasks returns the queued tasks ordered by eta
func (t *Timelock) Tasks() []Task {
	t.RLock()
	defer t.RUnlock()
	tasks := make([]Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		tasks = append(tasks, task)
	}
	slices.SortFunc(tasks, func(a, b Task) int {
		if a.Eta != b.Eta {
			if a.Eta < b.Eta {
				return -1
			}
			return 1
		}
		aHash := a.Hash()
		bHash := b.Hash()
		return bytes.Compare(aHash[:], bHash[:])
	})
	return tasks
}

// QueueTask adds a task to the queued set. Queueing an already-queued
// task is a no-op. When txn is non-nil the caller owns the commit.
func (t *Timelock) QueueTask(task Task, txn *database.Txn) error {
	t.Lock()
	defer t.Unlock()
	hash := task.Hash()
	if _, ok := t.tasks[hash]; ok {
		return nil
	}
	if t.db != nil {
		if err := t.db.SetTimelockTask(taskRow(task, hash), txn); err != nil {
			return fmt.Errorf(
				"failed to persist timelock task: %w: %w",
				ErrStorageError,
				err,
			)
		}
	}
	t.tasks[hash] = task
	t.metrics.queuedTasks.Set(float64(len(t.tasks)))
	t.logger.Debug(
		"queued task",
		"component", "timelock",
		"target", task.Target,
		"method", task.Method,
		"eta", task.Eta,
	)
	return nil
}

// CancelTask removes a task from the queued set. Canceling an absent
// task is a no-op. When txn is non-nil the caller owns the commit.
func (t *Timelock) CancelTask(task Task, txn *database.Txn) error {
	t.Lock()
	defer t.Unlock()
	hash := task.Hash()
	if _, ok := t.tasks[hash]; !ok {
		return nil
	}
	if t.db != nil {
		if err := t.db.DeleteTimelockTask(hash[:], txn); err != nil {
			return fmt.Errorf(
				"failed to remove timelock task: %w: %w",
				ErrStorageError,
				err,
			)
		}
	}
	delete(t.tasks, hash)
	t.metrics.queuedTasks.Set(float64(len(t.tasks)))
	t.logger.Debug(
		"canceled task",
		"component", "timelock",
		"target", task.Target,
		"method", task.Method,
		"eta", task.Eta,
	)
	return nil
}

// PreExecuteTask validates that the task is queued and inside its
// execution window, then consumes its queue slot. The caller performs
// the actual external call afterward and reports the outcome through
// PostExecuteTask. When txn is non-nil the caller owns the commit.
func (t *Timelock) PreExecuteTask(
	task Task,
	now uint64,
	txn *database.Txn,
) error {
	t.Lock()
	defer t.Unlock()
	hash := task.Hash()
	if _, ok := t.tasks[hash]; !ok {
		return fmt.Errorf("task has not been queued: %w", ErrNotQueued)
	}
	if now < task.Eta {
		return &TooEarlyError{Eta: task.Eta, Now: now}
	}
	if now > task.Eta+GracePeriod {
		return &StaleError{Eta: task.Eta, Now: now}
	}
	if t.db != nil {
		if err := t.db.DeleteTimelockTask(hash[:], txn); err != nil {
			return fmt.Errorf(
				"failed to remove timelock task: %w: %w",
				ErrStorageError,
				err,
			)
		}
	}
	delete(t.tasks, hash)
	t.metrics.queuedTasks.Set(float64(len(t.tasks)))
	t.logger.Debug(
		"consumed task for execution",
		"component", "timelock",
		"target", task.Target,
		"method", task.Method,
		"eta", task.Eta,
	)
	return nil
}

// PostExecuteTask records the outcome of an executed task. A failed
// execution re-queues the task so it can be retried within the grace
// period; a successful one is permanently gone. When txn is non-nil the
// caller owns the commit.
func (t *Timelock) PostExecuteTask(
	task Task,
	success bool,
	txn *database.Txn,
) error {
	if success {
		return nil
	}
	return t.QueueTask(task, txn)
}

// RestoreTasks replaces the queued task set, such as when importing a
// snapshot. When txn is non-nil the caller owns the commit.
func (t *Timelock) RestoreTasks(tasks []Task, txn *database.Txn) error {
	t.Lock()
	defer t.Unlock()
	if t.db != nil {
		for hash := range t.tasks {
			if err := t.db.DeleteTimelockTask(hash[:], txn); err != nil {
				return fmt.Errorf(
					"failed to remove timelock task: %w: %w",
					ErrStorageError,
					err,
				)
			}
		}
		for _, task := range tasks {
			hash := task.Hash()
			if err := t.db.SetTimelockTask(taskRow(task, hash), txn); err != nil {
				return fmt.Errorf(
					"failed to persist timelock task: %w: %w",
					ErrStorageError,
					err,
				)
			}
		}
	}
	t.tasks = make(map[[32]byte]Task)
	for _, task := range tasks {
		t.tasks[task.Hash()] = task
	}
	t.metrics.queuedTasks.Set(float64(len(t.tasks)))
	return nil
}

func taskRow(task Task, hash [32]byte) *models.TimelockTask {
	return &models.TimelockTask{
		TaskHash: hash[:],
		Target:   string(task.Target),
		Method:   task.Method,
		Args:     task.Args,
		Cycles:   types.Uint64(task.Cycles),
		Eta:      task.Eta,
	}
}

func rowToTask(row models.TimelockTask) Task {
	return Task{
		Target: ledger.AccountID(row.Target),
		Method: row.Method,
		Args:   row.Args,
		Cycles: uint64(row.Cycles),
		Eta:    row.Eta,
	}
}
