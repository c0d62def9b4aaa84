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

package database

import (
	"fmt"

	"github.com/blinklabs-io/bravo/database/models"
)

// GetTimelockTasks returns all queued timelock tasks
func (d *Database) GetTimelockTasks(txn *Txn) ([]models.TimelockTask, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	tasks, err := d.metadata.GetTimelockTasks(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get timelock tasks: %w", err)
	}
	return tasks, nil
}

// SetTimelockTask creates or updates a queued timelock task
func (d *Database) SetTimelockTask(
	task *models.TimelockTask,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.MetadataTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetTimelockTask(task, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set timelock task: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// DeleteTimelockTask removes a queued timelock task by its task hash
func (d *Database) DeleteTimelockTask(
	taskHash []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.MetadataTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.DeleteTimelockTask(taskHash, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete timelock task: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
