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

package mysql

import (
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"gorm.io/gorm/clause"
)

// GetTimelockTasks retrieves all queued timelock tasks
func (d *MetadataStoreMysql) GetTimelockTasks(
	txn types.Txn,
) ([]models.TimelockTask, error) {
	var tasks []models.TimelockTask
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("eta").Find(&tasks); result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// SetTimelockTask creates or updates a queued timelock task
func (d *MetadataStoreMysql) SetTimelockTask(
	task *models.TimelockTask,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "task_hash"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"target",
			"method",
			"args",
			"cycles",
			"eta",
		}),
	}
	if result := db.Clauses(onConflict).Create(task); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteTimelockTask removes a queued timelock task by its task hash.
// Deleting a missing task is not an error
func (d *MetadataStoreMysql) DeleteTimelockTask(
	taskHash []byte,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where(
		"task_hash = ?",
		taskHash,
	).Delete(&models.TimelockTask{}); result.Error != nil {
		return result.Error
	}
	return nil
}
