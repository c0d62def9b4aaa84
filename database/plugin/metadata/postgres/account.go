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

package postgres

import (
	"errors"

	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetAccount retrieves an account by address. Returns nil if the account
// has no stored row
func (d *MetadataStorePostgres) GetAccount(
	address string,
	txn types.Txn,
) (*models.Account, error) {
	var account models.Account
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"address = ?",
		address,
	).First(&account); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &account, nil
}

// GetAccounts retrieves all account rows
func (d *MetadataStorePostgres) GetAccounts(
	txn types.Txn,
) ([]models.Account, error) {
	var accounts []models.Account
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("address").Find(&accounts); result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// SetAccount creates or updates an account row
func (d *MetadataStorePostgres) SetAccount(
	account *models.Account,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "address"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"balance",
			"delegate",
		}),
	}
	if result := db.Clauses(onConflict).Create(account); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteAccount removes an account row. Deleting a missing account is
// not an error
func (d *MetadataStorePostgres) DeleteAccount(
	address string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where(
		"address = ?",
		address,
	).Delete(&models.Account{}); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetAllowance retrieves the allowance granted by owner to spender.
// Returns nil if no allowance is stored
func (d *MetadataStorePostgres) GetAllowance(
	owner string,
	spender string,
	txn types.Txn,
) (*models.Allowance, error) {
	var allowance models.Allowance
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"owner = ? AND spender = ?",
		owner,
		spender,
	).First(&allowance); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &allowance, nil
}

// GetAllowances retrieves all allowance rows
func (d *MetadataStorePostgres) GetAllowances(
	txn types.Txn,
) ([]models.Allowance, error) {
	var allowances []models.Allowance
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Find(&allowances); result.Error != nil {
		return nil, result.Error
	}
	return allowances, nil
}

// SetAllowance creates or updates an allowance row
func (d *MetadataStorePostgres) SetAllowance(
	allowance *models.Allowance,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner"},
			{Name: "spender"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount",
		}),
	}
	if result := db.Clauses(onConflict).Create(allowance); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteAllowance removes an allowance row. Deleting a missing allowance
// is not an error
func (d *MetadataStorePostgres) DeleteAllowance(
	owner string,
	spender string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where(
		"owner = ? AND spender = ?",
		owner,
		spender,
	).Delete(&models.Allowance{}); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetCheckpoints retrieves the vote checkpoints for an account in
// timestamp order
func (d *MetadataStorePostgres) GetCheckpoints(
	address string,
	txn types.Txn,
) ([]models.Checkpoint, error) {
	var checkpoints []models.Checkpoint
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"account = ?",
		address,
	).Order("timestamp").Find(&checkpoints); result.Error != nil {
		return nil, result.Error
	}
	return checkpoints, nil
}

// GetAllCheckpoints retrieves every vote checkpoint, ordered by account
// and timestamp
func (d *MetadataStorePostgres) GetAllCheckpoints(
	txn types.Txn,
) ([]models.Checkpoint, error) {
	var checkpoints []models.Checkpoint
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order(
		"account, timestamp",
	).Find(&checkpoints); result.Error != nil {
		return nil, result.Error
	}
	return checkpoints, nil
}

// SetCheckpoint creates or updates the vote checkpoint for an account
// and timestamp
func (d *MetadataStorePostgres) SetCheckpoint(
	checkpoint *models.Checkpoint,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account"},
			{Name: "timestamp"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"votes",
		}),
	}
	if result := db.Clauses(onConflict).Create(checkpoint); result.Error != nil {
		return result.Error
	}
	return nil
}
