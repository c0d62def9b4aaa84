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

// GetAccount returns the stored account row for an address, or nil when
// the address has no row
func (d *Database) GetAccount(
	address string,
	txn *Txn,
) (*models.Account, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	account, err := d.metadata.GetAccount(address, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccounts returns all stored account rows
func (d *Database) GetAccounts(txn *Txn) ([]models.Account, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	accounts, err := d.metadata.GetAccounts(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// SetAccount creates or updates an account row
func (d *Database) SetAccount(
	account *models.Account,
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
	if err := d.metadata.SetAccount(account, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set account: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// DeleteAccount removes an account row
func (d *Database) DeleteAccount(
	address string,
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
	if err := d.metadata.DeleteAccount(address, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetAllowance returns the stored allowance for an owner and spender, or
// nil when none is stored
func (d *Database) GetAllowance(
	owner string,
	spender string,
	txn *Txn,
) (*models.Allowance, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	allowance, err := d.metadata.GetAllowance(owner, spender, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}
	return allowance, nil
}

// GetAllowances returns all stored allowance rows
func (d *Database) GetAllowances(txn *Txn) ([]models.Allowance, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	allowances, err := d.metadata.GetAllowances(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get allowances: %w", err)
	}
	return allowances, nil
}

// SetAllowance creates or updates an allowance row
func (d *Database) SetAllowance(
	allowance *models.Allowance,
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
	if err := d.metadata.SetAllowance(allowance, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// DeleteAllowance removes an allowance row
func (d *Database) DeleteAllowance(
	owner string,
	spender string,
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
	if err := d.metadata.DeleteAllowance(owner, spender, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete allowance: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetCheckpoints returns the vote checkpoints for an account in
// timestamp order
func (d *Database) GetCheckpoints(
	address string,
	txn *Txn,
) ([]models.Checkpoint, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	checkpoints, err := d.metadata.GetCheckpoints(address, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoints: %w", err)
	}
	return checkpoints, nil
}

// GetAllCheckpoints returns every stored vote checkpoint
func (d *Database) GetAllCheckpoints(txn *Txn) ([]models.Checkpoint, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	checkpoints, err := d.metadata.GetAllCheckpoints(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoints: %w", err)
	}
	return checkpoints, nil
}

// SetCheckpoint creates or updates a vote checkpoint
func (d *Database) SetCheckpoint(
	checkpoint *models.Checkpoint,
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
	if err := d.metadata.SetCheckpoint(checkpoint, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
