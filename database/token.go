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

// GetTokenParams returns the token parameter row, or nil when no
// parameters have been stored yet
func (d *Database) GetTokenParams(txn *Txn) (*models.TokenParams, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	params, err := d.metadata.GetTokenParams(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get token params: %w", err)
	}
	return params, nil
}

// SetTokenParams creates or updates the token parameter row
func (d *Database) SetTokenParams(
	params *models.TokenParams,
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
	if err := d.metadata.SetTokenParams(params, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set token params: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
