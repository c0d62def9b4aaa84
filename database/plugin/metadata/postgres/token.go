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

const (
	tokenParamsRowId = 1
)

// GetTokenParams retrieves the token parameter row. Returns nil if no
// parameters have been stored yet
func (d *MetadataStorePostgres) GetTokenParams(
	txn types.Txn,
) (*models.TokenParams, error) {
	var params models.TokenParams
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&params); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &params, nil
}

// SetTokenParams creates or updates the token parameter row
func (d *MetadataStorePostgres) SetTokenParams(
	params *models.TokenParams,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	params.ID = tokenParamsRowId
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"symbol",
			"decimals",
			"owner",
			"fee_to",
			"fee",
			"total_supply",
		}),
	}
	if result := db.Clauses(onConflict).Create(params); result.Error != nil {
		return result.Error
	}
	return nil
}
