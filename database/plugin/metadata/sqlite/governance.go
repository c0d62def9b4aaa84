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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	governanceParamsRowId = 1
)

// GetGovernanceParams retrieves the governance parameter row. Returns
// nil if no parameters have been stored yet
func (d *MetadataStoreSqlite) GetGovernanceParams(
	txn types.Txn,
) (*models.GovernanceParams, error) {
	var params models.GovernanceParams
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

// SetGovernanceParams creates or updates the governance parameter row
func (d *MetadataStoreSqlite) SetGovernanceParams(
	params *models.GovernanceParams,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	params.ID = governanceParamsRowId
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"admin",
			"pending_admin",
			"quorum_votes",
			"proposal_threshold",
			"voting_delay",
			"voting_period",
			"timelock_delay",
			"log_head",
		}),
	}
	if result := db.Clauses(onConflict).Create(params); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposal retrieves a proposal by its sequential proposal ID.
// Returns nil if no such proposal exists
func (d *MetadataStoreSqlite) GetProposal(
	proposalID uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ?",
		proposalID,
	).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals retrieves all proposals in proposal ID order
func (d *MetadataStoreSqlite) GetProposals(
	txn types.Txn,
) ([]models.Proposal, error) {
	var proposals []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order(
		"proposal_id",
	).Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetProposal creates or updates a proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
		},
		// Proposer, title, vote window, and description position are
		// fixed at creation and not updated on conflict
		DoUpdates: clause.AssignmentColumns([]string{
			"support_votes",
			"against_votes",
			"abstain_votes",
			"canceled",
			"executing",
			"executed",
			"task_target",
			"task_method",
			"task_args",
			"task_cycles",
			"eta",
		}),
	}
	if result := db.Clauses(onConflict).Create(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetReceipt retrieves the vote receipt for a proposal and voter.
// Returns nil if the voter has not voted on the proposal
func (d *MetadataStoreSqlite) GetReceipt(
	proposalID uint64,
	voter string,
	txn types.Txn,
) (*models.VoteReceipt, error) {
	var receipt models.VoteReceipt
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalID,
		voter,
	).First(&receipt); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &receipt, nil
}

// GetReceipts retrieves all vote receipts for a proposal in voter order
func (d *MetadataStoreSqlite) GetReceipts(
	proposalID uint64,
	txn types.Txn,
) ([]models.VoteReceipt, error) {
	var receipts []models.VoteReceipt
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ?",
		proposalID,
	).Order("voter").Find(&receipts); result.Error != nil {
		return nil, result.Error
	}
	return receipts, nil
}

// GetAllReceipts retrieves every vote receipt, ordered by proposal and
// voter
func (d *MetadataStoreSqlite) GetAllReceipts(
	txn types.Txn,
) ([]models.VoteReceipt, error) {
	var receipts []models.VoteReceipt
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order(
		"proposal_id, voter",
	).Find(&receipts); result.Error != nil {
		return nil, result.Error
	}
	return receipts, nil
}

// SetReceipt creates or updates a vote receipt
func (d *MetadataStoreSqlite) SetReceipt(
	receipt *models.VoteReceipt,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"support",
			"votes",
			"reason_offset",
			"reason_length",
			"has_reason",
		}),
	}
	if result := db.Clauses(onConflict).Create(receipt); result.Error != nil {
		return result.Error
	}
	return nil
}
