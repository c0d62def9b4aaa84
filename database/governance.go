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

// GetGovernanceParams returns the governance parameter row, or nil when
// no parameters have been stored yet
func (d *Database) GetGovernanceParams(
	txn *Txn,
) (*models.GovernanceParams, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	params, err := d.metadata.GetGovernanceParams(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get governance params: %w", err)
	}
	return params, nil
}

// SetGovernanceParams creates or updates the governance parameter row
func (d *Database) SetGovernanceParams(
	params *models.GovernanceParams,
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
	if err := d.metadata.SetGovernanceParams(params, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set governance params: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetProposal returns a proposal by its sequential proposal ID, or nil
// when no such proposal exists
func (d *Database) GetProposal(
	proposalID uint64,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	proposal, err := d.metadata.GetProposal(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get proposal %d: %w",
			proposalID,
			err,
		)
	}
	return proposal, nil
}

// GetProposals returns all proposals in proposal ID order
func (d *Database) GetProposals(txn *Txn) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	proposals, err := d.metadata.GetProposals(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return proposals, nil
}

// SetProposal creates or updates a proposal
func (d *Database) SetProposal(
	proposal *models.Proposal,
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
	if err := d.metadata.SetProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"failed to set proposal %d: %w",
			proposal.ProposalID,
			err,
		)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetReceipt returns the vote receipt for a proposal and voter, or nil
// when the voter has not voted
func (d *Database) GetReceipt(
	proposalID uint64,
	voter string,
	txn *Txn,
) (*models.VoteReceipt, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	receipt, err := d.metadata.GetReceipt(proposalID, voter, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// GetReceipts returns all vote receipts for a proposal
func (d *Database) GetReceipts(
	proposalID uint64,
	txn *Txn,
) ([]models.VoteReceipt, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	receipts, err := d.metadata.GetReceipts(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	return receipts, nil
}

// GetAllReceipts returns every stored vote receipt
func (d *Database) GetAllReceipts(txn *Txn) ([]models.VoteReceipt, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	receipts, err := d.metadata.GetAllReceipts(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	return receipts, nil
}

// SetReceipt creates or updates a vote receipt
func (d *Database) SetReceipt(
	receipt *models.VoteReceipt,
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
	if err := d.metadata.SetReceipt(receipt, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set receipt: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
