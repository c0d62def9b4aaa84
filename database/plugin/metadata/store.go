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

package metadata

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/plugin"
	"github.com/blinklabs-io/bravo/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/bravo/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	// Register the server-backed metadata plugins
	_ "github.com/blinklabs-io/bravo/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/bravo/database/plugin/metadata/postgres"
)

type MetadataStore interface {
	// Database
	AutoMigrate(...any) error
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Accounts and delegation
	GetAccount(string, types.Txn) (*models.Account, error)
	GetAccounts(types.Txn) ([]models.Account, error)
	SetAccount(*models.Account, types.Txn) error
	DeleteAccount(string, types.Txn) error

	// Allowances
	GetAllowance(
		string, // owner
		string, // spender
		types.Txn,
	) (*models.Allowance, error)
	GetAllowances(types.Txn) ([]models.Allowance, error)
	SetAllowance(*models.Allowance, types.Txn) error
	DeleteAllowance(
		string, // owner
		string, // spender
		types.Txn,
	) error

	// Vote checkpoints
	GetCheckpoints(string, types.Txn) ([]models.Checkpoint, error)
	GetAllCheckpoints(types.Txn) ([]models.Checkpoint, error)
	SetCheckpoint(*models.Checkpoint, types.Txn) error

	// Token parameters
	GetTokenParams(types.Txn) (*models.TokenParams, error)
	SetTokenParams(*models.TokenParams, types.Txn) error

	// Proposals and receipts
	GetProposal(uint64, types.Txn) (*models.Proposal, error)
	GetProposals(types.Txn) ([]models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error
	GetReceipt(
		uint64, // proposal ID
		string, // voter
		types.Txn,
	) (*models.VoteReceipt, error)
	GetReceipts(uint64, types.Txn) ([]models.VoteReceipt, error)
	GetAllReceipts(types.Txn) ([]models.VoteReceipt, error)
	SetReceipt(*models.VoteReceipt, types.Txn) error

	// Governance parameters
	GetGovernanceParams(types.Txn) (*models.GovernanceParams, error)
	SetGovernanceParams(*models.GovernanceParams, types.Txn) error

	// Timelock tasks
	GetTimelockTasks(types.Txn) ([]models.TimelockTask, error)
	SetTimelockTask(*models.TimelockTask, types.Txn) error
	DeleteTimelockTask([]byte, types.Txn) error
}

// New returns the started metadata plugin selected by name. The known sqlite
// plugin is constructed directly so the runtime logger and metrics registry
// can be attached; other names go through the plugin registry and use
// their registered option values.
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	if pluginName == "sqlite" {
		return sqlite.New(dataDir, logger, promRegistry)
	}

	// Get and start the plugin
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}

	// Type assert to MetadataStore interface
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}

	return metadataStore, nil
}
