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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/bravo/database/plugin"
	"github.com/blinklabs-io/bravo/database/plugin/blob/badger"
	"github.com/blinklabs-io/bravo/database/types"
	"github.com/prometheus/client_golang/prometheus"

	// Register the cloud blob plugins
	_ "github.com/blinklabs-io/bravo/database/plugin/blob/aws"
	_ "github.com/blinklabs-io/bravo/database/plugin/blob/gcs"
)

type BlobStore interface {
	Close() error
	NewTransaction(bool) types.Txn

	// Key-value operations within a transaction
	Get(types.Txn, []byte) ([]byte, error)
	Set(types.Txn, []byte, []byte) error
	Delete(types.Txn, []byte) error
	NewIterator(types.Txn, types.BlobIteratorOptions) types.BlobIterator

	// Commit timestamp tracking for torn-write detection
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
}

// New returns the started blob plugin selected by name. The known badger
// plugin is constructed directly so the runtime logger and metrics registry
// can be attached; other names go through the plugin registry and use
// their registered option values.
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	if pluginName == "badger" {
		return badger.New(
			badger.WithDataDir(dataDir),
			badger.WithLogger(logger),
			badger.WithPromRegistry(promRegistry),
		)
	}

	// Get and start the plugin
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}

	// Type assert to BlobStore interface
	blobStore, ok := p.(BlobStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}

	return blobStore, nil
}
