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

package bravo

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/bravo/appendlog"
	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
	"github.com/fxamacker/cbor/v2"
)

// snapshotVersion is the current snapshot envelope version
const snapshotVersion = 1

// SnapshotEnvelope is the serialized form of a node's full state: the
// token ledger, the governance engine with its queued timelock tasks,
// and the raw append log content the governance positions point into.
type SnapshotEnvelope struct {
	Version    uint64
	TakenAt    uint64
	Ledger     *ledger.Snapshot
	Governance *governance.Snapshot
	LogData    []byte
}

// ExportSnapshot captures the node's full state as one CBOR document.
// Each subsystem is captured at a point in time; export on an idle node
// for a snapshot that is consistent across subsystems.
func (b *Bravo) ExportSnapshot() ([]byte, error) {
	govSnap := b.governance.Snapshot()
	ledgerSnap := b.ledger.Snapshot()
	var logData []byte
	if govSnap.LogHead > 0 {
		data, err := b.log.Read(appendlog.Position{
			Offset: 0,
			Length: govSnap.LogHead,
		})
		if err != nil {
			return nil, fmt.Errorf(
				"failed to read append log content: %w",
				err,
			)
		}
		logData = data
	}
	env := SnapshotEnvelope{
		Version:    snapshotVersion,
		TakenAt:    b.now(),
		Ledger:     ledgerSnap,
		Governance: govSnap,
		LogData:    logData,
	}
	data, err := cbor.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	b.config.logger.Info(
		"exported snapshot",
		"component", "bravo",
		"proposals", len(govSnap.Proposals),
		"accounts", len(ledgerSnap.Accounts),
		"bytes", len(data),
	)
	return data, nil
}

// ImportSnapshot replaces the node's state with the snapshot's. The
// node must be freshly created: a node with governance history refuses
// the import. The append log content is written first, then both
// subsystems load under a single transaction spanning both stores, so a
// failure part way leaves only unreferenced log pages behind.
func (b *Bravo) ImportSnapshot(data []byte) error {
	var env SnapshotEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if env.Version != snapshotVersion {
		return fmt.Errorf(
			"unsupported snapshot version %d, want %d",
			env.Version,
			snapshotVersion,
		)
	}
	if env.Ledger == nil || env.Governance == nil {
		return errors.New("snapshot is missing state sections")
	}
	if b.governance.ProposalCount() > 0 || b.log.Size() > 0 ||
		b.ledger.HolderCount() > 1 {
		return errors.New(
			"refusing to import a snapshot over existing state",
		)
	}
	if uint64(len(env.LogData)) != env.Governance.LogHead {
		return fmt.Errorf(
			"snapshot log content is %d bytes but the head is %d",
			len(env.LogData),
			env.Governance.LogHead,
		)
	}
	if len(env.LogData) > 0 {
		if _, err := b.log.Append(env.LogData); err != nil {
			return fmt.Errorf(
				"failed to restore append log content: %w",
				err,
			)
		}
	}
	txn := b.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := b.ledger.LoadSnapshot(env.Ledger, txn); err != nil {
			return fmt.Errorf("failed to load ledger snapshot: %w", err)
		}
		if err := b.governance.LoadSnapshot(env.Governance, txn); err != nil {
			return fmt.Errorf(
				"failed to load governance snapshot: %w",
				err,
			)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.config.logger.Info(
		"imported snapshot",
		"component", "bravo",
		"proposals", len(env.Governance.Proposals),
		"accounts", len(env.Ledger.Accounts),
		"taken_at", env.TakenAt,
	)
	return nil
}
