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

package main

import (
	"log/slog"
	"os"

	"github.com/blinklabs-io/bravo"
	"github.com/blinklabs-io/bravo/database/sops"
	"github.com/blinklabs-io/bravo/internal/config"
	"github.com/blinklabs-io/bravo/internal/node"
	"github.com/spf13/cobra"
)

func buildNode(cfg *config.Config, logger *slog.Logger) (*bravo.Bravo, error) {
	opts, err := node.BuildOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	return bravo.New(bravo.NewConfig(opts...))
}

func snapshotExportRun(cfg *config.Config, output string, encrypt bool) {
	logger := commonRun()
	b, err := buildNode(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer b.Stop()
	data, err := b.ExportSnapshot()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if encrypt {
		data, err = sops.Encrypt(data)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	if err := os.WriteFile(output, data, 0o600); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"wrote snapshot",
		"component", programName,
		"path", output,
		"bytes", len(data),
	)
}

func snapshotImportRun(cfg *config.Config, input string, decrypt bool) {
	logger := commonRun()
	data, err := os.ReadFile(input) // #nosec G304
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if decrypt {
		data, err = sops.Decrypt(data)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	b, err := buildNode(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer b.Stop()
	if err := b.ImportSnapshot(data); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"imported snapshot",
		"component", programName,
		"path", input,
	)
}

func snapshotExportCommand() *cobra.Command {
	var output string
	var encrypt bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export node state to a snapshot file",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			snapshotExportRun(cfg, output, encrypt)
		},
	}
	cmd.Flags().
		StringVarP(&output, "output", "o", "bravo-snapshot.cbor", "path to write the snapshot to")
	cmd.Flags().
		BoolVar(&encrypt, "encrypt", false, "encrypt the snapshot with SOPS (keys from BRAVO_GCP_KMS_RESOURCE_ID / BRAVO_AWS_KMS_KEY_ARNS)")
	return cmd
}

func snapshotImportCommand() *cobra.Command {
	var decrypt bool
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import node state from a snapshot file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			snapshotImportRun(cfg, args[0], decrypt)
		},
	}
	cmd.Flags().
		BoolVar(&decrypt, "decrypt", false, "decrypt a SOPS-encrypted snapshot before importing")
	return cmd
}

func snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import a full state snapshot",
	}
	cmd.AddCommand(snapshotExportCommand())
	cmd.AddCommand(snapshotImportCommand())
	return cmd
}
