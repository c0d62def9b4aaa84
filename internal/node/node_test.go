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

package node

import (
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/bravo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{
		Name:     "Test Governor",
		Admin:    "admin",
		BindAddr: "127.0.0.1",
		ApiPort:  8080,
	}
	opts, err := BuildOptions(cfg, logger)
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	// A remote vote source and a kafka sink each add an option
	base := len(opts)
	cfg.VoteSourceUrl = "http://localhost:8081"
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaTopic = "bravo-events"
	opts, err = BuildOptions(cfg, logger)
	require.NoError(t, err)
	assert.Len(t, opts, base+2)
}

func TestBuildOptionsInvalidShutdownTimeout(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{ShutdownTimeout: "bogus"}
	_, err := BuildOptions(cfg, logger)
	require.ErrorContains(t, err, "invalid shutdown timeout")
}
