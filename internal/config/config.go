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

package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/bravo/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "bravo.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin    string   `yaml:"metadataPlugin"    envconfig:"BRAVO_DATABASE_METADATA_PLUGIN"`
	BlobPlugin        string   `yaml:"blobPlugin"        envconfig:"BRAVO_DATABASE_BLOB_PLUGIN"`
	DatabasePath      string   `yaml:"databasePath"                                                 split_words:"true"`
	BindAddr          string   `yaml:"bindAddr"                                                     split_words:"true"`
	Name              string   `yaml:"name"`
	Admin             string   `yaml:"admin"`
	SelfAccount       string   `yaml:"selfAccount"                                                  split_words:"true"`
	TokenName         string   `yaml:"tokenName"                                                    split_words:"true"`
	TokenSymbol       string   `yaml:"tokenSymbol"                                                  split_words:"true"`
	TokenFeeTo        string   `yaml:"tokenFeeTo"        envconfig:"BRAVO_TOKEN_FEE_TO"`
	VoteSourceUrl     string   `yaml:"voteSourceUrl"     envconfig:"BRAVO_VOTE_SOURCE_URL"`
	KafkaTopic        string   `yaml:"kafkaTopic"                                                   split_words:"true"`
	ShutdownTimeout   string   `yaml:"shutdownTimeout"                                              split_words:"true"`
	KafkaBrokers      []string `yaml:"kafkaBrokers"                                                 split_words:"true"`
	QuorumVotes       uint64   `yaml:"quorumVotes"                                                  split_words:"true"`
	ProposalThreshold uint64   `yaml:"proposalThreshold"                                            split_words:"true"`
	VotingDelay       uint64   `yaml:"votingDelay"                                                  split_words:"true"`
	VotingPeriod      uint64   `yaml:"votingPeriod"                                                 split_words:"true"`
	TimelockDelay     uint64   `yaml:"timelockDelay"                                                split_words:"true"`
	TokenFee          uint64   `yaml:"tokenFee"                                                     split_words:"true"`
	InitialSupply     uint64   `yaml:"initialSupply"                                                split_words:"true"`
	ApiPort           uint     `yaml:"apiPort"                                                      split_words:"true"`
	MetricsPort       uint     `yaml:"metricsPort"                                                  split_words:"true"`
	TokenDecimals     uint8    `yaml:"tokenDecimals"                                                split_words:"true"`
	Tracing           bool     `yaml:"tracing"`
	TracingStdout     bool     `yaml:"tracingStdout"                                                split_words:"true"`
}

var globalConfig = &Config{
	Name:            "Governor Bravo",
	SelfAccount:     "governance",
	BindAddr:        "0.0.0.0",
	ApiPort:         8080,
	MetricsPort:     12798,
	DatabasePath:    ".bravo",
	BlobPlugin:      DefaultBlobPlugin,
	MetadataPlugin:  DefaultMetadataPlugin,
	TokenName:       "Bravo",
	TokenSymbol:     "BRAVO",
	TokenDecimals:   8,
	ShutdownTimeout: DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.bravo/bravo.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".bravo", "bravo.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/bravo/bravo.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/bravo/bravo.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			err = yaml.Unmarshal(configBytes, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config (backward compatibility)
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		// Process plugin configurations
		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		// Handle database section if present
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				mergePluginSection(
					pluginConfig,
					"blob",
					tempCfg.Database.Blob,
					&globalConfig.BlobPlugin,
				)
			}
			if tempCfg.Database.Metadata != nil {
				mergePluginSection(
					pluginConfig,
					"metadata",
					tempCfg.Database.Metadata,
					&globalConfig.MetadataPlugin,
				)
			}
		}
		if len(pluginConfig) > 0 {
			err = plugin.ProcessConfig(pluginConfig)
			if err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process("bravo", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	return globalConfig, nil
}

// mergePluginSection folds one database.<kind> config section into the
// plugin config map. A "plugin" key selects the plugin itself and is
// removed from the map before it is handed to the plugin.
func mergePluginSection(
	pluginConfig map[string]map[string]map[string]any,
	kind string,
	section map[string]any,
	pluginName *string,
) {
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			*pluginName = name
			delete(section, "plugin")
		}
	}
	kindConfig := make(map[string]map[string]any)
	for k, v := range section {
		if val, ok := v.(map[string]any); ok {
			kindConfig[k] = val
		} else if val, ok := v.(map[any]any); ok {
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			kindConfig[k] = stringAnyMap
		} else {
			// Log skipped non-map config entries
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				kind,
				k,
				v,
			)
		}
	}
	// Merge with existing config instead of overwriting
	if pluginConfig[kind] == nil {
		pluginConfig[kind] = kindConfig
	} else {
		maps.Copy(pluginConfig[kind], kindConfig)
	}
}

func GetConfig() *Config {
	return globalConfig
}
