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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota
	PluginTypeMetadata
)

// PluginTypeName returns the human-readable name for a plugin type
func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// pluginTypeByName returns the plugin type for a human-readable name
func pluginTypeByName(name string) (PluginType, error) {
	switch name {
	case "blob":
		return PluginTypeBlob, nil
	case "metadata":
		return PluginTypeMetadata, nil
	default:
		return 0, fmt.Errorf("unknown plugin type: %s", name)
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

// PluginOption describes a single configurable option for a plugin. Dest
// points at the package-level option value that Register ties the option to.
type PluginOption struct {
	Dest         any
	DefaultValue any
	Name         string
	Description  string
	Type         PluginOptionType
}

// PluginEntry describes a registered plugin
type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

// Registered plugins. Plugins self-register from their init() functions,
// which run before main(), so no synchronization is needed.
var pluginEntries []PluginEntry

// Register adds a plugin to the registry
func Register(entry PluginEntry) {
	pluginEntries = append(pluginEntries, entry)
}

// GetPlugin creates a plugin instance by type and name using its registered
// options. It returns nil if no matching plugin is registered.
func GetPlugin(pluginType PluginType, name string) Plugin {
	for _, entry := range pluginEntries {
		if entry.Type == pluginType && entry.Name == name {
			return entry.NewFromOptionsFunc()
		}
	}
	return nil
}

// GetPlugins returns all registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, entry := range pluginEntries {
		if entry.Type == pluginType {
			ret = append(ret, entry)
		}
	}
	return ret
}

// cmdlineOptionFlagName builds the flag name for a plugin option, e.g.
// blob-badger-data-dir
func cmdlineOptionFlagName(entry PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(entry.Type),
		entry.Name,
		opt.Name,
	)
}

// PopulateCmdlineOptions adds a command-line flag for each registered
// plugin option, bound directly to the option's destination
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			flagName := cmdlineOptionFlagName(entry, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf(
						"invalid destination type for option %s",
						flagName,
					)
				}
				defaultValue, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, defaultValue, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf(
						"invalid destination type for option %s",
						flagName,
					)
				}
				defaultValue, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, defaultValue, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf(
						"invalid destination type for option %s",
						flagName,
					)
				}
				defaultValue, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, flagName, defaultValue, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf(
						"invalid destination type for option %s",
						flagName,
					)
				}
				defaultValue, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, defaultValue, opt.Description)
			default:
				return fmt.Errorf(
					"unknown plugin option type %d for option %s",
					opt.Type,
					flagName,
				)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin option values from the parsed config file.
// The structure is type name -> plugin name -> option name -> value.
func ProcessConfig(cfg map[string]map[string]map[string]any) error {
	for typeName, plugins := range cfg {
		pluginType, err := pluginTypeByName(typeName)
		if err != nil {
			return err
		}
		for pluginName, opts := range plugins {
			for optName, optValue := range opts {
				// Config files use underscores, option names use dashes
				optName = strings.ReplaceAll(optName, "_", "-")
				if err := SetPluginOption(
					pluginType,
					pluginName,
					optName,
					optValue,
				); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin option values from environment variables
// of the form BRAVO_<TYPE>_<PLUGIN>_<OPTION>, e.g.
// BRAVO_BLOB_BADGER_DATA_DIR
func ProcessEnvVars() error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			envName := strings.ToUpper(
				strings.ReplaceAll(
					"bravo-"+cmdlineOptionFlagName(entry, opt),
					"-",
					"_",
				),
			)
			envValue, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			var value any
			switch opt.Type {
			case PluginOptionTypeString:
				value = envValue
			case PluginOptionTypeBool:
				tmpValue, err := strconv.ParseBool(envValue)
				if err != nil {
					return fmt.Errorf(
						"invalid value for %s: %w",
						envName,
						err,
					)
				}
				value = tmpValue
			case PluginOptionTypeInt:
				tmpValue, err := strconv.Atoi(envValue)
				if err != nil {
					return fmt.Errorf(
						"invalid value for %s: %w",
						envName,
						err,
					)
				}
				value = tmpValue
			case PluginOptionTypeUint:
				tmpValue, err := strconv.ParseUint(envValue, 10, 64)
				if err != nil {
					return fmt.Errorf(
						"invalid value for %s: %w",
						envName,
						err,
					)
				}
				value = tmpValue
			default:
				return fmt.Errorf(
					"unknown plugin option type %d for option %s",
					opt.Type,
					opt.Name,
				)
			}
			if err := SetPluginOption(
				entry.Type,
				entry.Name,
				opt.Name,
				value,
			); err != nil {
				return err
			}
		}
	}
	return nil
}
