package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
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
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
metadataPlugin: "sqlite"
blobPlugin: "badger"
databasePath: ".bravo"
bindAddr: "127.0.0.1"
name: "Test Governor"
admin: "admin"
selfAccount: "governor"
tokenName: "Test Token"
tokenSymbol: "TEST"
tokenFeeTo: "treasury"
voteSourceUrl: "http://localhost:8081"
kafkaTopic: "governance-events"
shutdownTimeout: "10s"
kafkaBrokers:
  - "localhost:9092"
quorumVotes: 400
proposalThreshold: 100
votingDelay: 86400000000000
votingPeriod: 259200000000000
timelockDelay: 172800000000000
tokenFee: 2
initialSupply: 1000000
apiPort: 9080
metricsPort: 9180
tokenDecimals: 6
tracing: true
tracingStdout: true
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-bravo.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	expected := &Config{
		MetadataPlugin:    "sqlite",
		BlobPlugin:        "badger",
		DatabasePath:      ".bravo",
		BindAddr:          "127.0.0.1",
		Name:              "Test Governor",
		Admin:             "admin",
		SelfAccount:       "governor",
		TokenName:         "Test Token",
		TokenSymbol:       "TEST",
		TokenFeeTo:        "treasury",
		VoteSourceUrl:     "http://localhost:8081",
		KafkaTopic:        "governance-events",
		ShutdownTimeout:   "10s",
		KafkaBrokers:      []string{"localhost:9092"},
		QuorumVotes:       400,
		ProposalThreshold: 100,
		VotingDelay:       86400000000000,
		VotingPeriod:      259200000000000,
		TimelockDelay:     172800000000000,
		TokenFee:          2,
		InitialSupply:     1000000,
		ApiPort:           9080,
		MetricsPort:       9180,
		TokenDecimals:     6,
		Tracing:           true,
		TracingStdout:     true,
	}

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()

	// Without Config file
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Expected is the original default values from globalConfig
	expected := &Config{
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

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_WithConfigSection(t *testing.T) {
	resetGlobalConfig()

	// Test with a nested config section
	yamlContent := `
config:
  admin: "admin"
  quorumVotes: 900
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-config-section.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Admin != "admin" {
		t.Errorf("expected Admin to be \"admin\", got: %v", cfg.Admin)
	}
	if cfg.QuorumVotes != 900 {
		t.Errorf("expected QuorumVotes to be 900, got: %v", cfg.QuorumVotes)
	}
	// Defaults survive the overlay
	if cfg.BindAddr != "0.0.0.0" {
		t.Errorf("expected BindAddr default, got: %v", cfg.BindAddr)
	}
}

func TestLoad_WithKafkaConfig(t *testing.T) {
	resetGlobalConfig()

	yamlContent := `
kafkaBrokers:
  - "broker1:9092"
  - "broker2:9092"
kafkaTopic: "bravo-events"
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-kafka.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("expected 2 kafka brokers, got: %d", len(cfg.KafkaBrokers))
	}
	if cfg.KafkaBrokers[0] != "broker1:9092" {
		t.Errorf("unexpected first broker: %v", cfg.KafkaBrokers[0])
	}
	if cfg.KafkaTopic != "bravo-events" {
		t.Errorf("expected KafkaTopic to be \"bravo-events\", got: %v", cfg.KafkaTopic)
	}
}
