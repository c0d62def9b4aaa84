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
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/bravo/event"
	"github.com/blinklabs-io/bravo/governance"
	"github.com/blinklabs-io/bravo/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry      prometheus.Registerer
	logger            *slog.Logger
	voteSource        governance.VoteSource
	dispatcher        governance.Dispatcher
	eventSink         event.Sink
	timeSource        func() uint64
	dataDir           string
	blobPlugin        string
	metadataPlugin    string
	name              string
	admin             ledger.AccountID
	selfAccount       ledger.AccountID
	apiListenAddress  string
	kafkaBrokers      []string
	kafkaTopic        string
	tokenName         string
	tokenSymbol       string
	tokenFeeTo        ledger.AccountID
	quorumVotes       uint64
	proposalThreshold uint64
	votingDelay       uint64
	votingPeriod      uint64
	timelockDelay     uint64
	tokenFee          uint64
	initialSupply     uint64
	shutdownTimeout   time.Duration
	tokenDecimals     uint8
	tracing           bool
	tracingStdout     bool
}

// configPopulateDefaults fills in defaults for unset governance and
// token parameters. Stored parameters take precedence over all of these
// when the database already holds state.
func (b *Bravo) configPopulateDefaults() {
	if b.config.name == "" {
		b.config.name = "Governor Bravo"
	}
	if b.config.selfAccount == "" {
		b.config.selfAccount = "governance"
	}
	if b.config.votingDelay == 0 {
		b.config.votingDelay = governance.MinVotingDelay
	}
	if b.config.votingPeriod == 0 {
		b.config.votingPeriod = 3 * governance.OneDay
	}
	if b.config.timelockDelay == 0 {
		b.config.timelockDelay = governance.MinTimelockDelay
	}
	if b.config.tokenName == "" {
		b.config.tokenName = "Bravo"
	}
	if b.config.tokenSymbol == "" {
		b.config.tokenSymbol = "BRAVO"
	}
	if b.config.tokenDecimals == 0 {
		b.config.tokenDecimals = 8
	}
}

func (b *Bravo) configValidate() error {
	if b.config.admin == "" {
		return errors.New("no governance admin defined")
	}
	if len(b.config.kafkaBrokers) > 0 && b.config.kafkaTopic == "" {
		return errors.New("kafka brokers defined without a topic")
	}
	return nil
}

// configWarnBounds logs a warning for each governance parameter outside
// its recommended range. The bounds are recommendations, not hard
// limits, so out-of-range values are accepted.
func (b *Bravo) configWarnBounds() {
	type bound struct {
		name  string
		value uint64
		min   uint64
		max   uint64
	}
	bounds := []bound{
		{
			name:  "voting delay",
			value: b.config.votingDelay,
			min:   governance.MinVotingDelay,
			max:   governance.MaxVotingDelay,
		},
		{
			name:  "voting period",
			value: b.config.votingPeriod,
			min:   governance.MinVotingPeriod,
			max:   governance.MaxVotingPeriod,
		},
		{
			name:  "proposal threshold",
			value: b.config.proposalThreshold,
			min:   governance.MinProposalThreshold,
			max:   governance.MaxProposalThreshold,
		},
		{
			name:  "timelock delay",
			value: b.config.timelockDelay,
			min:   governance.MinTimelockDelay,
			max:   governance.MaxTimelockDelay,
		},
	}
	for _, bnd := range bounds {
		if bnd.value < bnd.min || bnd.value > bnd.max {
			b.config.logger.Warn(
				bnd.name+" is outside the recommended range",
				"component", "bravo",
				"value", bnd.value,
				"min", bnd.min,
				"max", bnd.max,
			)
		}
	}
}

// ConfigOptionFunc is a type that represents functions that modify the Bravo config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new bravo config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithName specifies the governance instance name. The default is
// "Governor Bravo"
func WithName(name string) ConfigOptionFunc {
	return func(c *Config) {
		c.name = name
	}
}

// WithAdmin specifies the governance admin account. This is required
func WithAdmin(admin ledger.AccountID) ConfigOptionFunc {
	return func(c *Config) {
		c.admin = admin
	}
}

// WithSelfAccount specifies the account the engine answers to as a task
// target. Tasks addressed to this account are dispatched to the engine's
// own parameter setters instead of the external dispatcher. The default
// is "governance"
func WithSelfAccount(account ledger.AccountID) ConfigOptionFunc {
	return func(c *Config) {
		c.selfAccount = account
	}
}

// WithQuorumVotes specifies the minimum number of supporting votes for a
// proposal to pass
func WithQuorumVotes(votes uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.quorumVotes = votes
	}
}

// WithProposalThreshold specifies the voting power a proposer must
// exceed to create a proposal
func WithProposalThreshold(threshold uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.proposalThreshold = threshold
	}
}

// WithVotingDelay specifies the delay in nanoseconds between proposal
// creation and the start of voting
func WithVotingDelay(delay uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.votingDelay = delay
	}
}

// WithVotingPeriod specifies the duration of voting in nanoseconds. The
// default is three days
func WithVotingPeriod(period uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.votingPeriod = period
	}
}

// WithTimelockDelay specifies the delay in nanoseconds between queueing
// a passed proposal and its earliest execution. The default is two days
func WithTimelockDelay(delay uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.timelockDelay = delay
	}
}

// WithTokenMetadata specifies the governance token's name, symbol, and
// decimal places
func WithTokenMetadata(
	name string,
	symbol string,
	decimals uint8,
) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenName = name
		c.tokenSymbol = symbol
		c.tokenDecimals = decimals
	}
}

// WithTokenFee specifies the flat fee charged on transfers, in base
// token units
func WithTokenFee(fee uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenFee = fee
	}
}

// WithTokenFeeTo specifies the account transfer fees are paid to
func WithTokenFeeTo(feeTo ledger.AccountID) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenFeeTo = feeTo
	}
}

// WithInitialSupply specifies the token supply minted to the admin when
// the ledger is first created
func WithInitialSupply(supply uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.initialSupply = supply
	}
}

// WithVoteSource specifies where voting power is resolved from. The
// default is the embedded token ledger
func WithVoteSource(source governance.VoteSource) ConfigOptionFunc {
	return func(c *Config) {
		c.voteSource = source
	}
}

// WithDispatcher specifies the dispatcher for tasks addressed to
// accounts other than the engine's own. Without one, such tasks fail
// to execute and their proposals return to the queue
func WithDispatcher(dispatcher governance.Dispatcher) ConfigOptionFunc {
	return func(c *Config) {
		c.dispatcher = dispatcher
	}
}

// WithEventSink specifies an external sink that governance and ledger
// events are forwarded to
func WithEventSink(sink event.Sink) ConfigOptionFunc {
	return func(c *Config) {
		c.eventSink = sink
	}
}

// WithKafkaSink specifies Kafka brokers and a topic to forward events
// to. This overrides WithEventSink
func WithKafkaSink(brokers []string, topic string) ConfigOptionFunc {
	return func(c *Config) {
		c.kafkaBrokers = brokers
		c.kafkaTopic = topic
	}
}

// WithApiListenAddress specifies the listen address for the REST API
// server. An empty string disables the server. The default is empty
// (disabled)
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithTimeSource specifies the clock used for proposal and checkpoint
// timestamps, as nanoseconds since the Unix epoch. The default is the
// system clock. This is mostly useful for tests and simulation
func WithTimeSource(source func() uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.timeSource = source
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
