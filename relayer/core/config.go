package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apiCore "github.com/Ethernal-Tech/bridge-relayer/api/core"
	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/telemetry"
	"github.com/Ethernal-Tech/cardano-infrastructure/logger"
)

const (
	DefaultBlockConfirmations = 6
	DefaultIntervalSec        = 600
	DefaultHealthRatio        = 0.95
	DefaultTxLimit            = 10

	defaultPollIntervalMs             = 2000
	defaultConfirmationPollIntervalMs = 1000
	defaultNotFoundRetries            = 30
	defaultExecutorRetries            = 3
	defaultExecutorRetryDelayMs       = 500
	defaultMaxFlushAttempts           = 5
	defaultConfirmationTimeoutSec     = 3600
	defaultDbsPath                    = "db"
	defaultDumpDir                    = "dump"
	defaultAPIPathPrefix              = "api"
	defaultAPIKeyHeader               = "X-API-Key"

	ChainTypeEVM       = "evm"
	ChainTypeSimulated = "simulated"

	ExecutorTypeLog = "log"
)

type ChainConfig struct {
	ChainID         string `json:"chainId" yaml:"chainId"`
	ChainType       string `json:"chainType" yaml:"chainType"`
	NodeURL         string `json:"nodeUrl" yaml:"nodeUrl"`
	PollIntervalMs  uint64 `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	BlockRangeLimit uint64 `json:"blockRangeLimit" yaml:"blockRangeLimit"`
}

func (c ChainConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

type ContractConfig struct {
	Address        string   `json:"address" yaml:"address"`
	PathToArtifact string   `json:"pathToArtifact" yaml:"pathToArtifact"`
	EventsToWatch  []string `json:"eventsToWatch" yaml:"eventsToWatch"`
}

type BlockConfirmationsConfig struct {
	SourceChain *uint64 `json:"sourceChain,omitempty" yaml:"sourceChain,omitempty"`
	TargetChain *uint64 `json:"targetChain,omitempty" yaml:"targetChain,omitempty"`
}

type ExecutorConfig struct {
	Type string `json:"type" yaml:"type"`
}

// RelayPairConfig describes one source/target contract pair. Read-only after FillDefaults.
type RelayPairConfig struct {
	Name                   string                   `json:"-" yaml:"-"`
	SourceContract         ContractConfig           `json:"sourceContract" yaml:"sourceContract"`
	TargetContract         ContractConfig           `json:"targetContract" yaml:"targetContract"`
	BlockConfirmations     BlockConfirmationsConfig `json:"blockConfirmations" yaml:"blockConfirmations"`
	IntervalSec            uint64                   `json:"interval" yaml:"interval"`
	TxLimit                *int                     `json:"txLimit,omitempty" yaml:"txLimit,omitempty"`
	HealthRatio            float64                  `json:"healthRatio" yaml:"healthRatio"` // reserved, not consumed
	ConfirmationTimeoutSec int64                    `json:"confirmationTimeout" yaml:"confirmationTimeout"` // negative waits forever
	MaxFlushAttempts       int                      `json:"maxFlushAttempts" yaml:"maxFlushAttempts"`
	Executor               ExecutorConfig           `json:"executor" yaml:"executor"`
}

func (c RelayPairConfig) Contract(direction Direction) ContractConfig {
	if direction == DirectionTarget {
		return c.TargetContract
	}

	return c.SourceContract
}

// Confirmations returns the configured depth for direction. Zero is a valid depth, only a missing key gets the default.
func (c RelayPairConfig) Confirmations(direction Direction) uint64 {
	value := c.BlockConfirmations.SourceChain
	if direction == DirectionTarget {
		value = c.BlockConfirmations.TargetChain
	}

	if value == nil {
		return DefaultBlockConfirmations
	}

	return *value
}

func (c RelayPairConfig) GetTxLimit() int {
	if c.TxLimit == nil {
		return DefaultTxLimit
	}

	return *c.TxLimit
}

// RelayerConfiguration is the resolved configuration of a single relay instance.
type RelayerConfiguration struct {
	Pair                     RelayPairConfig
	FlushInterval            time.Duration
	ConfirmationTimeout      time.Duration
	ConfirmationPollInterval time.Duration
	NotFoundRetries          int
	ExecutorRetries          uint64
	ExecutorRetryDelay       time.Duration
}

type RelayerManagerConfiguration struct {
	SourceChain                ChainConfig                `json:"sourceChain" yaml:"sourceChain"`
	TargetChain                ChainConfig                `json:"targetChain" yaml:"targetChain"`
	Pairs                      map[string]RelayPairConfig `json:"pairs" yaml:"pairs"`
	DbsPath                    string                     `json:"dbsPath" yaml:"dbsPath"`
	DumpDir                    string                     `json:"dumpDir" yaml:"dumpDir"`
	ConfirmationPollIntervalMs uint64                     `json:"confirmationPollIntervalMs" yaml:"confirmationPollIntervalMs"`
	NotFoundRetries            int                        `json:"notFoundRetries" yaml:"notFoundRetries"`
	ExecutorRetries            uint64                     `json:"executorRetries" yaml:"executorRetries"`
	ExecutorRetryDelayMs       uint64                     `json:"executorRetryDelayMs" yaml:"executorRetryDelayMs"`
	Logger                     logger.LoggerConfig        `json:"logger" yaml:"logger"`
	Telemetry                  telemetry.TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	APIConfig                  apiCore.APIConfig          `json:"api" yaml:"api"`
}

func (c *RelayerManagerConfiguration) FillDefaults() {
	for _, chain := range []*ChainConfig{&c.SourceChain, &c.TargetChain} {
		if chain.ChainType == "" {
			chain.ChainType = ChainTypeEVM
		}

		if chain.PollIntervalMs == 0 {
			chain.PollIntervalMs = defaultPollIntervalMs
		}
	}

	if c.SourceChain.ChainID == "" {
		c.SourceChain.ChainID = string(DirectionSource)
	}

	if c.TargetChain.ChainID == "" {
		c.TargetChain.ChainID = string(DirectionTarget)
	}

	if c.DbsPath == "" {
		c.DbsPath = defaultDbsPath
	}

	if c.DumpDir == "" {
		c.DumpDir = defaultDumpDir
	}

	if c.APIConfig.PathPrefix == "" {
		c.APIConfig.PathPrefix = defaultAPIPathPrefix
	}

	if c.APIConfig.APIKeyHeader == "" {
		c.APIConfig.APIKeyHeader = defaultAPIKeyHeader
	}

	if c.ConfirmationPollIntervalMs == 0 {
		c.ConfirmationPollIntervalMs = defaultConfirmationPollIntervalMs
	}

	if c.NotFoundRetries == 0 {
		c.NotFoundRetries = defaultNotFoundRetries
	}

	if c.ExecutorRetries == 0 {
		c.ExecutorRetries = defaultExecutorRetries
	}

	if c.ExecutorRetryDelayMs == 0 {
		c.ExecutorRetryDelayMs = defaultExecutorRetryDelayMs
	}

	for name, pair := range c.Pairs {
		pair.Name = name

		if pair.BlockConfirmations.SourceChain == nil {
			pair.BlockConfirmations.SourceChain = common.Ptr(uint64(DefaultBlockConfirmations))
		}

		if pair.BlockConfirmations.TargetChain == nil {
			pair.BlockConfirmations.TargetChain = common.Ptr(uint64(DefaultBlockConfirmations))
		}

		if pair.IntervalSec == 0 {
			pair.IntervalSec = DefaultIntervalSec
		}

		if pair.TxLimit == nil {
			pair.TxLimit = common.Ptr(DefaultTxLimit)
		}

		if pair.ConfirmationTimeoutSec == 0 {
			pair.ConfirmationTimeoutSec = defaultConfirmationTimeoutSec
		}

		if pair.HealthRatio == 0 {
			pair.HealthRatio = DefaultHealthRatio
		}

		if pair.MaxFlushAttempts == 0 {
			pair.MaxFlushAttempts = defaultMaxFlushAttempts
		}

		if pair.Executor.Type == "" {
			pair.Executor.Type = ExecutorTypeLog
		}

		c.Pairs[name] = pair
	}
}

func (c *RelayerManagerConfiguration) Validate() error {
	if len(c.Pairs) == 0 {
		return errors.New("no relay pairs configured")
	}

	for _, chain := range []ChainConfig{c.SourceChain, c.TargetChain} {
		switch strings.ToLower(chain.ChainType) {
		case "", ChainTypeEVM:
			if !common.IsValidURL(chain.NodeURL) {
				return fmt.Errorf("invalid node url for chain %s: %s", chain.ChainID, chain.NodeURL)
			}
		case ChainTypeSimulated:
		default:
			return fmt.Errorf("unknown chain type: %s", chain.ChainType)
		}
	}

	for _, name := range c.PairNames() {
		pair := c.Pairs[name]

		if pair.GetTxLimit() < 0 {
			return fmt.Errorf("invalid txLimit for pair %s: %d", name, pair.GetTxLimit())
		}

		if len(pair.SourceContract.EventsToWatch) == 0 && len(pair.TargetContract.EventsToWatch) == 0 {
			return fmt.Errorf("no events to watch for pair: %s", name)
		}
	}

	return nil
}

// PairNames returns configured pair names in sorted order
func (c *RelayerManagerConfiguration) PairNames() []string {
	names := make([]string, 0, len(c.Pairs))
	for name := range c.Pairs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (c *RelayerManagerConfiguration) Chain(direction Direction) ChainConfig {
	if direction == DirectionTarget {
		return c.TargetChain
	}

	return c.SourceChain
}

func (c *RelayerManagerConfiguration) RelayerConfiguration(pairName string) *RelayerConfiguration {
	pair := c.Pairs[pairName]
	pair.Name = pairName

	return &RelayerConfiguration{
		Pair:                     pair,
		FlushInterval:            time.Duration(pair.IntervalSec) * time.Second,
		ConfirmationTimeout:      time.Duration(pair.ConfirmationTimeoutSec) * time.Second,
		ConfirmationPollInterval: time.Duration(c.ConfirmationPollIntervalMs) * time.Millisecond,
		NotFoundRetries:          c.NotFoundRetries,
		ExecutorRetries:          c.ExecutorRetries,
		ExecutorRetryDelay:       time.Duration(c.ExecutorRetryDelayMs) * time.Millisecond,
	}
}
