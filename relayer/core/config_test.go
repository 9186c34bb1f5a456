package core

import (
	"testing"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/stretchr/testify/require"
)

func newTestManagerConfig() *RelayerManagerConfiguration {
	return &RelayerManagerConfiguration{
		SourceChain: ChainConfig{NodeURL: "http://localhost:8545"},
		TargetChain: ChainConfig{ChainType: ChainTypeSimulated},
		Pairs: map[string]RelayPairConfig{
			"beta": {
				SourceContract: ContractConfig{Address: "0xb1", EventsToWatch: []string{"Deposit"}},
				TxLimit:        common.Ptr(3),
			},
			"alpha": {
				TargetContract:     ContractConfig{Address: "0xc1", EventsToWatch: []string{"Withdraw"}},
				BlockConfirmations: BlockConfirmationsConfig{SourceChain: common.Ptr(uint64(2))},
				IntervalSec:        5,
			},
		},
	}
}

func TestFillDefaults(t *testing.T) {
	config := newTestManagerConfig()
	config.FillDefaults()

	require.Equal(t, ChainTypeEVM, config.SourceChain.ChainType)
	require.Equal(t, string(DirectionSource), config.SourceChain.ChainID)
	require.Equal(t, string(DirectionTarget), config.TargetChain.ChainID)
	require.Equal(t, uint64(defaultPollIntervalMs), config.TargetChain.PollIntervalMs)
	require.Equal(t, defaultDbsPath, config.DbsPath)
	require.Equal(t, defaultDumpDir, config.DumpDir)
	require.Equal(t, defaultAPIKeyHeader, config.APIConfig.APIKeyHeader)

	alpha := config.Pairs["alpha"]
	require.Equal(t, "alpha", alpha.Name)
	require.Equal(t, uint64(2), alpha.Confirmations(DirectionSource))
	require.Equal(t, uint64(DefaultBlockConfirmations), *alpha.BlockConfirmations.TargetChain)
	require.Equal(t, uint64(5), alpha.IntervalSec)
	require.Equal(t, DefaultTxLimit, *alpha.TxLimit)
	require.Equal(t, int64(defaultConfirmationTimeoutSec), alpha.ConfirmationTimeoutSec)
	require.Equal(t, DefaultHealthRatio, alpha.HealthRatio)
	require.Equal(t, ExecutorTypeLog, alpha.Executor.Type)

	require.Equal(t, 3, config.Pairs["beta"].GetTxLimit())
	require.Equal(t, uint64(DefaultIntervalSec), config.Pairs["beta"].IntervalSec)

	t.Run("explicit zero is kept", func(t *testing.T) {
		config := newTestManagerConfig()
		config.Pairs["zero"] = RelayPairConfig{
			SourceContract: ContractConfig{Address: "0xb2", EventsToWatch: []string{"Deposit"}},
			BlockConfirmations: BlockConfirmationsConfig{
				SourceChain: common.Ptr(uint64(0)),
				TargetChain: common.Ptr(uint64(0)),
			},
			TxLimit:                common.Ptr(0),
			ConfirmationTimeoutSec: -1,
		}
		config.FillDefaults()
		require.NoError(t, config.Validate())

		pair := config.Pairs["zero"]
		require.Equal(t, uint64(0), pair.Confirmations(DirectionSource))
		require.Equal(t, uint64(0), pair.Confirmations(DirectionTarget))
		require.Equal(t, 0, pair.GetTxLimit())
		require.Less(t, config.RelayerConfiguration("zero").ConfirmationTimeout, time.Duration(0))
	})

	t.Run("missing keys use defaults", func(t *testing.T) {
		pair := RelayPairConfig{}
		require.Equal(t, uint64(DefaultBlockConfirmations), pair.Confirmations(DirectionSource))
		require.Equal(t, DefaultTxLimit, pair.GetTxLimit())
	})
}

func TestValidate(t *testing.T) {
	config := newTestManagerConfig()
	config.FillDefaults()
	require.NoError(t, config.Validate())

	config.SourceChain.NodeURL = ""
	require.ErrorContains(t, config.Validate(), "invalid node url for chain source")

	config.SourceChain.NodeURL = "localhost"
	require.ErrorContains(t, config.Validate(), "invalid node url for chain source: localhost")

	// chain type is optional and means evm
	config = newTestManagerConfig()
	require.NoError(t, config.Validate())

	config.SourceChain.NodeURL = ""
	require.ErrorContains(t, config.Validate(), "invalid node url")

	config = newTestManagerConfig()
	config.TargetChain.ChainType = "cardano"
	require.ErrorContains(t, config.Validate(), "unknown chain type: cardano")

	config = newTestManagerConfig()
	config.Pairs["beta"] = RelayPairConfig{
		SourceContract: ContractConfig{EventsToWatch: []string{"Deposit"}},
		TxLimit:        common.Ptr(-1),
	}
	require.ErrorContains(t, config.Validate(), "invalid txLimit for pair beta: -1")

	config = newTestManagerConfig()
	config.Pairs["gamma"] = RelayPairConfig{}
	require.ErrorContains(t, config.Validate(), "no events to watch for pair: gamma")

	config = newTestManagerConfig()
	config.Pairs = nil
	require.ErrorContains(t, config.Validate(), "no relay pairs configured")
}

func TestRelayerConfiguration(t *testing.T) {
	config := newTestManagerConfig()
	config.FillDefaults()

	require.Equal(t, []string{"alpha", "beta"}, config.PairNames())

	relayerConfig := config.RelayerConfiguration("alpha")
	require.Equal(t, "alpha", relayerConfig.Pair.Name)
	require.Equal(t, time.Second*5, relayerConfig.FlushInterval)
	require.Equal(t, time.Millisecond*defaultConfirmationPollIntervalMs, relayerConfig.ConfirmationPollInterval)
	require.Equal(t, uint64(defaultExecutorRetries), relayerConfig.ExecutorRetries)
	require.Equal(t, time.Second*defaultConfirmationTimeoutSec, relayerConfig.ConfirmationTimeout)

	require.Equal(t, uint64(2), relayerConfig.Pair.Confirmations(DirectionSource))
	require.Equal(t, "0xc1", relayerConfig.Pair.Contract(DirectionTarget).Address)
	require.Equal(t, ChainTypeSimulated, config.Chain(DirectionTarget).ChainType)
}
