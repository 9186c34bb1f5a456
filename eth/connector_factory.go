package eth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

// NewChainConnector returns the connector for the configured chain type
func NewChainConnector(
	ctx context.Context, config core.ChainConfig, logger hclog.Logger,
) (core.ChainConnector, error) {
	switch strings.ToLower(config.ChainType) {
	case core.ChainTypeEVM, "":
		return NewEthChainConnector(ctx, config, logger)
	case core.ChainTypeSimulated:
		chain := NewSimulatedChain(0)
		chain.StartMining(config.PollInterval())

		logger.Warn("Using simulated chain", "chain", config.ChainID)

		return chain, nil
	default:
		return nil, fmt.Errorf("unknown chain type: %s", config.ChainType)
	}
}
