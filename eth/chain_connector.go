package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethcontracts "github.com/Ethernal-Tech/bridge-relayer/eth/contracts"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"
	"github.com/hashicorp/go-hclog"
)

const (
	defaultBlockRangeLimit = 1000
	resubscribeBackoffMax  = 30 * time.Second
)

// EthClient is the subset of *ethclient.Client used by the connector
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

var _ EthClient = (*ethclient.Client)(nil)

type EthChainConnector struct {
	client             EthClient
	config             core.ChainConfig
	resubscribeBackoff time.Duration
	logger             hclog.Logger
}

var _ core.ChainConnector = (*EthChainConnector)(nil)

func NewEthChainConnector(
	ctx context.Context, config core.ChainConfig, logger hclog.Logger,
) (*EthChainConnector, error) {
	client, err := ethclient.DialContext(ctx, config.NodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", config.NodeURL, err)
	}

	return NewEthChainConnectorWithClient(client, config, logger), nil
}

func NewEthChainConnectorWithClient(
	client EthClient, config core.ChainConfig, logger hclog.Logger,
) *EthChainConnector {
	if config.BlockRangeLimit == 0 {
		config.BlockRangeLimit = defaultBlockRangeLimit
	}

	if config.PollIntervalMs == 0 {
		config.PollIntervalMs = 1000
	}

	return &EthChainConnector{
		client:             client,
		config:             config,
		resubscribeBackoff: resubscribeBackoffMax,
		logger:             logger,
	}
}

// SubscribeEvents polls contract logs starting at the block following the current head.
// Polling failures restart the subscription with backoff from the first unprocessed block.
func (c *EthChainConnector) SubscribeEvents(
	ctx context.Context, direction core.Direction, contract core.ContractConfig, handler core.EventHandler,
) (event.Subscription, error) {
	artifact, err := ethcontracts.LoadArtifactFromFile(contract.PathToArtifact)
	if err != nil {
		return nil, err
	}

	topics, err := eventTopics(artifact.Abi, contract.EventsToWatch)
	if err != nil {
		return nil, err
	}

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve latest block: %w", err)
	}

	poller := &logPoller{
		connector: c,
		direction: direction,
		abi:       artifact.Abi,
		query: ethereum.FilterQuery{
			Addresses: []common.Address{common.HexToAddress(contract.Address)},
			Topics:    [][]common.Hash{topics},
		},
		nextBlock: head + 1,
		handler:   handler,
		logger:    c.logger.Named(string(direction)),
	}

	c.logger.Info("Subscribed to contract events",
		"direction", direction, "address", contract.Address, "events", contract.EventsToWatch, "from", head+1)

	return event.Resubscribe(c.resubscribeBackoff, func(subCtx context.Context) (event.Subscription, error) {
		// do not restart polling before the node answers again
		if _, err := c.client.BlockNumber(subCtx); err != nil {
			poller.logger.Warn("Node unreachable, retrying subscription", "err", err)

			return nil, err
		}

		return event.NewSubscription(func(quit <-chan struct{}) error {
			return poller.run(ctx, quit)
		}), nil
	}), nil
}

func (c *EthChainConnector) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

func (c *EthChainConnector) TransactionBlockNumber(ctx context.Context, txHash string) (uint64, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return 0, core.ErrTransactionNotFound
		}

		return 0, err
	}

	if receipt == nil || receipt.BlockNumber == nil {
		return 0, core.ErrTransactionNotFound
	}

	return receipt.BlockNumber.Uint64(), nil
}

func (c *EthChainConnector) Close() {
	c.client.Close()
}

type logPoller struct {
	connector *EthChainConnector
	direction core.Direction
	abi       *abi.ABI
	query     ethereum.FilterQuery
	nextBlock uint64
	handler   core.EventHandler
	logger    hclog.Logger
}

func (p *logPoller) run(ctx context.Context, quit <-chan struct{}) error {
	ticker := time.NewTicker(p.connector.config.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case <-ticker.C:
		}

		if err := p.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			p.logger.Warn("Log polling failed", "next block", p.nextBlock, "err", err)

			return err
		}
	}
}

func (p *logPoller) pollOnce(ctx context.Context) error {
	head, err := p.connector.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve latest block: %w", err)
	}

	for p.nextBlock <= head {
		to := min(head, p.nextBlock+p.connector.config.BlockRangeLimit-1)

		query := p.query
		query.FromBlock = new(big.Int).SetUint64(p.nextBlock)
		query.ToBlock = new(big.Int).SetUint64(to)

		logs, err := p.connector.client.FilterLogs(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to filter logs from %d to %d: %w", p.nextBlock, to, err)
		}

		for i := range logs {
			if logs[i].Removed {
				continue
			}

			chainEvent, err := decodeLog(p.abi, p.direction, &logs[i])
			if err != nil {
				p.logger.Warn("Failed to decode log", "tx", logs[i].TxHash, "index", logs[i].Index, "err", err)

				continue
			}

			p.handler(chainEvent)
		}

		p.nextBlock = to + 1
	}

	return nil
}

func eventTopics(contractABI *abi.ABI, eventNames []string) ([]common.Hash, error) {
	if contractABI == nil {
		return nil, errors.New("artifact does not contain abi")
	}

	topics := make([]common.Hash, 0, len(eventNames))

	for _, name := range eventNames {
		ev, exists := contractABI.Events[strings.TrimSpace(name)]
		if !exists {
			return nil, fmt.Errorf("event %s not found in abi", name)
		}

		topics = append(topics, ev.ID)
	}

	return topics, nil
}
