package eth

import (
	"context"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/mock"
)

type ChainConnectorMock struct {
	mock.Mock
}

var _ core.ChainConnector = (*ChainConnectorMock)(nil)

func (m *ChainConnectorMock) SubscribeEvents(
	ctx context.Context, direction core.Direction, contract core.ContractConfig, handler core.EventHandler,
) (event.Subscription, error) {
	args := m.Called(ctx, direction, contract, handler)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(event.Subscription), args.Error(1) //nolint:forcetypeassert
}

func (m *ChainConnectorMock) LatestBlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *ChainConnectorMock) TransactionBlockNumber(ctx context.Context, txHash string) (uint64, error) {
	args := m.Called(ctx, txHash)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *ChainConnectorMock) Close() {
	m.Called()
}

type EthClientMock struct {
	mock.Mock
}

var _ EthClient = (*EthClientMock)(nil)

func (m *EthClientMock) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	return args.Get(0).(uint64), args.Error(1) //nolint:forcetypeassert
}

func (m *EthClientMock) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	args := m.Called(ctx, q)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]types.Log), args.Error(1) //nolint:forcetypeassert
}

func (m *EthClientMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*types.Receipt), args.Error(1) //nolint:forcetypeassert
}

func (m *EthClientMock) Close() {
	m.Called()
}
