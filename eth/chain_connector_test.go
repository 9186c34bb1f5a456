package eth

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bridgeABI = `[
	{"anonymous":false,"inputs":[
		{"indexed":true,"name":"sender","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"data","type":"bytes"}],"name":"Deposit","type":"event"},
	{"anonymous":false,"inputs":[
		{"indexed":true,"name":"id","type":"uint256"}],"name":"Withdraw","type":"event"}
]`

var (
	contractAddress = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	senderAddress   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	depositTxHash   = common.HexToHash("0x01")
)

func newDepositLog(t *testing.T, contractABI abi.ABI, block uint64) types.Log {
	t.Helper()

	ev := contractABI.Events["Deposit"]

	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(100), []byte{0xca, 0xfe})
	require.NoError(t, err)

	return types.Log{
		Address:     contractAddress,
		Topics:      []common.Hash{ev.ID, common.BytesToHash(senderAddress.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      depositTxHash,
		Index:       3,
	}
}

func TestDecodeLog(t *testing.T) {
	contractABI, err := abi.JSON(strings.NewReader(bridgeABI))
	require.NoError(t, err)

	t.Run("deposit", func(t *testing.T) {
		log := newDepositLog(t, contractABI, 7)

		ev, err := decodeLog(&contractABI, core.DirectionSource, &log)
		require.NoError(t, err)
		require.Equal(t, core.DirectionSource, ev.Direction)
		require.Equal(t, "Deposit", ev.EventName)
		require.Equal(t, depositTxHash.Hex(), ev.TxHash)
		require.Equal(t, uint64(7), ev.BlockNumber)
		require.Equal(t, uint(3), ev.LogIndex)
		require.Equal(t, []core.EventArg{
			{Name: "sender", Value: senderAddress.Hex()},
			{Name: "amount", Value: "100"},
			{Name: "data", Value: "0xcafe"},
		}, ev.Args)
	})

	t.Run("only indexed arguments", func(t *testing.T) {
		log := types.Log{
			Topics: []common.Hash{contractABI.Events["Withdraw"].ID, common.BigToHash(big.NewInt(42))},
		}

		ev, err := decodeLog(&contractABI, core.DirectionTarget, &log)
		require.NoError(t, err)
		require.Equal(t, []core.EventArg{{Name: "id", Value: "42"}}, ev.Args)
	})

	t.Run("unknown event", func(t *testing.T) {
		log := types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}}

		_, err := decodeLog(&contractABI, core.DirectionSource, &log)
		require.Error(t, err)

		_, err = decodeLog(&contractABI, core.DirectionSource, &types.Log{})
		require.ErrorContains(t, err, "anonymous logs are not supported")
	})
}

func TestEthChainConnector(t *testing.T) {
	contractABI, err := abi.JSON(strings.NewReader(bridgeABI))
	require.NoError(t, err)

	artifactPath := filepath.Join(t.TempDir(), "Bridge.json")
	require.NoError(t, os.WriteFile(artifactPath, []byte(`{"abi":`+bridgeABI+`,"bytecode":"0x"}`), 0600))

	config := core.ChainConfig{ChainID: "source", PollIntervalMs: 10, BlockRangeLimit: 100}
	contract := core.ContractConfig{
		Address:        contractAddress.Hex(),
		PathToArtifact: artifactPath,
		EventsToWatch:  []string{"Deposit"},
	}
	testErr := errors.New("test err")

	t.Run("TransactionBlockNumber", func(t *testing.T) {
		clientMock := &EthClientMock{}
		clientMock.On("TransactionReceipt", mock.Anything, depositTxHash).
			Return(&types.Receipt{BlockNumber: big.NewInt(15)}, nil).Once()
		clientMock.On("TransactionReceipt", mock.Anything, depositTxHash).Return(nil, ethereum.NotFound).Once()
		clientMock.On("TransactionReceipt", mock.Anything, depositTxHash).Return(nil, testErr).Once()

		connector := NewEthChainConnectorWithClient(clientMock, config, hclog.NewNullLogger())

		block, err := connector.TransactionBlockNumber(context.Background(), depositTxHash.Hex())
		require.NoError(t, err)
		require.Equal(t, uint64(15), block)

		_, err = connector.TransactionBlockNumber(context.Background(), depositTxHash.Hex())
		require.ErrorIs(t, err, core.ErrTransactionNotFound)

		_, err = connector.TransactionBlockNumber(context.Background(), depositTxHash.Hex())
		require.ErrorIs(t, err, testErr)
	})

	t.Run("SubscribeEvents unknown event", func(t *testing.T) {
		connector := NewEthChainConnectorWithClient(&EthClientMock{}, config, hclog.NewNullLogger())

		invalid := contract
		invalid.EventsToWatch = []string{"Unknown"}

		_, err := connector.SubscribeEvents(context.Background(), core.DirectionSource, invalid, func(*core.ChainEvent) {})
		require.ErrorContains(t, err, "event Unknown not found in abi")
	})

	t.Run("SubscribeEvents head error", func(t *testing.T) {
		clientMock := &EthClientMock{}
		clientMock.On("BlockNumber", mock.Anything).Return(uint64(0), testErr)

		connector := NewEthChainConnectorWithClient(clientMock, config, hclog.NewNullLogger())

		_, err := connector.SubscribeEvents(context.Background(), core.DirectionSource, contract, func(*core.ChainEvent) {})
		require.ErrorIs(t, err, testErr)
	})

	t.Run("SubscribeEvents delivers and recovers", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		clientMock := &EthClientMock{}
		// subscribe and first reconnect check
		clientMock.On("BlockNumber", mock.Anything).Return(uint64(10), nil).Twice()
		// first poll fails, reconnect check fails once, then the node is back
		clientMock.On("BlockNumber", mock.Anything).Return(uint64(0), testErr).Twice()
		clientMock.On("BlockNumber", mock.Anything).Return(uint64(12), nil)
		clientMock.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
			return q.FromBlock.Uint64() == 11 && q.ToBlock.Uint64() == 12 &&
				q.Addresses[0] == contractAddress && q.Topics[0][0] == contractABI.Events["Deposit"].ID
		})).Return([]types.Log{newDepositLog(t, contractABI, 11)}, nil).Once()

		connector := NewEthChainConnectorWithClient(clientMock, config, hclog.NewNullLogger())
		connector.resubscribeBackoff = time.Millisecond * 50

		var (
			lock     sync.Mutex
			received []*core.ChainEvent
		)

		sub, err := connector.SubscribeEvents(ctx, core.DirectionSource, contract, func(ev *core.ChainEvent) {
			lock.Lock()
			received = append(received, ev)
			lock.Unlock()
		})
		require.NoError(t, err)

		defer sub.Unsubscribe()

		require.Eventually(t, func() bool {
			lock.Lock()
			defer lock.Unlock()

			return len(received) == 1
		}, time.Second*5, time.Millisecond*10)

		// later polls see no new blocks
		time.Sleep(time.Millisecond * 100)

		lock.Lock()
		defer lock.Unlock()

		require.Len(t, received, 1)
		require.Equal(t, "Deposit", received[0].EventName)
		require.Equal(t, uint64(11), received[0].BlockNumber)
		clientMock.AssertNumberOfCalls(t, "FilterLogs", 1)
	})
}
