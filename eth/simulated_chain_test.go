package eth

import (
	"context"
	"testing"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/stretchr/testify/require"
)

func TestSimulatedChain(t *testing.T) {
	ctx := context.Background()
	contract := core.ContractConfig{Address: "0xB1", EventsToWatch: []string{"Deposit"}}

	t.Run("emit delivers to matching subscribers", func(t *testing.T) {
		chain := NewSimulatedChain(100)
		defer chain.Close()

		var received []*core.ChainEvent

		sub, err := chain.SubscribeEvents(ctx, core.DirectionTarget, contract, func(ev *core.ChainEvent) {
			received = append(received, ev)
		})
		require.NoError(t, err)

		emitted := chain.Emit("0xb1", "Deposit", core.EventArg{Name: "amount", Value: "1"})
		chain.Emit("0xb1", "Withdraw")
		chain.Emit("0xb2", "Deposit")

		require.Len(t, received, 1)
		require.Equal(t, core.DirectionTarget, received[0].Direction)
		require.Equal(t, emitted.TxHash, received[0].TxHash)
		require.Equal(t, uint64(101), received[0].BlockNumber)

		sub.Unsubscribe()
		require.Eventually(t, func() bool {
			chain.Emit("0xb1", "Deposit")

			return len(received) == 1
		}, time.Second, time.Millisecond*10)
	})

	t.Run("blocks and transactions", func(t *testing.T) {
		chain := NewSimulatedChain(0)
		defer chain.Close()

		ev := chain.Emit("0xb1", "Deposit")

		block, err := chain.TransactionBlockNumber(ctx, ev.TxHash)
		require.NoError(t, err)
		require.Equal(t, uint64(1), block)

		require.Equal(t, uint64(4), chain.Mine(3))

		head, err := chain.LatestBlockNumber(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(4), head)

		chain.Include(ev.TxHash, 3)
		block, err = chain.TransactionBlockNumber(ctx, ev.TxHash)
		require.NoError(t, err)
		require.Equal(t, uint64(3), block)

		chain.Reorg(ev.TxHash)
		_, err = chain.TransactionBlockNumber(ctx, ev.TxHash)
		require.ErrorIs(t, err, core.ErrTransactionNotFound)
	})

	t.Run("mining", func(t *testing.T) {
		chain := NewSimulatedChain(0)
		chain.StartMining(time.Millisecond * 5)

		require.Eventually(t, func() bool {
			head, _ := chain.LatestBlockNumber(ctx)

			return head >= 3
		}, time.Second, time.Millisecond*5)

		chain.Close()
		chain.Close()
	})

	t.Run("subscribe without events", func(t *testing.T) {
		chain := NewSimulatedChain(0)
		defer chain.Close()

		_, err := chain.SubscribeEvents(ctx, core.DirectionSource, core.ContractConfig{}, func(*core.ChainEvent) {})
		require.Error(t, err)
	})
}
