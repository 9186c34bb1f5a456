package relayer

import (
	"context"
	"testing"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestGetBatchExecutor(t *testing.T) {
	executor, err := GetBatchExecutor(core.RelayPairConfig{Executor: core.ExecutorConfig{Type: "LOG"}}, hclog.NewNullLogger())
	require.NoError(t, err)
	require.IsType(t, &LoggingBatchExecutor{}, executor)

	executor, err = GetBatchExecutor(core.RelayPairConfig{}, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NotNil(t, executor)

	_, err = GetBatchExecutor(core.RelayPairConfig{Executor: core.ExecutorConfig{Type: "cardano"}}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "unknown executor type: cardano")
}

func TestLoggingBatchExecutor(t *testing.T) {
	executor := NewLoggingBatchExecutor(hclog.NewNullLogger())
	events := []core.PendingEvent{{ChainEvent: core.ChainEvent{EventName: "Deposit", TxHash: "0x01"}}}

	res, err := executor.Execute(context.Background(), core.DirectionSource, events)
	require.NoError(t, err)
	require.Equal(t, core.BatchStatusSuccess, res.Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err = executor.Execute(ctx, core.DirectionSource, events)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, core.BatchStatusFailure, res.Status)
}
