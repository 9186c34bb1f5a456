package relayer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

// LoggingBatchExecutor only observes batches. It never touches the destination chain.
type LoggingBatchExecutor struct {
	logger hclog.Logger
}

var _ core.BatchExecutor = (*LoggingBatchExecutor)(nil)

func NewLoggingBatchExecutor(logger hclog.Logger) *LoggingBatchExecutor {
	return &LoggingBatchExecutor{
		logger: logger,
	}
}

func (e *LoggingBatchExecutor) Execute(
	ctx context.Context, direction core.Direction, events []core.PendingEvent,
) (core.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return core.BatchResult{Status: core.BatchStatusFailure}, err
	}

	e.logger.Info("Relaying batch", "direction", direction, "size", len(events))

	for i, ev := range events {
		e.logger.Debug("Batch item", "index", i, "event", ev.EventName, "tx", ev.TxHash,
			"block", ev.BlockNumber, "args", ev.Args)
	}

	return core.BatchResult{Status: core.BatchStatusSuccess}, nil
}

// GetBatchExecutor returns the executor configured for the relay pair
func GetBatchExecutor(config core.RelayPairConfig, logger hclog.Logger) (core.BatchExecutor, error) {
	switch strings.ToLower(config.Executor.Type) {
	case core.ExecutorTypeLog, "":
		return NewLoggingBatchExecutor(logger), nil
	default:
		return nil, fmt.Errorf("unknown executor type: %s", config.Executor.Type)
	}
}
