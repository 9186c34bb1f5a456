package confirmation

import (
	"context"
	"errors"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

const (
	defaultPollInterval = time.Second
	defaultTimeout      = time.Hour
)

type TrackerConfig struct {
	Confirmations uint64
	PollInterval  time.Duration
	// Timeout bounds a single wait. Zero selects the default, a negative value waits until ctx is done.
	Timeout time.Duration
	// NotFoundRetries is the number of consecutive polls a transaction may be unknown before it is dropped
	NotFoundRetries int
}

// Tracker waits until events observed on one chain are buried under enough blocks
type Tracker struct {
	connector core.ChainConnector
	config    TrackerConfig
	logger    hclog.Logger
}

func NewTracker(connector core.ChainConnector, config TrackerConfig, logger hclog.Logger) *Tracker {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &Tracker{
		connector: connector,
		config:    config,
		logger:    logger,
	}
}

// IsConfirmed reports whether a transaction mined in txBlock has at least confirmations blocks on top of it
func IsConfirmed(head, txBlock, confirmations uint64) bool {
	return head >= txBlock && head-txBlock >= confirmations
}

// Track blocks until event reaches the configured depth.
// Abandoned events are reported as *core.DroppedEventError. Cancelling ctx returns ctx.Err().
func (t *Tracker) Track(ctx context.Context, event *core.ChainEvent) (*core.PendingEvent, error) {
	waitCtx := ctx

	if t.config.Timeout > 0 {
		var cancel context.CancelFunc

		waitCtx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	notFoundCount := 0
	ticker := time.NewTicker(t.config.PollInterval)

	defer ticker.Stop()

	for {
		head, txBlock, err := t.poll(waitCtx, event)

		switch {
		case err == nil:
			notFoundCount = 0

			if IsConfirmed(head, txBlock, t.config.Confirmations) {
				t.logger.Debug("Event confirmed", "key", event.Key(), "block", txBlock, "head", head)

				return &core.PendingEvent{
					ChainEvent:     t.withBlock(event, txBlock),
					ConfirmedBlock: head,
					ConfirmedAt:    time.Now().UTC(),
				}, nil
			}
		case errors.Is(err, core.ErrTransactionNotFound):
			notFoundCount++

			if notFoundCount > t.config.NotFoundRetries {
				return nil, &core.DroppedEventError{Event: event, Reason: core.ErrTransactionNotFound}
			}

			t.logger.Debug("Transaction not found", "key", event.Key(), "attempt", notFoundCount)
		case waitCtx.Err() == nil:
			t.logger.Warn("Failed to poll confirmations", "key", event.Key(), "err", err)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			return nil, &core.DroppedEventError{Event: event, Reason: core.ErrConfirmationTimeout}
		case <-ticker.C:
		}
	}
}

func (t *Tracker) poll(ctx context.Context, event *core.ChainEvent) (head uint64, txBlock uint64, err error) {
	txBlock, err = t.connector.TransactionBlockNumber(ctx, event.TxHash)
	if err != nil {
		return 0, 0, err
	}

	head, err = t.connector.LatestBlockNumber(ctx)
	if err != nil {
		return 0, 0, err
	}

	return head, txBlock, nil
}

// withBlock returns a copy of event carrying the block the transaction ended up in after possible reorgs
func (t *Tracker) withBlock(event *core.ChainEvent, txBlock uint64) core.ChainEvent {
	result := *event
	if result.BlockNumber != txBlock {
		t.logger.Info("Transaction moved to another block", "key", event.Key(),
			"observed", event.BlockNumber, "confirmed", txBlock)

		result.BlockNumber = txBlock
	}

	return result
}
