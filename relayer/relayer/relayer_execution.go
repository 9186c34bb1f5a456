package relayer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/Ethernal-Tech/bridge-relayer/telemetry"
	"github.com/google/uuid"
)

var errBatchFailed = errors.New("batch execution reported failure")

// Append queues a confirmed event. If the queue grows past the tx limit, every direction is flushed
// before Append returns. Flush failures are logged, the events stay queued.
func (r *RelayerImpl) Append(ctx context.Context, direction core.Direction, ev *core.PendingEvent) error {
	if !direction.IsValid() {
		return fmt.Errorf("%w: %s", core.ErrInvalidDirection, direction)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	pending := *ev
	pending.Direction = direction

	delete(r.tracking, pending.Key())

	r.queues[direction] = append(r.queues[direction], pending)
	r.stats.Confirmed++

	telemetry.UpdateRelayerEventsConfirmed(r.config.Pair.Name, string(direction), 1)
	telemetry.UpdateRelayerQueueSize(r.config.Pair.Name, string(direction), len(r.queues[direction]))

	r.logger.Debug("Event queued", "key", pending.Key(), "direction", direction,
		"queue size", len(r.queues[direction]))

	if len(r.queues[direction]) <= r.config.Pair.GetTxLimit() {
		return nil
	}

	r.logger.Info("Queue exceeded tx limit, flushing",
		"direction", direction, "size", len(r.queues[direction]), "limit", r.config.Pair.GetTxLimit())

	r.stats.ThresholdFlushes++

	if err := r.flush(ctx, "threshold"); err != nil && !common.IsContextDoneErr(err) {
		r.logger.Error("Threshold flush failed", "err", err)
	}

	return nil
}

// Flush hands every non-empty queue to the batch executor
func (r *RelayerImpl) Flush(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.flush(ctx, "periodic")
}

// Peek returns a copy of both queues
func (r *RelayerImpl) Peek() map[core.Direction][]core.PendingEvent {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.copyQueues()
}

func (r *RelayerImpl) Snapshot() core.RelayerSnapshot {
	r.lock.Lock()
	defer r.lock.Unlock()

	tracking := make([]core.ChainEvent, 0, len(r.tracking))
	for _, ev := range r.tracking {
		tracking = append(tracking, *ev)
	}

	return core.RelayerSnapshot{
		Pair:      r.config.Pair.Name,
		Queues:    r.copyQueues(),
		Tracking:  tracking,
		Completed: cacheKeys(r.completed.Keys()),
		Failed:    cacheKeys(r.failed.Keys()),
		Stats:     r.stats,
		TakenAt:   time.Now().UTC(),
	}
}

// flush must be called with r.lock held
func (r *RelayerImpl) flush(ctx context.Context, trigger string) error {
	r.stats.Flushes++
	r.stats.LastFlushAt = time.Now().UTC()

	telemetry.UpdateRelayerFlushes(r.config.Pair.Name, trigger)

	var errs []error

	for _, direction := range core.Directions {
		if len(r.queues[direction]) == 0 {
			continue
		}

		if err := r.flushDirection(ctx, direction); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", direction, err))
		}

		telemetry.UpdateRelayerQueueSize(r.config.Pair.Name, string(direction), len(r.queues[direction]))
	}

	return errors.Join(errs...)
}

func (r *RelayerImpl) flushDirection(ctx context.Context, direction core.Direction) error {
	batch := r.queues[direction]

	r.logger.Info("Executing batch", "direction", direction, "size", len(batch))

	var result core.BatchResult

	err := common.RetryWithBackoff(ctx, r.config.ExecutorRetries, r.config.ExecutorRetryDelay,
		func(ctx context.Context) error {
			r.stats.ExecutorCalls++

			res, err := r.executor.Execute(ctx, direction, copyEvents(batch))
			if err == nil && res.Status != core.BatchStatusSuccess && res.Status != core.BatchStatusPartial {
				err = errBatchFailed
			}

			if err != nil {
				r.stats.ExecutorFailures++

				telemetry.UpdateRelayerBatchFailed(r.config.Pair.Name, string(direction))
				r.logger.Warn("Batch execution failed", "direction", direction, "size", len(batch), "err", err)

				return err
			}

			result = res

			return nil
		}, nil)
	if err != nil && common.IsContextDoneErr(err) {
		// nothing was acknowledged, queue stays as it is
		return err
	}

	failedIdx := map[int]bool{}

	switch {
	case err != nil:
		for i := range batch {
			failedIdx[i] = true
		}
	case result.Status == core.BatchStatusPartial:
		for _, i := range result.FailedIndices {
			if i < 0 || i >= len(batch) {
				r.logger.Warn("Executor returned invalid failed index", "direction", direction, "index", i)

				continue
			}

			failedIdx[i] = true
		}
	}

	var failedEvents, retained, exhausted []core.PendingEvent

	for i, ev := range batch {
		if !failedIdx[i] {
			r.completed.Add(ev.Key(), ev.ConfirmedAt)

			continue
		}

		ev.FlushAttempts++
		failedEvents = append(failedEvents, ev)

		if maxAttempts := r.config.Pair.MaxFlushAttempts; maxAttempts > 0 && ev.FlushAttempts >= maxAttempts {
			exhausted = append(exhausted, ev)
		} else {
			retained = append(retained, ev)
		}
	}

	delivered := len(batch) - len(failedIdx)
	r.stats.Delivered += uint64(delivered)

	if delivered > 0 {
		telemetry.UpdateRelayerBatchSucceeded(r.config.Pair.Name, string(direction), delivered)
	}

	if len(exhausted) > 0 {
		reason := errBatchFailed.Error()
		if err != nil {
			reason = err.Error()
		}

		if dlErr := r.deadLetter(direction, exhausted, reason); dlErr != nil {
			// events cannot be set aside, keep retrying them
			r.logger.Error("Failed to store dead letter", "direction", direction, "err", dlErr)

			retained, exhausted = failedEvents, nil
		}
	}

	if retained == nil {
		retained = []core.PendingEvent{}
	}

	r.queues[direction] = retained

	r.logger.Info("Batch executed", "direction", direction, "delivered", delivered,
		"retained", len(retained), "dead lettered", len(exhausted))

	if len(failedIdx) > 0 {
		if err != nil {
			return fmt.Errorf("batch not delivered: %w", err)
		}

		return fmt.Errorf("%d of %d events not delivered", len(failedIdx), len(batch))
	}

	return nil
}

func (r *RelayerImpl) deadLetter(direction core.Direction, events []core.PendingEvent, reason string) error {
	err := r.db.AddDeadLetter(&core.DeadLetter{
		ID:        uuid.NewString(),
		Pair:      r.config.Pair.Name,
		Direction: direction,
		Reason:    reason,
		Events:    events,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		r.failed.Add(ev.Key(), reason)
	}

	r.stats.DeadLettered += uint64(len(events))

	telemetry.UpdateRelayerDeadLetters(r.config.Pair.Name, string(direction), len(events))

	r.logger.Warn("Events moved to dead letter", "direction", direction, "count", len(events), "reason", reason)

	return nil
}

// RequeueDeadLetter puts the events of a dead letter back at the end of their queue with a fresh attempt count.
// They are delivered by the next flush.
func (r *RelayerImpl) RequeueDeadLetter(id string) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	deadLetters, err := r.db.GetDeadLetters()
	if err != nil {
		return 0, err
	}

	idx := slices.IndexFunc(deadLetters, func(dl *core.DeadLetter) bool {
		return dl.ID == id
	})
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", core.ErrDeadLetterNotFound, id)
	}

	deadLetter := deadLetters[idx]
	if !deadLetter.Direction.IsValid() {
		return 0, fmt.Errorf("%w: %s", core.ErrInvalidDirection, deadLetter.Direction)
	}

	if err := r.db.RemoveDeadLetter(id); err != nil {
		return 0, err
	}

	for _, ev := range deadLetter.Events {
		ev.FlushAttempts = 0
		r.failed.Remove(ev.Key())
		r.queues[deadLetter.Direction] = append(r.queues[deadLetter.Direction], ev)
	}

	size := len(r.queues[deadLetter.Direction])

	telemetry.UpdateRelayerQueueSize(r.config.Pair.Name, string(deadLetter.Direction), size)

	r.logger.Info("Dead letter requeued", "id", id, "direction", deadLetter.Direction,
		"count", len(deadLetter.Events), "queue size", size)

	return len(deadLetter.Events), nil
}

func (r *RelayerImpl) copyQueues() map[core.Direction][]core.PendingEvent {
	result := make(map[core.Direction][]core.PendingEvent, len(core.Directions))
	for _, direction := range core.Directions {
		result[direction] = copyEvents(r.queues[direction])
	}

	return result
}

func copyEvents(events []core.PendingEvent) []core.PendingEvent {
	return append(make([]core.PendingEvent, 0, len(events)), events...)
}

func cacheKeys(keys []interface{}) []string {
	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if str, ok := key.(string); ok {
			result = append(result, str)
		}
	}

	return result
}
