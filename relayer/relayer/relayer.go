package relayer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/queue"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/confirmation"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/Ethernal-Tech/bridge-relayer/telemetry"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultFlushInterval = time.Second * core.DefaultIntervalSec
	bookkeepingCacheSize = 4096
	errorChSize          = 16
)

type RelayerImpl struct {
	config     *core.RelayerConfiguration
	connectors map[core.Direction]core.ChainConnector
	trackers   map[core.Direction]*confirmation.Tracker
	executor   core.BatchExecutor
	db         core.Database
	logger     hclog.Logger

	lock      sync.Mutex
	queues    map[core.Direction][]core.PendingEvent
	tracking  map[string]*core.ChainEvent
	completed *lru.Cache
	failed    *lru.Cache
	stats     core.RelayerStats

	inbox   *queue.ConsumerQueue[*core.ChainEvent]
	subs    []event.Subscription
	wg      sync.WaitGroup
	errorCh *common.SafeCh[error]
}

var _ core.Relayer = (*RelayerImpl)(nil)

func NewRelayer(
	config *core.RelayerConfiguration, connectors map[core.Direction]core.ChainConnector,
	executor core.BatchExecutor, db core.Database, logger hclog.Logger,
) (*RelayerImpl, error) {
	completed, err := lru.New(bookkeepingCacheSize)
	if err != nil {
		return nil, err
	}

	failed, err := lru.New(bookkeepingCacheSize)
	if err != nil {
		return nil, err
	}

	if config.FlushInterval <= 0 {
		config.FlushInterval = defaultFlushInterval
	}

	trackers := make(map[core.Direction]*confirmation.Tracker, len(core.Directions))
	queues := make(map[core.Direction][]core.PendingEvent, len(core.Directions))

	for _, direction := range core.Directions {
		connector, exists := connectors[direction]
		if !exists {
			return nil, fmt.Errorf("chain connector not provided for %s", direction)
		}

		trackers[direction] = confirmation.NewTracker(connector, confirmation.TrackerConfig{
			Confirmations:   config.Pair.Confirmations(direction),
			PollInterval:    config.ConfirmationPollInterval,
			Timeout:         config.ConfirmationTimeout,
			NotFoundRetries: config.NotFoundRetries,
		}, logger.Named(string(direction)))
		queues[direction] = []core.PendingEvent{}
	}

	return &RelayerImpl{
		config:     config,
		connectors: connectors,
		trackers:   trackers,
		executor:   executor,
		db:         db,
		logger:     logger,
		queues:     queues,
		tracking:   map[string]*core.ChainEvent{},
		completed:  completed,
		failed:     failed,
		inbox:      queue.NewConsumerQueue[*core.ChainEvent](),
		errorCh:    common.MakeSafeCh[error](errorChSize),
	}, nil
}

// Start subscribes to both contracts and starts the background loops. It returns once the setup is done.
func (r *RelayerImpl) Start(ctx context.Context) error {
	r.logger.Debug("Relayer starting", "pair", r.config.Pair.Name)

	for _, direction := range core.Directions {
		contract := r.config.Pair.Contract(direction)
		if len(contract.EventsToWatch) == 0 {
			continue
		}

		sub, err := r.connectors[direction].SubscribeEvents(ctx, direction, contract, r.dispatch)
		if err != nil {
			r.unsubscribe()

			return fmt.Errorf("failed to subscribe to %s events: %w", direction, err)
		}

		r.subs = append(r.subs, sub)
	}

	r.wg.Add(3)

	go r.dispatchLoop(ctx)
	go r.flushLoop(ctx)
	go r.shutdownOnDone(ctx)

	r.logger.Info("Relayer started", "pair", r.config.Pair.Name,
		"flush interval", r.config.FlushInterval, "tx limit", r.config.Pair.GetTxLimit())

	return nil
}

// Wait blocks until every goroutine started by Start has exited
func (r *RelayerImpl) Wait() {
	r.wg.Wait()
}

func (r *RelayerImpl) ErrorCh() <-chan error {
	return r.errorCh.ReadCh()
}

func (r *RelayerImpl) GetDeadLetters() ([]*core.DeadLetter, error) {
	return r.db.GetDeadLetters()
}

func (r *RelayerImpl) GetDroppedEvents() ([]*core.DroppedEvent, error) {
	return r.db.GetDroppedEvents()
}

// dispatch is invoked by subscriptions and must not block
func (r *RelayerImpl) dispatch(ev *core.ChainEvent) {
	if !r.inbox.Add(ev) {
		r.logger.Debug("Event received after shutdown", "key", ev.Key(), "direction", ev.Direction)

		return
	}

	telemetry.UpdateRelayerEventsObserved(r.config.Pair.Name, string(ev.Direction), 1)
}

func (r *RelayerImpl) dispatchLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		events := r.inbox.WaitForItems()
		if events == nil {
			return
		}

		for _, ev := range events {
			if !r.startTracking(ev) {
				r.logger.Debug("Duplicated event ignored", "key", ev.Key(), "direction", ev.Direction)

				continue
			}

			r.wg.Add(1)

			go r.trackEvent(ctx, ev)
		}
	}
}

func (r *RelayerImpl) trackEvent(ctx context.Context, ev *core.ChainEvent) {
	defer r.wg.Done()
	defer r.recoverFault("confirmation tracker")

	tracker, exists := r.trackers[ev.Direction]
	if !exists {
		r.logger.Error("Event with invalid direction", "key", ev.Key(), "direction", ev.Direction)

		return
	}

	pending, err := tracker.Track(ctx, ev)
	if err != nil {
		var droppedErr *core.DroppedEventError

		if errors.As(err, &droppedErr) {
			r.handleDropped(droppedErr)
		} else {
			r.logger.Debug("Confirmation tracking stopped", "key", ev.Key(), "err", err)
		}

		return
	}

	if err := r.Append(ctx, ev.Direction, pending); err != nil && !common.IsContextDoneErr(err) {
		r.logger.Error("Failed to append confirmed event", "key", ev.Key(), "err", err)
	}
}

func (r *RelayerImpl) flushLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r.periodicFlush(ctx)
	}
}

func (r *RelayerImpl) periodicFlush(ctx context.Context) {
	defer r.recoverFault("periodic flush")

	if err := r.Flush(ctx); err != nil && !common.IsContextDoneErr(err) {
		r.logger.Error("Periodic flush failed", "err", err)
	}
}

func (r *RelayerImpl) shutdownOnDone(ctx context.Context) {
	defer r.wg.Done()

	<-ctx.Done()

	r.unsubscribe()

	leftovers := r.inbox.Stop()
	if len(leftovers) == 0 {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	// keep them visible in the crash dump
	for _, ev := range leftovers {
		r.tracking[ev.Key()] = ev
	}

	r.logger.Info("Events not tracked before shutdown", "count", len(leftovers))
}

func (r *RelayerImpl) unsubscribe() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}

	r.subs = nil
}

// startTracking registers ev unless it is already known
func (r *RelayerImpl) startTracking(ev *core.ChainEvent) bool {
	key := ev.Key()

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.tracking[key]; exists || r.completed.Contains(key) || r.isQueued(ev.Direction, key) {
		return false
	}

	r.tracking[key] = ev
	r.stats.Observed++

	return true
}

func (r *RelayerImpl) isQueued(direction core.Direction, key string) bool {
	for _, pending := range r.queues[direction] {
		if pending.Key() == key {
			return true
		}
	}

	return false
}

func (r *RelayerImpl) handleDropped(droppedErr *core.DroppedEventError) {
	ev := droppedErr.Event
	key := ev.Key()

	r.lock.Lock()
	delete(r.tracking, key)
	r.failed.Add(key, droppedErr.Reason.Error())
	r.stats.Dropped++
	r.lock.Unlock()

	telemetry.UpdateRelayerEventsDropped(r.config.Pair.Name, string(ev.Direction), 1)

	r.logger.Warn("Event dropped", "key", key, "direction", ev.Direction, "event", ev.EventName,
		"block", ev.BlockNumber, "reason", droppedErr.Reason)

	err := r.db.AddDroppedEvent(&core.DroppedEvent{
		ID:        uuid.NewString(),
		Pair:      r.config.Pair.Name,
		Event:     *ev,
		Reason:    droppedErr.Reason.Error(),
		DroppedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error("Failed to store dropped event", "key", key, "err", err)
	}
}

func (r *RelayerImpl) recoverFault(where string) {
	if rec := recover(); rec != nil {
		err := fmt.Errorf("%s panic: %v", where, rec)

		r.logger.Error("Relayer fault", "pair", r.config.Pair.Name, "err", err, "stack", string(debug.Stack()))

		if !r.errorCh.TryWrite(err) {
			r.logger.Warn("Relayer fault not reported, error channel full", "err", err)
		}
	}
}
