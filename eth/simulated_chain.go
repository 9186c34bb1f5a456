package eth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
)

// SimulatedChain is an in-memory chain. Every Emit mines one block holding the emitted transaction.
type SimulatedChain struct {
	lock      sync.Mutex
	head      uint64
	txs       map[string]uint64
	txCounter uint64
	subs      map[uint64]*simulatedSubscriber
	subID     uint64
	closeCh   chan struct{}
	closeOnce sync.Once
}

type simulatedSubscriber struct {
	direction core.Direction
	address   string
	events    map[string]bool
	handler   core.EventHandler
}

var _ core.ChainConnector = (*SimulatedChain)(nil)

func NewSimulatedChain(head uint64) *SimulatedChain {
	return &SimulatedChain{
		head:    head,
		txs:     map[string]uint64{},
		subs:    map[uint64]*simulatedSubscriber{},
		closeCh: make(chan struct{}),
	}
}

func (sc *SimulatedChain) SubscribeEvents(
	ctx context.Context, direction core.Direction, contract core.ContractConfig, handler core.EventHandler,
) (event.Subscription, error) {
	if len(contract.EventsToWatch) == 0 {
		return nil, fmt.Errorf("no events to watch for %s", contract.Address)
	}

	sub := &simulatedSubscriber{
		direction: direction,
		address:   strings.ToLower(contract.Address),
		events:    make(map[string]bool, len(contract.EventsToWatch)),
		handler:   handler,
	}

	for _, name := range contract.EventsToWatch {
		sub.events[name] = true
	}

	sc.lock.Lock()
	sc.subID++
	id := sc.subID
	sc.subs[id] = sub
	sc.lock.Unlock()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer func() {
			sc.lock.Lock()
			delete(sc.subs, id)
			sc.lock.Unlock()
		}()

		select {
		case <-quit:
		case <-ctx.Done():
		case <-sc.closeCh:
		}

		return nil
	}), nil
}

// Emit mines a block with one transaction emitting eventName on address and delivers it to subscribers
func (sc *SimulatedChain) Emit(address string, eventName string, args ...core.EventArg) *core.ChainEvent {
	sc.lock.Lock()

	sc.head++
	sc.txCounter++

	txHash := crypto.Keccak256Hash([]byte(fmt.Sprintf("%s-%s-%d", address, eventName, sc.txCounter))).Hex()
	sc.txs[txHash] = sc.head

	emitted := &core.ChainEvent{
		EventName:   eventName,
		TxHash:      txHash,
		BlockNumber: sc.head,
		Args:        args,
	}

	var handlers []*simulatedSubscriber

	for _, id := range sc.sortedSubIDs() {
		sub := sc.subs[id]
		if sub.address == strings.ToLower(address) && sub.events[eventName] {
			handlers = append(handlers, sub)
		}
	}

	sc.lock.Unlock()

	for _, sub := range handlers {
		ev := *emitted
		ev.Direction = sub.direction
		sub.handler(&ev)
	}

	return emitted
}

// Mine appends n empty blocks and returns the new head
func (sc *SimulatedChain) Mine(n uint64) uint64 {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	sc.head += n

	return sc.head
}

// Reorg removes a transaction from the canonical chain
func (sc *SimulatedChain) Reorg(txHash string) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	delete(sc.txs, common.HexToHash(txHash).Hex())
}

// Include puts a transaction into block, as if it was mined there after a reorg
func (sc *SimulatedChain) Include(txHash string, block uint64) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	sc.txs[common.HexToHash(txHash).Hex()] = block
}

// StartMining mines one block every interval until Close
func (sc *SimulatedChain) StartMining(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-sc.closeCh:
				return
			case <-ticker.C:
				sc.Mine(1)
			}
		}
	}()
}

func (sc *SimulatedChain) LatestBlockNumber(_ context.Context) (uint64, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	return sc.head, nil
}

func (sc *SimulatedChain) TransactionBlockNumber(_ context.Context, txHash string) (uint64, error) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	block, exists := sc.txs[common.HexToHash(txHash).Hex()]
	if !exists {
		return 0, core.ErrTransactionNotFound
	}

	return block, nil
}

func (sc *SimulatedChain) Close() {
	sc.closeOnce.Do(func() {
		close(sc.closeCh)
	})
}

func (sc *SimulatedChain) sortedSubIDs() []uint64 {
	ids := make([]uint64, 0, len(sc.subs))

	for id := uint64(1); id <= sc.subID; id++ {
		if _, exists := sc.subs[id]; exists {
			ids = append(ids, id)
		}
	}

	return ids
}
