package core

import (
	"context"

	"github.com/ethereum/go-ethereum/event"
)

type RelayerManager interface {
	Start() error
	Stop() error
	Dump() bool
	ErrorCh() <-chan error
	GetPairs() []string
	GetRelayer(pair string) (Relayer, bool)
}

type Relayer interface {
	Start(ctx context.Context) error
	Wait()
	ErrorCh() <-chan error
	Append(ctx context.Context, direction Direction, event *PendingEvent) error
	Flush(ctx context.Context) error
	Peek() map[Direction][]PendingEvent
	Snapshot() RelayerSnapshot
	GetDeadLetters() ([]*DeadLetter, error)
	GetDroppedEvents() ([]*DroppedEvent, error)
	RequeueDeadLetter(id string) (int, error)
}

// EventHandler receives every decoded event of a subscription, in emission order where the transport allows it
type EventHandler func(event *ChainEvent)

type ChainConnector interface {
	SubscribeEvents(
		ctx context.Context, direction Direction, contract ContractConfig, handler EventHandler,
	) (event.Subscription, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	// TransactionBlockNumber returns ErrTransactionNotFound if the chain does not know the transaction (yet)
	TransactionBlockNumber(ctx context.Context, txHash string) (uint64, error)
	Close()
}

type BatchExecutor interface {
	Execute(ctx context.Context, direction Direction, events []PendingEvent) (BatchResult, error)
}

type Database interface {
	Init(filePath string) error
	Close() error
	AddDeadLetter(deadLetter *DeadLetter) error
	GetDeadLetters() ([]*DeadLetter, error)
	RemoveDeadLetter(id string) error
	AddDroppedEvent(droppedEvent *DroppedEvent) error
	GetDroppedEvents() ([]*DroppedEvent, error)
}
