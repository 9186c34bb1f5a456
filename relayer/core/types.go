package core

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionSource Direction = "source"
	DirectionTarget Direction = "target"
)

var Directions = []Direction{DirectionSource, DirectionTarget}

func (d Direction) IsValid() bool {
	return d == DirectionSource || d == DirectionTarget
}

type EventArg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ChainEvent is a decoded contract event as delivered by a subscription
type ChainEvent struct {
	Direction   Direction  `json:"direction"`
	EventName   string     `json:"eventName"`
	TxHash      string     `json:"txHash"`
	BlockNumber uint64     `json:"blockNumber"`
	LogIndex    uint       `json:"logIndex"`
	Args        []EventArg `json:"args"`
	// Raw keeps the transport specific payload. It is never serialized.
	Raw any `json:"-"`
}

func (e ChainEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.TxHash, e.LogIndex)
}

type PendingEvent struct {
	ChainEvent
	ConfirmedBlock uint64    `json:"confirmedBlock"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
	FlushAttempts  int       `json:"flushAttempts"`
}

type BatchStatus string

const (
	BatchStatusSuccess BatchStatus = "success"
	BatchStatusPartial BatchStatus = "partial"
	BatchStatusFailure BatchStatus = "failure"
)

type BatchResult struct {
	Status BatchStatus
	// FailedIndices index the submitted batch. Only meaningful for BatchStatusPartial.
	FailedIndices []int
}

type DeadLetter struct {
	ID        string         `json:"id"`
	Pair      string         `json:"pair"`
	Direction Direction      `json:"direction"`
	Reason    string         `json:"reason"`
	Events    []PendingEvent `json:"events"`
	CreatedAt time.Time      `json:"createdAt"`
}

type DroppedEvent struct {
	ID        string     `json:"id"`
	Pair      string     `json:"pair"`
	Event     ChainEvent `json:"event"`
	Reason    string     `json:"reason"`
	DroppedAt time.Time  `json:"droppedAt"`
}

type RelayerStats struct {
	Flushes          uint64    `json:"flushes"`
	ThresholdFlushes uint64    `json:"thresholdFlushes"`
	ExecutorCalls    uint64    `json:"executorCalls"`
	ExecutorFailures uint64    `json:"executorFailures"`
	Observed         uint64    `json:"observed"`
	Confirmed        uint64    `json:"confirmed"`
	Delivered        uint64    `json:"delivered"`
	Dropped          uint64    `json:"dropped"`
	DeadLettered     uint64    `json:"deadLettered"`
	LastFlushAt      time.Time `json:"lastFlushAt"`
}

// RelayerSnapshot is the serializable state of one relay instance
type RelayerSnapshot struct {
	Pair      string                       `json:"pair"`
	Queues    map[Direction][]PendingEvent `json:"queues"`
	Tracking  []ChainEvent                 `json:"tracking"`
	Completed []string                     `json:"completed"`
	Failed    []string                     `json:"failed"`
	Stats     RelayerStats                 `json:"stats"`
	TakenAt   time.Time                    `json:"takenAt"`
}
