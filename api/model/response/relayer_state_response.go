package response

import (
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
)

type PairsResponse struct {
	Pairs []string `json:"pairs"`
}

func NewPairsResponse(pairs []string) *PairsResponse {
	return &PairsResponse{
		Pairs: pairs,
	}
}

type PendingEventResponse struct {
	EventName      string          `json:"eventName"`
	TxHash         string          `json:"txHash"`
	BlockNumber    uint64          `json:"blockNumber"`
	LogIndex       uint            `json:"logIndex"`
	Args           []core.EventArg `json:"args"`
	ConfirmedBlock uint64          `json:"confirmedBlock"`
	ConfirmedAt    time.Time       `json:"confirmedAt"`
	FlushAttempts  int             `json:"flushAttempts"`
}

func NewPendingEventResponse(ev core.PendingEvent) PendingEventResponse {
	return PendingEventResponse{
		EventName:      ev.EventName,
		TxHash:         ev.TxHash,
		BlockNumber:    ev.BlockNumber,
		LogIndex:       ev.LogIndex,
		Args:           ev.Args,
		ConfirmedBlock: ev.ConfirmedBlock,
		ConfirmedAt:    ev.ConfirmedAt,
		FlushAttempts:  ev.FlushAttempts,
	}
}

type RelayerStateResponse struct {
	Pair     string                 `json:"pair"`
	Source   []PendingEventResponse `json:"source"`
	Target   []PendingEventResponse `json:"target"`
	Tracking int                    `json:"tracking"`
	Stats    core.RelayerStats      `json:"stats"`
}

func NewRelayerStateResponse(snapshot core.RelayerSnapshot) *RelayerStateResponse {
	return &RelayerStateResponse{
		Pair:     snapshot.Pair,
		Source:   newPendingEventsResponse(snapshot.Queues[core.DirectionSource]),
		Target:   newPendingEventsResponse(snapshot.Queues[core.DirectionTarget]),
		Tracking: len(snapshot.Tracking),
		Stats:    snapshot.Stats,
	}
}

type DeadLetterResponse struct {
	ID        string                 `json:"id"`
	Direction string                 `json:"direction"`
	Reason    string                 `json:"reason"`
	Events    []PendingEventResponse `json:"events"`
	CreatedAt time.Time              `json:"createdAt"`
}

type DeadLettersResponse struct {
	Pair        string               `json:"pair"`
	DeadLetters []DeadLetterResponse `json:"deadLetters"`
}

func NewDeadLettersResponse(pair string, deadLetters []*core.DeadLetter) *DeadLettersResponse {
	items := make([]DeadLetterResponse, len(deadLetters))
	for i, deadLetter := range deadLetters {
		items[i] = DeadLetterResponse{
			ID:        deadLetter.ID,
			Direction: string(deadLetter.Direction),
			Reason:    deadLetter.Reason,
			Events:    newPendingEventsResponse(deadLetter.Events),
			CreatedAt: deadLetter.CreatedAt,
		}
	}

	return &DeadLettersResponse{
		Pair:        pair,
		DeadLetters: items,
	}
}

type DroppedEventResponse struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	EventName   string    `json:"eventName"`
	TxHash      string    `json:"txHash"`
	BlockNumber uint64    `json:"blockNumber"`
	Reason      string    `json:"reason"`
	DroppedAt   time.Time `json:"droppedAt"`
}

type DroppedEventsResponse struct {
	Pair          string                 `json:"pair"`
	DroppedEvents []DroppedEventResponse `json:"droppedEvents"`
}

func NewDroppedEventsResponse(pair string, droppedEvents []*core.DroppedEvent) *DroppedEventsResponse {
	items := make([]DroppedEventResponse, len(droppedEvents))
	for i, dropped := range droppedEvents {
		items[i] = DroppedEventResponse{
			ID:          dropped.ID,
			Direction:   string(dropped.Event.Direction),
			EventName:   dropped.Event.EventName,
			TxHash:      dropped.Event.TxHash,
			BlockNumber: dropped.Event.BlockNumber,
			Reason:      dropped.Reason,
			DroppedAt:   dropped.DroppedAt,
		}
	}

	return &DroppedEventsResponse{
		Pair:          pair,
		DroppedEvents: items,
	}
}

func newPendingEventsResponse(events []core.PendingEvent) []PendingEventResponse {
	result := make([]PendingEventResponse, len(events))
	for i, ev := range events {
		result[i] = NewPendingEventResponse(ev)
	}

	return result
}
