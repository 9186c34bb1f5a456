package core

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrConfirmationTimeout = errors.New("confirmation wait timed out")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrDeadLetterNotFound  = errors.New("dead letter not found")
)

// DroppedEventError is returned when an observed event is abandoned before reaching confirmation depth
type DroppedEventError struct {
	Event  *ChainEvent
	Reason error
}

func (e *DroppedEventError) Error() string {
	return fmt.Sprintf("event %s dropped on %s: %v", e.Event.Key(), e.Event.Direction, e.Reason)
}

func (e *DroppedEventError) Unwrap() error {
	return e.Reason
}
