package common

import (
	"errors"
	"sync"
)

var (
	errSafeChNotInitialized = errors.New("channel not initialized. use MakeSafeCh")
	errSafeChClosed         = errors.New("channel already closed")
)

// SafeCh is a channel that tolerates writes after close and double close
type SafeCh[T any] struct {
	ch     chan T
	closed bool
	m      sync.Mutex
}

func MakeSafeCh[T any](size int) *SafeCh[T] {
	return &SafeCh[T]{
		ch: make(chan T, size),
	}
}

func (sch *SafeCh[T]) Close() error {
	sch.m.Lock()
	defer sch.m.Unlock()

	if sch.ch == nil {
		return errSafeChNotInitialized
	}

	if sch.closed {
		return errSafeChClosed
	}

	close(sch.ch)
	sch.closed = true

	return nil
}

func (sch *SafeCh[T]) ReadCh() <-chan T {
	if sch.ch == nil {
		sch.ch = make(chan T, 1)
	}

	return sch.ch
}

// Write blocks until the value is buffered or read
func (sch *SafeCh[T]) Write(obj T) error {
	sch.m.Lock()
	defer sch.m.Unlock()

	if sch.ch == nil {
		return errSafeChNotInitialized
	}

	if sch.closed {
		return errors.New("trying to write to a closed channel")
	}

	sch.ch <- obj

	return nil
}

// TryWrite never blocks. It returns false if the channel is closed or its buffer is full.
func (sch *SafeCh[T]) TryWrite(obj T) bool {
	sch.m.Lock()
	defer sch.m.Unlock()

	if sch.ch == nil || sch.closed {
		return false
	}

	select {
	case sch.ch <- obj:
		return true
	default:
		return false
	}
}
