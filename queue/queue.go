package queue

import (
	"sync"
)

// ConsumerQueue is an unbounded FIFO with a single blocking consumer.
// Producers never block.
type ConsumerQueue[T any] struct {
	lock    *sync.Cond
	data    []T
	stopped bool
}

func NewConsumerQueue[T any]() *ConsumerQueue[T] {
	return &ConsumerQueue[T]{
		lock: sync.NewCond(&sync.Mutex{}),
		data: []T{},
	}
}

// Add appends item and wakes the consumer. Items added after Stop are discarded.
func (cq *ConsumerQueue[T]) Add(item T) bool {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	if cq.stopped {
		return false
	}

	cq.data = append(cq.data, item)
	cq.lock.Signal()

	return true
}

// WaitForItems blocks until at least one item is queued and returns all of them in insertion order.
// It returns nil once the queue is stopped.
func (cq *ConsumerQueue[T]) WaitForItems() (result []T) {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	for len(cq.data) == 0 && !cq.stopped {
		cq.lock.Wait()
	}

	if cq.stopped {
		return nil
	}

	result = append([]T{}, cq.data...)
	cq.data = cq.data[:0]

	return result
}

func (cq *ConsumerQueue[T]) Len() int {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	return len(cq.data)
}

// Stop releases the consumer and returns the items that were never consumed
func (cq *ConsumerQueue[T]) Stop() []T {
	cq.lock.L.Lock()
	defer cq.lock.L.Unlock()

	cq.stopped = true
	remaining := cq.data
	cq.data = nil
	cq.lock.Broadcast()

	return remaining
}
