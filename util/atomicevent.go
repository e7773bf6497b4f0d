package util

import (
	"sync"
)

// AtomicEvent is a single-slot mailbox between goroutines. Send never
// blocks and replaces any value not yet taken; readers either poll with
// Take between frames or wait on Channel.
type AtomicEvent[T any] struct {
	mu     sync.Mutex
	value  T
	notify chan struct{} // capacity 1, full while a value is pending
}

func NewAtomicEvent[T any]() *AtomicEvent[T] {
	return &AtomicEvent[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send stores event as the latest value and marks it pending.
func (ae *AtomicEvent[T]) Send(event T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	ae.value = event

	select {
	case ae.notify <- struct{}{}:
	default:
		// already pending
	}
}

// Channel receives once per pending value.
func (ae *AtomicEvent[T]) Channel() <-chan struct{} {
	return ae.notify
}

// Value returns the latest value without consuming it.
func (ae *AtomicEvent[T]) Value() T {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.value
}

// Take consumes a pending value. ok is false when nothing was sent since
// the last Take or receive on Channel.
func (ae *AtomicEvent[T]) Take() (value T, ok bool) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	select {
	case <-ae.notify:
		return ae.value, true
	default:
		return value, false
	}
}

// HasPending reports a pending value without consuming it.
func (ae *AtomicEvent[T]) HasPending() bool {
	return len(ae.notify) > 0
}
