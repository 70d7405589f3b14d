// Package handoff provides the bounded FIFO queue that sits between a broker
// adapter and the application. It is the only structure shared across
// goroutines: a full queue stops the adapter from acknowledging, which in turn
// throttles intake from the broker.
package handoff

import (
	"context"
	"sync"

	errspkg "github.com/drblury/busflow/internal/runtime/errors"
)

// Policy decides what Push does when the queue is full.
type Policy int

const (
	// Block waits for space, for Close, or for the context to end.
	Block Policy = iota
	// NonBlocking fails immediately with ErrQueueFull.
	NonBlocking
)

func (p Policy) String() string {
	if p == NonBlocking {
		return "non-blocking"
	}
	return "block"
}

// Queue is a bounded, closable FIFO. Push and Receive are safe for concurrent
// use. Items pushed before Close stay receivable after it.
type Queue[T any] struct {
	items     chan T
	done      chan struct{}
	closeOnce sync.Once
	policy    Policy
}

// New creates a queue holding at most capacity items. Capacities below one are
// raised to one.
func New[T any](capacity int, policy Policy) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		items:  make(chan T, capacity),
		done:   make(chan struct{}),
		policy: policy,
	}
}

// Push appends v. It returns ErrQueueClosed after Close, ErrQueueFull when the
// queue is full under NonBlocking, or the context error when ctx ends first.
func (q *Queue[T]) Push(ctx context.Context, v T) error {
	select {
	case <-q.done:
		return errspkg.ErrQueueClosed
	default:
	}

	if q.policy == NonBlocking {
		select {
		case q.items <- v:
			return nil
		default:
			return errspkg.ErrQueueFull
		}
	}

	select {
	case q.items <- v:
		return nil
	case <-q.done:
		return errspkg.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive pops the oldest item, waiting until one is available. Once the queue
// is closed and drained it returns ErrQueueClosed.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-q.items:
		return v, nil
	case <-q.done:
		select {
		case v := <-q.items:
			return v, nil
		default:
			return zero, errspkg.ErrQueueClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops further pushes and wakes blocked callers. It is idempotent.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

func (q *Queue[T]) Len() int { return len(q.items) }
func (q *Queue[T]) Cap() int { return cap(q.items) }

// Policy returns the full-queue behaviour chosen at construction.
func (q *Queue[T]) Policy() Policy { return q.policy }
