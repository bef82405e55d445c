package rtos

import (
	"runtime"

	"github.com/pkg/errors"
)

// Queue is a fixed-capacity FIFO shared between tasks. Send blocks while the
// queue is full and Receive blocks while it is empty, both without timeout.
// A blocked task gives up the CPU until the operation can complete.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue holding up to capacity items.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrQueueAlloc, "capacity %d", capacity)
	}
	return &Queue[T]{ch: make(chan T, capacity)}, nil
}

// Send appends v, blocking t while the queue is full.
func (q *Queue[T]) Send(t *Task, v T) {
	t.exitIfStopped()

	select {
	case q.ch <- v:
		t.checkpoint()
		return
	default:
	}

	t.block()
	select {
	case q.ch <- v:
	case <-t.k.done:
		runtime.Goexit()
	}
	t.unblock()
}

// Receive removes the oldest item, blocking t while the queue is empty.
func (q *Queue[T]) Receive(t *Task) T {
	t.exitIfStopped()

	select {
	case v := <-q.ch:
		t.checkpoint()
		return v
	default:
	}

	t.block()
	var v T
	select {
	case v = <-q.ch:
	case <-t.k.done:
		runtime.Goexit()
	}
	t.unblock()
	return v
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }
