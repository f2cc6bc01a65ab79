package engine

import (
	"sync"

	"github.com/roach88/livestyle/internal/event"
)

// eventQueue is an unbounded, goroutine-safe FIFO of events waiting for the
// Run loop.
//
// signal has a buffer of one so that several enqueues coalesce into a
// single wake-up; the loop drains with TryDequeue before waiting again.
// Closing the queue closes signal, which wakes a waiting loop for good.
type eventQueue struct {
	mu     sync.Mutex
	events []event.Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event.Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends ev. It returns false once the queue is closed.
func (q *eventQueue) Enqueue(ev event.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}
	ev := q.events[0]
	// Clear the slot so the backing array does not pin the event.
	q.events[0] = nil
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

// Wait returns the channel signalled when events may be available. It is
// closed when the queue closes.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *eventQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops accepting events and wakes the waiting loop.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
