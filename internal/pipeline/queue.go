package pipeline

import (
	"sync"

	"github.com/bluewave/kiosko/internal/api"
)

// eventType distinguishes between event kinds.
type eventType int

const (
	// eventSubmit carries a newly completed response.
	eventSubmit eventType = iota + 1
	// eventFlush requests a resend pass over the durable queue.
	eventFlush
	// eventOnline signals that connectivity returned.
	eventOnline
	// eventOffline signals that connectivity was lost.
	eventOffline
)

// event is one unit of work for the Run loop.
type event struct {
	typ     eventType
	token   string
	payload api.SubmitPayload
	reply   chan Result     // non-nil for eventSubmit
	flushed chan FlushStats // non-nil for a caller-initiated eventFlush
}

// eventQueue is a thread-safe FIFO queue for pipeline events.
//
// Thread-safety exists for external enqueuing (UI intents, connectivity
// watchers) while the Run loop dequeues. The signal channel enables
// context-aware waiting in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{} // buffered size 1, coalesces wakeups
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) enqueue(e event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// tryDequeue attempts to dequeue without blocking.
func (q *eventQueue) tryDequeue() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event{}, false
	}

	e := q.events[0]

	// Nil out the slot so the payload and channels become collectable.
	q.events[0] = event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// wait returns a channel that signals when events may be available.
func (q *eventQueue) wait() <-chan struct{} {
	return q.signal
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// close signals that no more events will be enqueued and wakes all waiters.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
