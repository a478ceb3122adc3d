package engine

import (
	"sync"

	"github.com/roach88/watchtower/internal/model"
)

// Queue is a single-flight FIFO of notifications.
//
// The front element is the current notification, the one on screen. It
// stays current until Dismiss removes it, at which point the next element
// (if any) becomes current. There is no priority and no de-duplication.
//
// The queue is unbounded so a burst of transitions never blocks a pass.
//
// Thread-safety: Queue is safe for concurrent use. The signal channel lets a
// delivery loop wait for the current slot to change without polling:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    n, ok := q.Current()
//	}
type Queue struct {
	mu     sync.Mutex
	items  []model.Notification
	signal chan struct{} // buffered, size 1
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		items:  make([]model.Notification, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends n behind any waiting notifications.
func (q *Queue) Enqueue(n model.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, n)
	if len(q.items) == 1 {
		q.notify()
	}
}

// Current returns the notification being presented.
func (q *Queue) Current() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Notification{}, false
	}
	return q.items[0], true
}

// Dismiss removes the current notification and promotes the next one.
// It returns the dismissed notification; false means the queue was empty.
func (q *Queue) Dismiss() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Notification{}, false
	}

	n := q.items[0]
	q.items[0] = model.Notification{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}

	q.notify()
	return n, true
}

// Clear drops every notification, current included.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return
	}
	clear(q.items)
	q.items = q.items[:0]
	q.notify()
}

// Len returns the number of notifications, current included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns the number of notifications waiting behind the current one.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0
	}
	return len(q.items) - 1
}

// Items returns a copy of the queue contents, current first.
func (q *Queue) Items() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Wait returns a channel that signals when the current slot may have changed.
// Signals coalesce; always re-check Current after waking.
func (q *Queue) Wait() <-chan struct{} {
	return q.signal
}

// notify must be called with mu held.
func (q *Queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
