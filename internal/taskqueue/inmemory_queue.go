package taskqueue

import (
	"context"
	"sync"
)

// InMemoryQueue is a simple Queue implementation backed by a buffered channel.
// It is safe for concurrent use.
type InMemoryQueue struct {
	mu     sync.RWMutex
	closed bool
	ch     chan Task
}

// NewInMemoryQueue creates a new queue with the given capacity.
// A non-positive capacity selects 1024.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryQueue{
		ch: make(chan Task, capacity),
	}
}

// Ensure InMemoryQueue implements Queue.
var _ Queue = (*InMemoryQueue)(nil)

func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case t, ok := <-q.ch:
		if !ok {
			return nil, ErrQueueClosed
		}
		return &t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting tasks. Tasks already queued are still delivered.
// Close must not be called while an Enqueue is blocked on a full queue.
func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

func (q *InMemoryQueue) Len() int {
	return len(q.ch)
}
