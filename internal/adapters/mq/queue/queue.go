// Package queue carries roster events from the request path to the
// background workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/pkg/metrics"
)

const defaultCapacity = 1024

// Event is the payload flowing through the queue.
type Event = model.RosterEvent

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue never blocks. It fails with ErrFull, ErrClosed or the
	// context error.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue returns the shared consumer channel. It is closed once the
	// queue is closed and drained, or when ctx of the first call ends.
	Dequeue(ctx context.Context) <-chan Event

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool

	consumerOnce sync.Once
	consumer     chan Event
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observeSize()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.observeSize()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	q.consumerOnce.Do(func() {
		q.consumer = make(chan Event)
		go q.pump(ctx)
	})
	return q.consumer
}

func (q *InMemoryQueue) pump(ctx context.Context) {
	defer close(q.consumer)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.events:
			if !ok {
				return
			}
			select {
			case q.consumer <- e:
				metrics.RecordQueueDequeue()
				q.observeSize()
			case <-ctx.Done():
				return
			}
		}
	}
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	q.observeSize()
	return len(q.events)
}

// Close stops new events. Events already queued are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observeSize() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
