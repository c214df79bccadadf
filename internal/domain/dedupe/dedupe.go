// Package dedupe remembers duel submission ids so a retried vote is only
// counted once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the id window used when no option overrides it.
const DefaultMaxSize = 50000

// Deduper records submission ids for at-most-once duel recording.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the submission can be retried after the
	// duel failed to persist.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// entry is a node in the insertion-ordered list; head is the newest id.
type entry struct {
	id         string
	prev, next *entry
}

// window is a bounded set of ids that forgets the oldest first.
type window struct {
	mu      sync.Mutex
	index   map[string]*entry
	head    *entry
	tail    *entry
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a process-local Deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	w := &window{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(w)
	}
	w.index = make(map[string]*entry)
	return w
}

func (w *window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}
	if w.maxSize > 0 && len(w.index) >= w.maxSize {
		w.remove(w.tail)
	}

	e := &entry{id: id, next: w.head}
	if w.head != nil {
		w.head.prev = e
	}
	w.head = e
	if w.tail == nil {
		w.tail = e
	}
	w.index[id] = e
	w.size.Add(1)
	return false
}

func (w *window) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e, ok := w.index[id]; ok {
		w.remove(e)
	}
}

// remove unlinks e. Callers hold w.mu.
func (w *window) remove(e *entry) {
	if e == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		w.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		w.tail = e.prev
	}
	delete(w.index, e.id)
	w.size.Add(-1)
}

func (w *window) Size() int64 {
	return w.size.Load()
}
