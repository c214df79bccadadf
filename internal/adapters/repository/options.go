package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides time.Now for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPrioritySeed makes treap balancing reproducible.
func WithPrioritySeed(seed uint64) Option {
	return func(s *MemoryStore) {
		s.prioritySeed = seed
	}
}
