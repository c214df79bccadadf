// Package service wires the roster store, the rating engine, the
// matchmaker and the wall layout behind the operations the HTTP API needs.
package service

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/duelwall/internal/adapters/mq/publisher"
	eventqueue "github.com/okian/duelwall/internal/adapters/mq/queue"
	workerpool "github.com/okian/duelwall/internal/adapters/mq/worker"
	repository "github.com/okian/duelwall/internal/adapters/repository"
	"github.com/okian/duelwall/internal/domain/dedupe"
	"github.com/okian/duelwall/internal/domain/layout"
	"github.com/okian/duelwall/internal/domain/rating"
	"github.com/okian/duelwall/pkg/logger"
)

// Service implements the API dependencies for the duel wall.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	publisher  publisher.Publisher
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	maxSwing            int
	maxLeaderboardLimit int
	wallSeed            uint32
	matchmakingSeed     uint64

	// Matchmaking draws from one seeded source.
	rndMu sync.Mutex
	rnd   *rand.Rand

	// Wall snapshot, swapped by the refresh handler.
	wall      atomic.Pointer[Wall]
	refreshMu sync.Mutex

	// State
	started bool
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the roster store. The service owns it and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublisher sets the event publisher used by the refresh handler.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission dedupe window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSwing caps how far one duel can move a rating.
func WithMaxSwing(swing int) Option {
	return func(s *Service) {
		if swing > 0 {
			s.maxSwing = swing
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard page size.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// WithWallSeed sets the override mixed into every default wall.
func WithWallSeed(seed uint32) Option {
	return func(s *Service) { s.wallSeed = seed }
}

// WithMatchmakingSeed makes pair selection reproducible. Zero keeps a
// time-based seed.
func WithMatchmakingSeed(seed uint64) Option {
	return func(s *Service) { s.matchmakingSeed = seed }
}

// WithClock overrides the time source for tickets and snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU(),
		queueSize:           1024,
		dedupeSize:          dedupe.DefaultMaxSize,
		maxSwing:            rating.DefaultMaxSwing,
		maxLeaderboardLimit: 100,
		now:                 time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.publisher == nil {
		s.publisher = publisher.Noop{}
	}

	seed := s.matchmakingSeed
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}
	s.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	return s
}

// Start creates the runtime components, computes the first wall and starts
// the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s)

	if _, err := s.refreshWall(ctx); err != nil {
		return err
	}

	s.workerPool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "service started",
		logger.Int("worker_count", s.workerPool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("max_swing", s.maxSwing),
	)
	return nil
}

// Stop drains the event queue and releases the store and publisher.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	var firstErr error
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
		firstErr = err
	}
	s.publisher.Close()
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.logger.Info(ctx, "service stopped")
	return firstErr
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns runtime counters for the stats endpoint.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":               s.started,
		"worker_count":          s.workerCount,
		"queue_capacity":        s.queueSize,
		"dedupe_capacity":       s.dedupeSize,
		"max_swing":             s.maxSwing,
		"max_leaderboard_limit": s.maxLeaderboardLimit,
	}
	if !s.started {
		return stats
	}

	stats["worker_count"] = s.workerPool.Size()
	stats["queue_length"] = s.eventQueue.Len(ctx)
	stats["dedupe_entries"] = s.deduper.Size()
	if n, err := s.store.Count(ctx); err == nil {
		stats["contestants"] = n
	}
	if w := s.wall.Load(); w != nil {
		stats["wall_instances"] = w.Count
		stats["wall_mode"] = string(w.Mode)
		stats["wall_generated_at"] = w.GeneratedAt
	}
	return stats
}

// defaultLayout returns the options used for the snapshot wall.
func (s *Service) defaultLayout() []layout.Option {
	if s.wallSeed == 0 {
		return nil
	}
	return []layout.Option{layout.WithSeedOverride(s.wallSeed)}
}
