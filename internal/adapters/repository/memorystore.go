package repository

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	"github.com/okian/duelwall/internal/domain/types"
	"github.com/okian/duelwall/pkg/metrics"
)

// MemoryStore keeps the roster in process. Writes are serialised by one
// mutex, which also makes RecordDuel atomic.
type MemoryStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[int64]model.Contestant
	duels  []model.DuelRecord
	seen   map[string]struct{}
	nextID int64
	duelID int64

	now          func() time.Time
	prioritySeed uint64
	prio         *rand.Rand
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:         make(map[int64]model.Contestant),
		seen:         make(map[string]struct{}),
		now:          time.Now,
		prioritySeed: uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.prio = rand.New(rand.NewPCG(s.prioritySeed, s.prioritySeed^0x9e3779b97f4a7c15))
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]model.Contestant, error) {
	defer observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Contestant, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Contestant) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Contestant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return model.Contestant{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Insert(_ context.Context, entries []model.NewContestant) ([]model.Contestant, error) {
	defer observeUpdate(time.Now())

	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.ImageRef) == "" {
			return nil, ErrEmptyField
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Contestant, 0, len(entries))
	for _, e := range entries {
		s.nextID++
		c := model.Contestant{
			ID:        s.nextID,
			Name:      e.Name,
			ImageRef:  e.ImageRef,
			Rating:    model.DefaultRating,
			CreatedAt: s.now().UTC(),
		}
		s.put(c)
		out = append(out, c)
	}
	metrics.UpdateRosterSize(len(s.byID))
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, name, imageRef string) (model.Contestant, error) {
	defer observeUpdate(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return model.Contestant{}, ErrNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		c.Name = name
	}
	if imageRef = strings.TrimSpace(imageRef); imageRef != "" {
		c.ImageRef = imageRef
	}
	s.byID[id] = c
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	defer observeUpdate(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.root = deleteNode(s.root, id, rating.ContestantScore(c))
	delete(s.byID, id)
	s.duels = slices.DeleteFunc(s.duels, func(d model.DuelRecord) bool {
		if d.A.ID != id && d.B.ID != id {
			return false
		}
		delete(s.seen, d.SubmissionID)
		return true
	})
	metrics.UpdateRosterSize(len(s.byID))
	return nil
}

func (s *MemoryStore) RecordDuel(_ context.Context, cmd DuelCommand, resolve Resolver) (model.DuelRecord, error) {
	defer observeUpdate(time.Now())

	if cmd.AID == cmd.BID {
		return model.DuelRecord{}, ErrSameSide
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, okA := s.byID[cmd.AID]
	b, okB := s.byID[cmd.BID]
	if !okA || !okB {
		return model.DuelRecord{}, ErrNotFound
	}
	if cmd.SubmissionID != "" {
		if _, dup := s.seen[cmd.SubmissionID]; dup {
			return model.DuelRecord{}, ErrDuplicateSubmission
		}
		s.seen[cmd.SubmissionID] = struct{}{}
	}

	res := resolve(a, b, cmd.Outcome)
	s.reposition(a, res.A)
	s.reposition(b, res.B)

	s.duelID++
	rec := model.DuelRecord{
		ID:           s.duelID,
		SubmissionID: cmd.SubmissionID,
		Outcome:      cmd.Outcome,
		WinnerID:     model.WinnerFor(cmd.Outcome, a.ID, b.ID),
		A:            res.A,
		B:            res.B,
		CreatedAt:    s.now().UTC(),
	}
	s.duels = append(s.duels, rec)
	return rec, nil
}

// Duels returns the recorded history, oldest first.
func (s *MemoryStore) Duels() []model.DuelRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.duels)
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	defer observeQuery(time.Now())

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &ids)
	out := make([]types.Entry, len(ids))
	for i, id := range ids {
		c := s.byID[id]
		out[i] = types.NewEntry(i+1, c, rating.ContestantScore(c))
	}
	return out, nil
}

func (s *MemoryStore) Rank(_ context.Context, id int64) (types.Entry, error) {
	defer observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	score := rating.ContestantScore(c)
	return types.NewEntry(rankOf(s.root, id, score), c, score), nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryStore) Close() error { return nil }

// put stores c and indexes it. Callers hold s.mu.
func (s *MemoryStore) put(c model.Contestant) {
	s.byID[c.ID] = c
	s.root = insert(s.root, c.ID, rating.ContestantScore(c), s.prio.Uint64())
}

// reposition moves c to its post-duel state. Callers hold s.mu.
func (s *MemoryStore) reposition(c model.Contestant, side model.DuelSide) {
	s.root = deleteNode(s.root, c.ID, rating.ContestantScore(c))
	c.Rating = side.Rating
	c.Matches = side.Matches
	s.put(c)
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}
