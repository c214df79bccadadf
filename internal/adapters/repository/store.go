// Package repository persists the roster and the duel history.
package repository

import (
	"context"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	"github.com/okian/duelwall/internal/domain/types"
)

// DuelCommand asks the store to commit one human decision.
type DuelCommand struct {
	SubmissionID string
	AID          int64
	BID          int64
	Outcome      model.DuelOutcome
}

// Resolver turns the current state of both contestants into the values to
// persist. It runs while the store holds both rows, so it must not block.
type Resolver func(a, b model.Contestant, outcome model.DuelOutcome) rating.Result

// Store provides read/write access to the roster.
type Store interface {
	// List returns every contestant ordered by id.
	List(ctx context.Context) ([]model.Contestant, error)
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id int64) (model.Contestant, error)
	// Insert adds contestants at the default rating with no matches.
	Insert(ctx context.Context, entries []model.NewContestant) ([]model.Contestant, error)
	// Update renames a contestant or swaps its image. Empty values keep
	// the current field.
	Update(ctx context.Context, id int64, name, imageRef string) (model.Contestant, error)
	// Delete removes a contestant and every duel it took part in.
	Delete(ctx context.Context, id int64) error

	// RecordDuel reads both contestants, applies resolve and writes both
	// ratings and the duel atomically.
	RecordDuel(ctx context.Context, cmd DuelCommand, resolve Resolver) (model.DuelRecord, error)

	// TopN returns the best n contestants by conservative score.
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	// Rank returns the leaderboard entry for one contestant.
	Rank(ctx context.Context, id int64) (types.Entry, error)
	// Count returns the roster size.
	Count(ctx context.Context) (int, error)

	Close() error
}
