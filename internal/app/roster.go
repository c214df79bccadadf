package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/roster"
	"github.com/okian/duelwall/internal/domain/types"
	"github.com/okian/duelwall/pkg/logger"
	"github.com/okian/duelwall/pkg/metrics"
)

// Leaderboard returns the top n contestants by conservative score.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if n < 1 || n > s.maxLeaderboardLimit {
		return nil, fmt.Errorf("%w: limit must be within 1..%d", ErrInvalidLimit, s.maxLeaderboardLimit)
	}
	return s.store.TopN(ctx, n)
}

// Rank returns the leaderboard entry for one contestant.
func (s *Service) Rank(ctx context.Context, id int64) (types.Entry, error) {
	if err := s.running(); err != nil {
		return types.Entry{}, err
	}
	return s.store.Rank(ctx, id)
}

// SeedRoster imports "name,image_url" CSV rows. Rejected rows are reported
// as warnings; the import fails only when no row survives.
func (s *Service) SeedRoster(ctx context.Context, csv string) (SeedReport, error) {
	if err := s.running(); err != nil {
		return SeedReport{}, err
	}

	entries, warnings, err := roster.Validate(csv)
	if warnings == nil {
		warnings = []string{}
	}
	if err != nil {
		metrics.RecordRosterImport(0, len(warnings))
		return SeedReport{Skipped: len(warnings), Warnings: warnings}, err
	}

	inserted, err := s.store.Insert(ctx, entries)
	if err != nil {
		return SeedReport{}, fmt.Errorf("insert roster: %w", err)
	}
	metrics.RecordRosterImport(len(inserted), len(warnings))

	s.logger.Info(ctx, "roster seeded",
		logger.Int("inserted", len(inserted)),
		logger.Int("skipped", len(warnings)),
	)
	s.enqueue(ctx, model.RosterEvent{
		Kind:   model.EventRosterChanged,
		Reason: "seed",
	})

	return SeedReport{
		Inserted:    len(inserted),
		Skipped:     len(warnings),
		Warnings:    warnings,
		Contestants: inserted,
	}, nil
}

// UpdateContestant renames a contestant or swaps its image. Empty fields
// keep their current value.
func (s *Service) UpdateContestant(ctx context.Context, id int64, name, imageRef string) (model.Contestant, error) {
	if err := s.running(); err != nil {
		return model.Contestant{}, err
	}

	name, imageRef = strings.TrimSpace(name), strings.TrimSpace(imageRef)
	switch {
	case name == "" && imageRef == "":
		return model.Contestant{}, fmt.Errorf("%w: nothing to update", ErrInvalidContestant)
	case imageRef != "" && !roster.ValidImageRef(imageRef):
		return model.Contestant{}, fmt.Errorf("%w: image URL must be an absolute http(s) URL", ErrInvalidContestant)
	}

	c, err := s.store.Update(ctx, id, name, imageRef)
	if err != nil {
		return model.Contestant{}, err
	}
	s.enqueue(ctx, model.RosterEvent{
		Kind:   model.EventRosterChanged,
		Reason: "update:" + strconv.FormatInt(id, 10),
	})
	return c, nil
}

// DeleteContestant removes a contestant and its duel history.
func (s *Service) DeleteContestant(ctx context.Context, id int64) error {
	if err := s.running(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.enqueue(ctx, model.RosterEvent{
		Kind:   model.EventRosterChanged,
		Reason: "delete:" + strconv.FormatInt(id, 10),
	})
	return nil
}
