package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	repository "github.com/okian/duelwall/internal/adapters/repository"
	"github.com/okian/duelwall/internal/domain/matchmaking"
	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
	"github.com/okian/duelwall/pkg/logger"
	"github.com/okian/duelwall/pkg/metrics"
)

// NextDuel picks the next matchup from the current roster.
func (s *Service) NextDuel(ctx context.Context) (DuelTicket, error) {
	if err := s.running(); err != nil {
		return DuelTicket{}, err
	}

	roster, err := s.store.List(ctx)
	if err != nil {
		return DuelTicket{}, fmt.Errorf("list roster: %w", err)
	}

	s.rndMu.Lock()
	pair, err := matchmaking.SelectDuelPair(roster, s.rnd)
	s.rndMu.Unlock()

	metrics.RecordMatchmaking(err == nil)
	if err != nil {
		return DuelTicket{}, err
	}

	return DuelTicket{
		Ticket:   uuid.NewString(),
		Pair:     pair,
		IssuedAt: s.now(),
	}, nil
}

// SubmitDuel records a vote, persists both clamped ratings and queues a
// DuelRecorded event.
func (s *Service) SubmitDuel(ctx context.Context, sub DuelSubmission) (DuelResult, error) {
	if err := s.running(); err != nil {
		return DuelResult{}, err
	}
	if err := validateSubmission(sub); err != nil {
		return DuelResult{}, err
	}

	tracked := sub.SubmissionID != ""
	if tracked && s.deduper.SeenAndRecord(ctx, sub.SubmissionID) {
		metrics.RecordDuelDuplicate()
		return DuelResult{}, fmt.Errorf("submission %s: %w", sub.SubmissionID, ErrDuplicateSubmission)
	}

	var resolved rating.Result
	rec, err := s.store.RecordDuel(ctx, repository.DuelCommand{
		SubmissionID: sub.SubmissionID,
		AID:          sub.AID,
		BID:          sub.BID,
		Outcome:      sub.Outcome,
	}, func(a, b model.Contestant, outcome model.DuelOutcome) rating.Result {
		resolved = rating.Resolve(a, b, outcome, s.maxSwing)
		return resolved
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			metrics.RecordDuelDuplicate()
			return DuelResult{}, err
		}
		if tracked {
			s.deduper.Unrecord(ctx, sub.SubmissionID)
		}
		return DuelResult{}, err
	}

	metrics.RecordDuel(string(rec.Outcome), rec.A.Delta, rec.B.Delta, resolved.Clamped)
	if resolved.Clamped {
		s.logger.Debug(ctx, "rating movement clamped",
			logger.Int64("duel_id", rec.ID),
			logger.Int("raw_delta_a", resolved.Raw.DeltaA),
			logger.Int("raw_delta_b", resolved.Raw.DeltaB),
		)
	}

	s.enqueue(ctx, model.RosterEvent{
		Kind: model.EventDuelRecorded,
		Duel: &rec,
	})

	return DuelResult{Duel: rec, Raw: resolved.Raw, Clamped: resolved.Clamped}, nil
}

func validateSubmission(sub DuelSubmission) error {
	switch {
	case sub.AID <= 0 || sub.BID <= 0:
		return fmt.Errorf("%w: contestant ids must be positive", ErrInvalidDuel)
	case sub.AID == sub.BID:
		return fmt.Errorf("%w: a contestant cannot duel itself", ErrInvalidDuel)
	case !sub.Outcome.Valid():
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidDuel, sub.Outcome)
	}
	return nil
}

// enqueue hands an event to the workers. A full or closed queue only
// delays the next wall refresh, so failures are logged and dropped.
func (s *Service) enqueue(ctx context.Context, e model.RosterEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.TS.IsZero() {
		e.TS = s.now()
	}
	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		metrics.RecordErrorByComponent("service", "enqueue")
		s.logger.Warn(ctx, "dropping roster event",
			logger.String("event_id", e.EventID),
			logger.String("kind", string(e.Kind)),
			logger.Error(err),
		)
	}
}
