package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/duelwall/internal/adapters/mq/publisher"
	"github.com/okian/duelwall/internal/domain/layout"
	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/pkg/logger"
	"github.com/okian/duelwall/pkg/metrics"
)

// wallRefreshed is the payload published after every snapshot swap.
type wallRefreshed struct {
	Count       int         `json:"count"`
	Mode        layout.Mode `json:"mode"`
	Seed        uint32      `json:"seed"`
	Cause       string      `json:"cause"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Wall returns the default snapshot, or computes a fresh wall when q asks
// for a seed override or a specific mode.
func (s *Service) Wall(ctx context.Context, q WallQuery) (Wall, error) {
	if err := s.running(); err != nil {
		return Wall{}, err
	}

	if q.isDefault() {
		if w := s.wall.Load(); w != nil {
			return *w, nil
		}
		w, err := s.refreshWall(ctx)
		if err != nil {
			return Wall{}, err
		}
		return *w, nil
	}

	roster, err := s.store.List(ctx)
	if err != nil {
		return Wall{}, fmt.Errorf("list roster: %w", err)
	}
	opts := s.defaultLayout()
	if q.Seed != nil {
		opts = append(opts, layout.WithSeedOverride(*q.Seed))
	}
	opts = append(opts, layout.WithMode(q.Mode))
	w := s.computeWall(roster, opts)
	return *w, nil
}

// refreshWall recomputes the default wall from the store and swaps it in.
// Refreshes are serialised so a slow one never overwrites a newer wall.
func (s *Service) refreshWall(ctx context.Context) (*Wall, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	roster, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	w := s.computeWall(roster, s.defaultLayout())
	s.wall.Store(w)
	metrics.RecordWallRefresh(w.Count)
	return w, nil
}

func (s *Service) computeWall(roster []model.Contestant, opts []layout.Option) *Wall {
	start := time.Now()
	res := layout.Plan(roster, opts...)
	metrics.RecordWallLayout(string(res.Mode), float64(time.Since(start).Microseconds())/1000)

	return &Wall{
		Instances:   res.Instances,
		Count:       len(res.Instances),
		Mode:        res.Mode,
		Seed:        res.Seed,
		Columns:     res.Columns,
		GeneratedAt: s.now().UTC(),
	}
}

// Handle consumes roster events from the worker pool: it refreshes the
// wall snapshot and fans the change out to subscribers.
func (s *Service) Handle(ctx context.Context, e model.RosterEvent) error {
	switch e.Kind {
	case model.EventDuelRecorded:
		if e.Duel != nil {
			s.publish(ctx, publisher.SubjectDuelRecorded(e.Duel.ID), e.Duel)
		}
	case model.EventRosterChanged:
		s.publish(ctx, publisher.SubjectRosterChanged, rosterChanged{
			EventID: e.EventID,
			Reason:  e.Reason,
			TS:      e.TS,
		})
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}

	w, err := s.refreshWall(ctx)
	if err != nil {
		return err
	}
	s.publish(ctx, publisher.SubjectWallRefreshed, wallRefreshed{
		Count:       w.Count,
		Mode:        w.Mode,
		Seed:        w.Seed,
		Cause:       string(e.Kind),
		GeneratedAt: w.GeneratedAt,
	})
	return nil
}

type rosterChanged struct {
	EventID string    `json:"event_id"`
	Reason  string    `json:"reason"`
	TS      time.Time `json:"ts"`
}

// publish is best effort; the store is the source of truth.
func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn(ctx, "publish failed",
			logger.String("subject", subject),
			logger.Error(err),
		)
	}
}
