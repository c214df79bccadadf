package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/duelwall/pkg/logger"
)

// maxLeaderboardPage matches the server's default leaderboard cap.
const maxLeaderboardPage = 100

// Run seeds a synthetic roster, casts cfg.Rounds votes with cfg.Workers
// concurrent voters and compares the final leaderboard with the hidden
// strengths.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Get().Named("simulate")
	cfg.normalize()
	report := &Report{StartTime: time.Now()}

	log.Info(ctx, "starting duel simulation",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("contestants", cfg.Contestants),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
	)

	client := NewClient(cfg.BaseURL, cfg.AdminToken, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	roster := Generate(cfg.Contestants, cfg.Spread, cfg.Seed)
	ids, err := client.Seed(ctx, CSV(roster))
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}
	strength, unseeded := bindStrengths(roster, ids)
	report.Seeded = len(ids)
	report.Unseeded = unseeded
	if unseeded > 0 {
		log.Warn(ctx, "server skipped roster rows", logger.Int("unseeded", unseeded))
	}

	vote(ctx, cfg, client, strength, report, log)

	n := min(len(ids), maxLeaderboardPage)
	board, err := client.Leaderboard(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	report.Leaderboard = board

	// Leaderboard rank 1 is best, so correlate strength with -rank.
	hidden := make([]float64, 0, len(board))
	observed := make([]float64, 0, len(board))
	for _, e := range board {
		if s, ok := strength[e.ContestantID]; ok {
			hidden = append(hidden, s)
			observed = append(observed, -float64(e.Rank))
		}
	}
	report.Spearman = Spearman(hidden, observed)
	report.Duration = time.Since(report.StartTime)

	log.Info(ctx, "simulation finished",
		logger.Int("submitted", report.Submitted),
		logger.Int("successful", report.Successful),
		logger.Int("duplicate", report.Duplicate),
		logger.Int("failed", report.Failed),
		logger.Float64("spearman", report.Spearman),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

// vote fans cfg.Rounds next/submit cycles out over cfg.Workers goroutines.
func vote(ctx context.Context, cfg *Config, client *Client, strength map[int64]float64, report *Report, log logger.Logger) {
	var submitted, successful, duplicate, failed atomic.Int64

	rounds := make(chan struct{}, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := range cfg.Workers {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			rnd := rand.New(rand.NewPCG(cfg.Seed, worker+1))
			for range rounds {
				if ctx.Err() != nil {
					return
				}
				submitted.Add(1)
				err := round(ctx, client, strength, cfg.TieRate, rnd)
				switch {
				case err == nil:
					successful.Add(1)
				case errors.Is(err, ErrDuplicate):
					duplicate.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "round failed", logger.Error(err))
					}
				}
			}
		}(uint64(w))
	}

	func() {
		defer close(rounds)
		for range cfg.Rounds {
			select {
			case <-ctx.Done():
				return
			case rounds <- struct{}{}:
			}
		}
	}()
	wg.Wait()

	report.Submitted = int(submitted.Load())
	report.Successful = int(successful.Load())
	report.Duplicate = int(duplicate.Load())
	report.Failed = int(failed.Load())
}

// bindStrengths sets each contestant's server id and keys its hidden
// strength by that id. Rows the server did not insert are skipped and counted.
func bindStrengths(roster []Contestant, ids map[string]int64) (map[int64]float64, int) {
	strength := make(map[int64]float64, len(ids))
	unseeded := 0
	for i := range roster {
		id, ok := ids[roster[i].Name]
		if !ok {
			unseeded++
			continue
		}
		roster[i].ID = id
		strength[id] = roster[i].Strength
	}
	return strength, unseeded
}

func round(ctx context.Context, client *Client, strength map[int64]float64, tieRate float64, rnd RandomSource) error {
	t, err := client.Next(ctx)
	if err != nil {
		return err
	}
	winner := Vote(strength[t.Pair.A.ID], strength[t.Pair.B.ID], tieRate, rnd)
	return client.Submit(ctx, t, winner)
}

func (c *Config) normalize() {
	c.Workers = max(c.Workers, 1)
	c.Rounds = max(c.Rounds, 0)
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
