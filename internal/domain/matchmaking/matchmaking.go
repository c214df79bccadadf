// Package matchmaking picks the next duel from a roster snapshot.
//
// Selection favours contestants with few recorded matches and keeps the
// matchup competitively close. Every random choice goes through a caller
// supplied RandomSource so tests can drive it deterministically.
package matchmaking

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/duelwall/internal/domain/model"
	"github.com/okian/duelwall/internal/domain/rating"
)

// Selection tuning.
const (
	exposurePoolSize = 6
	shortlistSize    = 4
	matchesGapWeight = 12
	lowMatchWeight   = 6
	swapThreshold    = 0.5
)

// RandomSource yields uniform floats in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type scoredCandidate struct {
	candidate model.Contestant
	score     float64
}

// SelectDuelPair picks a primary from the least-exposed contestants and
// an opponent from its closest matchups. A and B are swapped at random so
// neither display slot is biased.
func SelectDuelPair(roster []model.Contestant, rnd RandomSource) (model.DuelPair, error) {
	if len(roster) < 2 {
		return model.DuelPair{}, ErrInsufficientRoster
	}

	byMatches := slices.Clone(roster)
	slices.SortStableFunc(byMatches, func(a, b model.Contestant) int {
		return cmp.Compare(a.Matches, b.Matches)
	})
	pool := byMatches[:min(exposurePoolSize, len(byMatches))]
	primary := pickRandom(pool, rnd)

	scored := make([]scoredCandidate, 0, len(roster)-1)
	for _, c := range roster {
		if c.ID == primary.ID {
			continue
		}
		scored = append(scored, scoredCandidate{candidate: c, score: CandidateScore(primary, c)})
	}
	if len(scored) == 0 {
		return model.DuelPair{}, ErrInsufficientRoster
	}
	slices.SortStableFunc(scored, func(a, b scoredCandidate) int {
		return cmp.Compare(a.score, b.score)
	})

	shortlist := scored[:min(shortlistSize, len(scored))]
	opponent := scored[0].candidate
	if len(shortlist) > 0 {
		opponent = pickRandom(shortlist, rnd).candidate
	}

	pair := model.DuelPair{A: primary, B: opponent}
	if rnd.Float64() < swapThreshold {
		pair = model.DuelPair{A: opponent, B: primary}
	}
	return pair, nil
}

// CandidateScore rates how interesting a matchup is; lower is closer.
func CandidateScore(primary, candidate model.Contestant) float64 {
	eloGap := math.Abs(float64(candidate.Rating - primary.Rating))
	matchesGap := math.Abs(float64(candidate.Matches - primary.Matches))
	lowMatchBias := float64(min(primary.Matches, candidate.Matches))
	conservativeGap := math.Abs(rating.ContestantScore(candidate) - rating.ContestantScore(primary))

	return eloGap + matchesGap*matchesGapWeight + lowMatchBias*lowMatchWeight + conservativeGap
}

func pickRandom[T any](items []T, rnd RandomSource) T {
	idx := int(math.Floor(rnd.Float64() * float64(len(items))))
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return items[idx]
}
