// Package rating implements the pairwise Elo engine that ranks the roster.
//
// Every function is pure: inputs are plain values and nothing is retained
// between calls, so the package is safe for concurrent use.
package rating

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/duelwall/internal/domain/model"
)

// Engine constants.
const (
	MinK            = 8
	MaxK            = 32
	DefaultMaxSwing = 24

	eloScale           = 400.0
	uncertaintyPenalty = 40.0
)

// UpdateInput holds both sides of a duel for UpdateElo.
type UpdateInput struct {
	RatingA  int
	RatingB  int
	MatchesA int
	MatchesB int
	Outcome  model.DuelOutcome
}

// ClampedUpdate is a rating after a capped movement.
type ClampedUpdate struct {
	Rating int
	Delta  int
}

// Result is the authoritative outcome of a duel: the raw Elo update plus
// the clamped sides that get persisted.
type Result struct {
	Raw     model.RatingUpdate
	A       model.DuelSide
	B       model.DuelSide
	Clamped bool // true when either side hit the swing cap
}

// ExpectedScore returns the probability in (0,1) that rating beats opponentRating.
func ExpectedScore(rating, opponentRating int) float64 {
	exponent := float64(opponentRating-rating) / eloScale
	return 1 / (1 + math.Pow(10, exponent))
}

// KFactor returns the adjustment weight for a contestant with the given
// number of recorded matches. New entrants move the most.
func KFactor(matches int) int {
	dynamic := MaxK / math.Sqrt(float64(max(matches, 0)+1))
	return min(MaxK, max(MinK, int(roundHalfUp(dynamic))))
}

// UpdateElo computes new ratings for both sides, each with its own K.
// The exchange is not zero-sum when the K-factors differ. Unknown
// outcomes score as a tie.
func UpdateElo(in UpdateInput) model.RatingUpdate {
	expectedA := ExpectedScore(in.RatingA, in.RatingB)
	expectedB := ExpectedScore(in.RatingB, in.RatingA)

	actualA, actualB := 0.5, 0.5
	switch in.Outcome {
	case model.OutcomeA:
		actualA, actualB = 1, 0
	case model.OutcomeB:
		actualA, actualB = 0, 1
	}

	kA := float64(KFactor(in.MatchesA))
	kB := float64(KFactor(in.MatchesB))

	newA := int(roundHalfUp(float64(in.RatingA) + kA*(actualA-expectedA)))
	newB := int(roundHalfUp(float64(in.RatingB) + kB*(actualB-expectedB)))

	return model.RatingUpdate{
		RatingA: newA,
		RatingB: newB,
		DeltaA:  newA - in.RatingA,
		DeltaB:  newB - in.RatingB,
	}
}

// ClampMovement caps the magnitude of a single update at maxSwing.
// A non-positive maxSwing falls back to DefaultMaxSwing.
func ClampMovement(delta, maxSwing float64) float64 {
	if maxSwing <= 0 {
		maxSwing = DefaultMaxSwing
	}
	return math.Max(-maxSwing, math.Min(maxSwing, delta))
}

// ApplyClampedUpdate moves rating by the clamped delta. The returned delta
// is the one callers must expose and persist.
func ApplyClampedUpdate(rating, delta, maxSwing int) ClampedUpdate {
	clamped := int(ClampMovement(float64(delta), float64(maxSwing)))
	return ClampedUpdate{Rating: rating + clamped, Delta: clamped}
}

// Resolve runs UpdateElo and then clamps each side independently. The
// clamped values are authoritative; Raw is kept for diagnostics only.
// Both sides gain one recorded match.
func Resolve(a, b model.Contestant, outcome model.DuelOutcome, maxSwing int) Result {
	raw := UpdateElo(UpdateInput{
		RatingA:  a.Rating,
		RatingB:  b.Rating,
		MatchesA: a.Matches,
		MatchesB: b.Matches,
		Outcome:  outcome,
	})

	nextA := ApplyClampedUpdate(a.Rating, raw.DeltaA, maxSwing)
	nextB := ApplyClampedUpdate(b.Rating, raw.DeltaB, maxSwing)

	return Result{
		Raw:     raw,
		A:       model.DuelSide{ID: a.ID, Rating: nextA.Rating, Delta: nextA.Delta, Matches: a.Matches + 1},
		B:       model.DuelSide{ID: b.ID, Rating: nextB.Rating, Delta: nextB.Delta, Matches: b.Matches + 1},
		Clamped: nextA.Delta != raw.DeltaA || nextB.Delta != raw.DeltaB,
	}
}

// ConservativeScore discounts rating by an uncertainty penalty that shrinks
// as matches grow. It never exceeds rating.
func ConservativeScore(rating, matches int) float64 {
	penalty := uncertaintyPenalty / math.Sqrt(float64(max(matches, 0)+1))
	return float64(rating) - penalty
}

// ContestantScore is ConservativeScore for a roster entry.
func ContestantScore(c model.Contestant) float64 {
	return ConservativeScore(c.Rating, c.Matches)
}

// SortByConservativeScore returns a copy of list ordered best first.
// Equal scores keep their input order.
func SortByConservativeScore(list []model.Contestant) []model.Contestant {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b model.Contestant) int {
		return cmp.Compare(ContestantScore(b), ContestantScore(a))
	})
	return out
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
