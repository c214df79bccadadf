// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidOutcome is returned by ParseOutcome for unknown values.
var ErrInvalidOutcome = errors.New("invalid duel outcome")

// DuelOutcome is the human decision for a duel.
type DuelOutcome string

// Duel outcomes.
const (
	OutcomeA   DuelOutcome = "a"
	OutcomeB   DuelOutcome = "b"
	OutcomeTie DuelOutcome = "tie"
)

// Valid reports whether o is one of the known outcomes.
func (o DuelOutcome) Valid() bool {
	switch o {
	case OutcomeA, OutcomeB, OutcomeTie:
		return true
	}
	return false
}

// ParseOutcome converts a wire value into a DuelOutcome.
func ParseOutcome(s string) (DuelOutcome, error) {
	o := DuelOutcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", ErrInvalidOutcome
	}
	return o, nil
}

// DuelPair is a matchup. A.ID never equals B.ID.
type DuelPair struct {
	A Contestant `json:"a"`
	B Contestant `json:"b"`
}

// RatingUpdate is the raw result of an Elo update for both sides.
type RatingUpdate struct {
	RatingA int `json:"rating_a"`
	RatingB int `json:"rating_b"`
	DeltaA  int `json:"delta_a"`
	DeltaB  int `json:"delta_b"`
}

// DuelSide is the committed state of one contestant after a duel.
type DuelSide struct {
	ID      int64 `json:"id"`
	Rating  int   `json:"rating"`
	Delta   int   `json:"delta"`
	Matches int   `json:"matches"`
}

// DuelRecord is a committed duel: both sides after the clamped update plus
// the outcome. WinnerID is nil on a tie.
type DuelRecord struct {
	ID           int64       `json:"id"`
	SubmissionID string      `json:"submission_id,omitempty"`
	Outcome      DuelOutcome `json:"outcome"`
	WinnerID     *int64      `json:"winner_id,omitempty"`
	A            DuelSide    `json:"a"`
	B            DuelSide    `json:"b"`
	CreatedAt    time.Time   `json:"created_at"`
}

// WinnerFor returns the winning contestant id for the outcome, nil on a tie.
func WinnerFor(outcome DuelOutcome, aID, bID int64) *int64 {
	switch outcome {
	case OutcomeA:
		return &aID
	case OutcomeB:
		return &bID
	}
	return nil
}
