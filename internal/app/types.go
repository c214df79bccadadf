package service

import (
	"time"

	"github.com/okian/duelwall/internal/domain/layout"
	"github.com/okian/duelwall/internal/domain/model"
)

// DuelTicket is a matchup handed to a voter. The ticket doubles as the
// submission id for the vote.
type DuelTicket struct {
	Ticket   string         `json:"ticket"`
	Pair     model.DuelPair `json:"pair"`
	IssuedAt time.Time      `json:"issued_at"`
}

// DuelSubmission is a vote on a matchup. SubmissionID is optional; when
// set, replays of the same id are rejected.
type DuelSubmission struct {
	SubmissionID string
	AID          int64
	BID          int64
	Outcome      model.DuelOutcome
}

// DuelResult is a committed duel. Duel carries the clamped, persisted
// values; Raw is the unclamped Elo update.
type DuelResult struct {
	Duel    model.DuelRecord   `json:"duel"`
	Raw     model.RatingUpdate `json:"raw"`
	Clamped bool               `json:"clamped"`
}

// WallQuery selects a wall. The zero value is the default snapshot.
type WallQuery struct {
	Seed *uint32
	Mode layout.Mode
}

func (q WallQuery) isDefault() bool {
	return q.Seed == nil && (q.Mode == "" || q.Mode == layout.ModeAuto)
}

// Wall is a computed wall plus the parameters that produced it.
type Wall struct {
	Instances   []model.WallInstance `json:"wall"`
	Count       int                  `json:"count"`
	Mode        layout.Mode          `json:"mode"`
	Seed        uint32               `json:"seed"`
	Columns     int                  `json:"columns,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// SeedReport summarises a bulk roster import.
type SeedReport struct {
	Inserted    int                `json:"inserted"`
	Skipped     int                `json:"skipped"`
	Warnings    []string           `json:"warnings"`
	Contestants []model.Contestant `json:"contestants"`
}
