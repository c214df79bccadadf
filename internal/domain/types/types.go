// Package types contains common types used across the application
package types

import "github.com/okian/duelwall/internal/domain/model"

// Entry represents a leaderboard entry
type Entry struct {
	Rank         int     `json:"rank"`
	ContestantID int64   `json:"contestant_id"`
	Name         string  `json:"name"`
	ImageRef     string  `json:"image_ref"`
	Rating       int     `json:"rating"`
	Matches      int     `json:"matches"`
	Score        float64 `json:"score"`
}

// NewEntry builds a leaderboard entry for c at the given 1-based rank.
func NewEntry(rank int, c model.Contestant, score float64) Entry {
	return Entry{
		Rank:         rank,
		ContestantID: c.ID,
		Name:         c.Name,
		ImageRef:     c.ImageRef,
		Rating:       c.Rating,
		Matches:      c.Matches,
		Score:        score,
	}
}
