// Package simulate drives a running duelwall server with synthetic voters
// and measures how well the leaderboard recovers their hidden preferences.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	AdminToken  string        // Bearer token for the admin routes
	Contestants int           // Synthetic roster size
	Rounds      int           // Number of votes to cast
	Workers     int           // Number of concurrent voters
	TieRate     float64       // Probability a vote is a tie
	Spread      float64       // Standard deviation of hidden log-strengths
	Seed        uint64        // Seed for strengths and votes
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Log every failed request
}

// Contestant is a synthetic roster entry with its hidden strength.
type Contestant struct {
	ID       int64
	Name     string
	ImageRef string
	Strength float64
}

// Entry mirrors the leaderboard wire shape.
type Entry struct {
	Rank         int     `json:"rank"`
	ContestantID int64   `json:"contestant_id"`
	Name         string  `json:"name"`
	Rating       int     `json:"rating"`
	Matches      int     `json:"matches"`
	Score        float64 `json:"score"`
}

// Report holds run statistics.
type Report struct {
	Seeded     int
	Unseeded   int // generated rows the server did not insert
	Submitted  int
	Successful int
	Duplicate  int
	Failed     int
	// Spearman is the rank correlation between hidden strength and the
	// final leaderboard, in [-1, 1].
	Spearman    float64
	Leaderboard []Entry
	StartTime   time.Time
	Duration    time.Duration
}
