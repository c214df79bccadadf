// Package model contains domain models passed between layers.
package model

import "time"

// DefaultRating is the rating every new contestant starts with.
const DefaultRating = 1200

// Contestant is one roster entry. Callers pass it by value; no package
// keeps a reference across calls.
type Contestant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ImageRef  string    `json:"image_ref"`
	Rating    int       `json:"rating"`
	Matches   int       `json:"matches"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewContestant carries the fields needed to add a contestant to the roster.
type NewContestant struct {
	Name     string `json:"name"`
	ImageRef string `json:"image_ref"`
}
