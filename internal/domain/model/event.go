// Package model contains domain models passed between layers.
package model

import "time"

// EventKind classifies a roster event flowing through the queue.
type EventKind string

// Roster event kinds.
const (
	EventDuelRecorded  EventKind = "duel_recorded"
	EventRosterChanged EventKind = "roster_changed"
)

// RosterEvent is emitted after every committed change to the roster.
// Workers consume it to refresh derived views and fan it out.
type RosterEvent struct {
	EventID string      // unique id (uuid)
	Kind    EventKind   // what happened
	Duel    *DuelRecord // set for EventDuelRecorded
	Reason  string      // free-form detail for EventRosterChanged, e.g. "seed"
	TS      time.Time   // when the change was committed
}
