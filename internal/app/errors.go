package service

import (
	"errors"

	repository "github.com/okian/duelwall/internal/adapters/repository"
)

var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("service already started")
	// ErrInvalidDuel is returned for malformed duel submissions.
	ErrInvalidDuel = errors.New("invalid duel")
	// ErrInvalidContestant is returned for malformed roster edits.
	ErrInvalidContestant = errors.New("invalid contestant")
	// ErrDuplicateSubmission is returned when a submission id was already recorded.
	ErrDuplicateSubmission = repository.ErrDuplicateSubmission
	// ErrInvalidLimit is returned for leaderboard sizes outside 1..max.
	ErrInvalidLimit = repository.ErrInvalidLimit
)
