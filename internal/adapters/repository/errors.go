package repository

import "errors"

// Sentinel kinds for roster store errors.
var (
	ErrNotFound     = errors.New("contestant not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrSameSide     = errors.New("duel needs two distinct contestants")
	ErrEmptyField   = errors.New("name and image ref are required")
)

// ErrDuplicateSubmission is returned when a submission id was already committed.
var ErrDuplicateSubmission = errors.New("duel submission already recorded")
