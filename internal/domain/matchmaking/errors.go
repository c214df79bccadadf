package matchmaking

import "errors"

// ErrInsufficientRoster is returned when fewer than two distinct
// contestants are available for a duel.
var ErrInsufficientRoster = errors.New("need at least two contestants to stage a duel")
