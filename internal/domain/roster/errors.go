package roster

import "errors"

var (
	// ErrEmpty is returned when the input holds no rows at all.
	ErrEmpty = errors.New("no rows provided")
	// ErrNoValidRows is returned when every row was rejected.
	ErrNoValidRows = errors.New("no valid rows found")
)
