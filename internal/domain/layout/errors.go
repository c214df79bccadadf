package layout

import "errors"

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("unknown layout mode")
