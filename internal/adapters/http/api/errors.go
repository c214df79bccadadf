package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/duelwall/internal/adapters/repository"
	service "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/domain/layout"
	"github.com/okian/duelwall/internal/domain/matchmaking"
	"github.com/okian/duelwall/internal/domain/roster"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)

// opError ties an error to the handler operation that produced it. Kind is
// the sentinel used for status mapping; Err is the underlying cause.
type opError struct {
	Op   string
	Kind error
	Err  error
}

func (e *opError) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil && !errors.Is(e.Err, e.Kind):
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op
}

func (e *opError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) error {
	return &opError{Op: op, Kind: kind}
}

// Wrap attaches op to err and keeps err's own kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{Op: op, Err: err}
}

// WrapKind attaches op and an explicit kind to err.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return &opError{Op: op, Kind: kind, Err: err}
}

// statusFor maps an error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, service.ErrInvalidDuel):
		return http.StatusBadRequest, "invalid_duel"
	case errors.Is(err, service.ErrInvalidContestant):
		return http.StatusBadRequest, "invalid_contestant"
	case errors.Is(err, layout.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_layout"
	case errors.Is(err, roster.ErrEmpty), errors.Is(err, roster.ErrNoValidRows):
		return http.StatusBadRequest, "invalid_roster"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, matchmaking.ErrInsufficientRoster):
		return http.StatusConflict, "insufficient_roster"
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate_submission"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
