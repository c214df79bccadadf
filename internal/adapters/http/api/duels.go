// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/domain/model"
)

const maxDuelBodyBytes = 1 << 12

// DuelDependencies defines the interface for matchmaking and voting.
type DuelDependencies interface {
	NextDuel(ctx context.Context) (service.DuelTicket, error)
	SubmitDuel(ctx context.Context, sub service.DuelSubmission) (service.DuelResult, error)
}

// DuelsHandler handles duel requests.
type DuelsHandler struct {
	deps DuelDependencies
}

// NewDuelsHandler creates a new duels handler.
func NewDuelsHandler(deps DuelDependencies) *DuelsHandler {
	return &DuelsHandler{deps: deps}
}

// duelRequest mirrors the OpenAPI schema for POST /api/duels.
type duelRequest struct {
	SubmissionID string `json:"submission_id"`
	AID          int64  `json:"a_id"`
	BID          int64  `json:"b_id"`
	Winner       string `json:"winner"`
}

func (d duelRequest) submission() (service.DuelSubmission, error) {
	outcome, err := model.ParseOutcome(d.Winner)
	if err != nil {
		return service.DuelSubmission{}, err
	}
	return service.DuelSubmission{
		SubmissionID: strings.TrimSpace(d.SubmissionID),
		AID:          d.AID,
		BID:          d.BID,
		Outcome:      outcome,
	}, nil
}

// HandleNext handles GET /api/duels/next requests.
func (h *DuelsHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_duel"

	ticket, err := h.deps.NextDuel(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeNoStore(w, http.StatusOK, ticket)
}

// HandleSubmit handles POST /api/duels requests.
func (h *DuelsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_duel"

	var req duelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDuelBodyBytes)).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	sub, err := req.submission()
	if err != nil {
		writeError(w, WrapKind(op, service.ErrInvalidDuel, err))
		return
	}

	res, err := h.deps.SubmitDuel(r.Context(), sub)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeNoStore(w, http.StatusOK, res)
}
