// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/domain/model"
)

const maxRosterBodyBytes = 1 << 20

// RosterDependencies defines the interface for admin roster edits.
type RosterDependencies interface {
	SeedRoster(ctx context.Context, csv string) (service.SeedReport, error)
	UpdateContestant(ctx context.Context, id int64, name, imageRef string) (model.Contestant, error)
	DeleteContestant(ctx context.Context, id int64) error
}

// RosterHandler handles admin roster requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

type updateRequest struct {
	Name     string `json:"name"`
	ImageRef string `json:"image_ref"`
}

// HandleSeed handles POST /api/admin/roster with a CSV body.
func (h *RosterHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.seed_roster"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRosterBodyBytes))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	report, err := h.deps.SeedRoster(r.Context(), string(body))
	if err != nil {
		writeError(w, Wrap(op, err), report.Warnings...)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleUpdate handles PATCH /api/admin/roster/{id}.
func (h *RosterHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_contestant"

	id, err := pathID(r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var req updateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDuelBodyBytes)).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	c, err := h.deps.UpdateContestant(r.Context(), id, req.Name, req.ImageRef)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /api/admin/roster/{id}.
func (h *RosterHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_contestant"

	id, err := pathID(r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DeleteContestant(r.Context(), id); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
