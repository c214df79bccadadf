// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, id int64) (Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /api/rank/{id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"

	id, err := pathID(r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := h.deps.Rank(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeNoStore(w, http.StatusOK, entry)
}

// pathID reads the positive {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
