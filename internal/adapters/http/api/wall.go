// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/domain/layout"
)

// WallDependencies defines the interface for wall reads.
type WallDependencies interface {
	Wall(ctx context.Context, q service.WallQuery) (service.Wall, error)
}

// WallHandler handles wall requests.
type WallHandler struct {
	deps WallDependencies
}

// NewWallHandler creates a new wall handler.
func NewWallHandler(deps WallDependencies) *WallHandler {
	return &WallHandler{deps: deps}
}

// HandleGetWall handles GET /api/wall?seed=&layout= requests.
func (h *WallHandler) HandleGetWall(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_wall"

	var q service.WallQuery
	if raw := r.URL.Query().Get("seed"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		seed := uint32(v)
		q.Seed = &seed
	}
	mode, err := layout.ParseMode(r.URL.Query().Get("layout"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	q.Mode = mode

	wall, err := h.deps.Wall(r.Context(), q)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeNoStore(w, http.StatusOK, wall)
}
