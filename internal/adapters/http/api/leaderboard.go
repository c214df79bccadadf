// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

const defaultLeaderboardLimit = 10

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, n int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard?limit=N requests. The
// upper bound on N is enforced by the service.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"

	n := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	entries, err := h.deps.Leaderboard(r.Context(), n)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeNoStore(w, http.StatusOK, entries)
}
