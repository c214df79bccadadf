// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/duelwall/internal/adapters/http/swagger"
	"github.com/okian/duelwall/internal/domain/types"
	"github.com/okian/duelwall/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	DuelDependencies
	WallDependencies
	LeaderboardDependencies
	RankDependencies
	RosterDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	duelsHandler       *DuelsHandler
	wallHandler        *WallHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	rosterHandler      *RosterHandler

	adminToken string
	logger     logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAdminToken protects the admin routes with a bearer token. An empty
// token leaves them open.
func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		duelsHandler:       NewDuelsHandler(deps),
		wallHandler:        NewWallHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		rosterHandler:      NewRosterHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Router builds the chi router with every route attached.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.metrics)
	r.Get("/stats", s.statsHandler.HandleStats)
	swagger.Register(ctx, r)

	r.Route("/api", func(r chi.Router) {
		r.Get("/duels/next", s.duelsHandler.HandleNext)
		r.Post("/duels", s.duelsHandler.HandleSubmit)
		r.Get("/wall", s.wallHandler.HandleGetWall)
		r.Get("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
		r.Get("/rank/{id}", s.rankHandler.HandleGetRank)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(s.adminToken))
			r.Post("/roster", s.rosterHandler.HandleSeed)
			r.Patch("/roster/{id}", s.rosterHandler.HandleUpdate)
			r.Delete("/roster/{id}", s.rosterHandler.HandleDelete)
		})
	})

	return r
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeNoStore writes a response that must never be served from a cache.
func writeNoStore(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, v)
}

func writeError(w http.ResponseWriter, err error, details ...string) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Details: details})
}
