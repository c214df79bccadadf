// Package config defines service configuration and its loader.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/duelwall/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AdminToken guards the roster admin routes. Empty leaves them open.
	AdminToken string `koanf:"admin_token"`

	// DatabaseURL selects Postgres. Empty keeps the roster in memory.
	DatabaseURL string `koanf:"database_url"`

	// NATSURL enables event fan-out. Empty disables publishing.
	NATSURL string `koanf:"nats_url"`

	// MaxSwing caps how far one duel can move a rating.
	MaxSwing int `koanf:"max_swing"`

	// WorkerCount sets the number of background event workers.
	WorkerCount int `koanf:"worker_count"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// WallSeed is XORed into the default wall seed. Zero means none.
	WallSeed uint32 `koanf:"wall_seed"`

	// MatchmakingSeed seeds pair selection. Zero seeds from the clock.
	MatchmakingSeed uint64 `koanf:"matchmaking_seed"`
}

// New returns a Config with defaults. The context is reserved for loaders
// that need it.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxSwing:            rating.DefaultMaxSwing,
		WorkerCount:         runtime.NumCPU(),
		EventQueueSize:      1024,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxSwing <= 0:
		return fmt.Errorf("%w: max_swing must be positive, got %d", ErrInvalidConfig, c.MaxSwing)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
