package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/duelwall/internal/adapters/http/api"
	"github.com/okian/duelwall/internal/adapters/mq/publisher"
	repository "github.com/okian/duelwall/internal/adapters/repository"
	app "github.com/okian/duelwall/internal/app"
	"github.com/okian/duelwall/internal/config"
	"github.com/okian/duelwall/pkg/logger"
	"github.com/okian/duelwall/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr since the logger depends on the config
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "duelwall exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	pub := newPublisher(ctx, cfg)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithPublisher(pub),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxSwing(cfg.MaxSwing),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		app.WithWallSeed(cfg.WallSeed),
		app.WithMatchmakingSeed(cfg.MatchmakingSeed),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		pub.Close()
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)

	srv := newHTTPServer(ctx, cfg, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// newStore picks Postgres when a database URL is configured and the
// in-memory store otherwise.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Get().Info(ctx, "using in-memory roster store")
		return repository.NewMemoryStore(), nil
	}
	return repository.NewPostgresStore(ctx, cfg.DatabaseURL)
}

// newPublisher connects to NATS when configured. A broker that cannot be
// reached disables fan-out rather than blocking startup.
func newPublisher(ctx context.Context, cfg *config.Config) publisher.Publisher {
	if cfg.NATSURL == "" {
		return publisher.Noop{}
	}
	p, err := publisher.NewNATSPublisher(ctx, cfg.NATSURL)
	if err != nil {
		logger.Get().Warn(ctx, "event publishing disabled", logger.String("nats_url", cfg.NATSURL), logger.Error(err))
		return publisher.Noop{}
	}
	return p
}

func newHTTPServer(ctx context.Context, cfg *config.Config, deps api.Dependencies) *http.Server {
	apiServer := api.NewServer(deps,
		api.WithAdminToken(cfg.AdminToken),
		api.WithLogger(logger.Get().Named("http")),
	)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater samples memory and goroutine counts until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
