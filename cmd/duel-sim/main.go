package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/duelwall/internal/simulate"
	"github.com/okian/duelwall/pkg/logger"
)

// Default configuration constants.
const (
	defaultContestants = 40
	defaultRounds      = 5000
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		adminToken  = flag.String("token", os.Getenv("DUELWALL_ADMIN_TOKEN"), "Admin bearer token")
		contestants = flag.Int("contestants", defaultContestants, "Synthetic roster size")
		rounds      = flag.Int("rounds", defaultRounds, "Number of votes to cast")
		workers     = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent voters")
		tieRate     = flag.Float64("ties", 0.05, "Probability that a vote is a tie")
		spread      = flag.Float64("spread", 1.0, "Standard deviation of hidden log-strengths")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for strengths and votes")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		verbose     = flag.Bool("verbose", false, "Log failed rounds")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithFormat(*logFormat), logger.WithLevel(level)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	report, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:     *baseURL,
		AdminToken:  *adminToken,
		Contestants: *contestants,
		Rounds:      *rounds,
		Workers:     *workers,
		TieRate:     *tieRate,
		Spread:      *spread,
		Seed:        *seed,
		Timeout:     *timeout,
		Verbose:     *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}

	fmt.Printf("roster: %d seeded, %d skipped by the server\n", report.Seeded, report.Unseeded)
	fmt.Printf("votes: %d ok, %d duplicate, %d failed in %s (%.0f/s)\n",
		report.Successful, report.Duplicate, report.Failed, report.Duration.Round(time.Millisecond),
		float64(report.Submitted)/report.Duration.Seconds())
	fmt.Printf("spearman(strength, leaderboard) = %.3f\n", report.Spearman)
	for _, e := range report.Leaderboard[:min(10, len(report.Leaderboard))] {
		fmt.Printf("%3d. %-10s rating=%d matches=%d score=%.1f\n", e.Rank, e.Name, e.Rating, e.Matches, e.Score)
	}
}
