package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/app"
	"github.com/noah-isme/branch-digest/internal/branch"
	"github.com/noah-isme/branch-digest/internal/config"
	"github.com/noah-isme/branch-digest/internal/entry"
	"github.com/noah-isme/branch-digest/internal/obs"
	"github.com/noah-isme/branch-digest/internal/report"
)

func main() {
	days := flag.Int("days", 7, "number of past days to seed")
	reset := flag.Bool("reset", false, "clear the history before seeding")
	flag.Parse()

	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL")).With().Str("service", "seeder").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	saved, err := run(context.Background(), cfg, logger, *days, *reset)
	if err != nil {
		logger.Error().Err(err).Int("reports", saved).Msg("seeding failed")
		os.Exit(1)
	}
	logger.Info().Int("reports", saved).Int("days", *days).Str("backend", cfg.HistoryBackend).Msg("seeding completed")
}

// run seeds one report per branch per day and returns how many were saved. Dependencies
// are closed before it returns, on success or failure.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, days int, reset bool) (saved int, err error) {
	deps, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		return 0, fmt.Errorf("initialise dependencies: %w", err)
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close dependencies: %w", closeErr))
		}
	}()

	if reset {
		if err := deps.Store.Clear(ctx); err != nil {
			return 0, fmt.Errorf("clear history: %w", err)
		}
	}

	loc := cfg.Location()
	start := time.Now().In(loc).AddDate(0, 0, -days)
	var clock time.Time
	svc := &entry.Service{
		Store:    deps.Store,
		Now:      func() time.Time { return clock },
		Location: loc,
		Logger:   logger,
	}

	for day := 0; day < days; day++ {
		closing := time.Date(start.Year(), start.Month(), start.Day()+day, 22, 0, 0, 0, loc)
		for i, b := range branch.All() {
			clock = closing.Add(time.Duration(i) * time.Minute)
			result, err := svc.Submit(ctx, b, sampleForm(day, i))
			if err != nil {
				return saved, fmt.Errorf("seed %s: %w", b, err)
			}
			if !result.Saved {
				return saved, fmt.Errorf("seed %s: report not saved", b)
			}
			saved++
		}
	}
	return saved, nil
}

// sampleForm produces plausible closing figures that vary by day and branch.
func sampleForm(day, branchIndex int) report.Form {
	trans := 40 + (day*7+branchIndex*13)%60
	qty := trans + trans/2 + (day+branchIndex)%9
	amount := float64(qty)*83.5 + float64((day*31+branchIndex*17)%100)/4
	return report.Form{
		Qty:          fmt.Sprint(qty),
		Amount:       fmt.Sprintf("%.2f", amount),
		Transactions: fmt.Sprint(trans),
	}
}
