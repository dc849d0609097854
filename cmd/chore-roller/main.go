// The chore-roller periodically resets completed repeating chores and
// advances their due dates, so "weekly: hoover the stairs" reappears as
// pending in the next week instead of staying done forever.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"hearth/internal/backend"
	"hearth/internal/config"
	applog "hearth/internal/log"
	"hearth/internal/services"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentRoller,
		Handler: tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	})
	applog.SetDefault(logger)

	logger.Info("Starting chore-roller")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldBackend, cfg.DataBackend,
			applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}()

	roller := services.NewChoreRoller(result.Store)

	logger.Info("Chore roller configured",
		"interval", cfg.RollInterval,
		applog.FieldBackend, cfg.DataBackend)

	ticker := time.NewTicker(cfg.RollInterval)
	defer ticker.Stop()

	// Roll once on startup so a long-stopped roller catches up immediately.
	if count, err := roller.Roll(ctx, time.Now()); err != nil {
		logger.Error("Initial rollover failed", applog.FieldError, err)
	} else {
		logger.Info("Initial rollover complete", "rolled", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := roller.Roll(ctx, now)
				if err != nil {
					logger.Error("Periodic rollover failed", applog.FieldError, err)
					continue
				}
				logger.Info("Periodic rollover complete",
					"rolled", count,
					"next_check", now.Add(cfg.RollInterval).Format("15:04:05"))
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	logger.Info("Chore roller stopped")
}
