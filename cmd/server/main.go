// Package main is the entry point for the Foresight forecast evaluation
// service. It serves historical prices, short-horizon forecasts, and
// train/test evaluation metrics for the symbols in its dataset.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/foresightlab/foresight/internal/clients/marketdata"
	"github.com/foresightlab/foresight/internal/config"
	"github.com/foresightlab/foresight/internal/database"
	"github.com/foresightlab/foresight/internal/dataset"
	"github.com/foresightlab/foresight/internal/evaluation"
	"github.com/foresightlab/foresight/internal/scheduler"
	"github.com/foresightlab/foresight/internal/server"
	"github.com/foresightlab/foresight/pkg/logger"
)

func main() {
	// Load configuration first to get the log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("dataset_dir", cfg.DatasetDir).Msg("Starting Foresight")

	// Cache database for remotely fetched series. Rebuildable, so it runs
	// on the fast cache profile.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	seriesCache, err := dataset.NewSeriesCache(cacheDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize series cache")
	}

	store := dataset.NewStore(cfg.DatasetDir, log)

	// The remote fallback only exists when an API key is configured;
	// without one the service is dataset-only.
	var remote *marketdata.Client
	if cfg.MarketDataAPIKey != "" {
		remote = marketdata.NewClient(cfg.MarketDataAPIKey, seriesCache, log)
	} else {
		log.Warn().Msg("No market data API key configured, remote fallback disabled")
	}

	harness := evaluation.NewHarness(evaluation.DefaultTestWindow, evaluation.DefaultMinLength, log)

	// Background refresh keeps remotely sourced series current.
	sched := scheduler.New(log)
	if remote != nil {
		refreshJob := scheduler.NewRefreshSeriesJob(seriesCache, remote, log)
		if err := sched.Register(cfg.RefreshSchedule, refreshJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule series refresh")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Log:     log,
		Store:   store,
		Remote:  remote,
		Harness: harness,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Foresight stopped")
}
