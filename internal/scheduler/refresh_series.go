package scheduler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foresightlab/foresight/internal/clients/marketdata"
	"github.com/foresightlab/foresight/internal/dataset"
)

// refreshLookbackDays is how much history a refresh re-requests; a year
// comfortably covers the evaluation minimum of 60 trading days.
const refreshLookbackDays = 365

// RefreshSeriesJob re-fetches every remotely sourced symbol so cached
// series stay current without request bursts at query time. The client's
// own freshness check makes the job idempotent within a day.
type RefreshSeriesJob struct {
	cache  *dataset.SeriesCache
	client *marketdata.Client
	log    zerolog.Logger
}

// NewRefreshSeriesJob creates the refresh job.
func NewRefreshSeriesJob(cache *dataset.SeriesCache, client *marketdata.Client, log zerolog.Logger) *RefreshSeriesJob {
	return &RefreshSeriesJob{
		cache:  cache,
		client: client,
		log:    log.With().Str("job", "refresh_series").Logger(),
	}
}

// Name implements Job.
func (j *RefreshSeriesJob) Name() string {
	return "refresh_series"
}

// Run refreshes all cached symbols, oldest fetch first. Hitting the daily
// request budget ends the run early; remaining symbols wait for tomorrow.
func (j *RefreshSeriesJob) Run() error {
	symbols, err := j.cache.Symbols()
	if err != nil {
		return fmt.Errorf("failed to list symbols to refresh: %w", err)
	}

	var failed int
	for _, symbol := range symbols {
		if _, err := j.client.DailyBars(symbol, refreshLookbackDays); err != nil {
			var rateLimited marketdata.ErrRateLimitExceeded
			if errors.As(err, &rateLimited) {
				j.log.Warn().Int("refreshed", len(symbols)-failed).Msg("Request budget exhausted, stopping refresh")
				return nil
			}
			failed++
			j.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to refresh series")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed to refresh", failed, len(symbols))
	}
	return nil
}
