// Package marketdata provides the remote daily-price fallback used when a
// symbol has no local dataset file.
package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/foresightlab/foresight/internal/dataset"
	"github.com/foresightlab/foresight/internal/series"
)

// dailyRequestBudget caps upstream calls per UTC day; free market-data
// tiers enforce a hard quota and burning past it blanks the whole day.
const dailyRequestBudget = 25

// ErrRateLimitExceeded is returned when the daily request budget is spent.
type ErrRateLimitExceeded struct {
	Budget int
}

func (e ErrRateLimitExceeded) Error() string {
	return fmt.Sprintf("market data rate limit exceeded: %d requests per day", e.Budget)
}

// ErrSymbolUnavailable is returned when the upstream has no data for a symbol.
type ErrSymbolUnavailable struct {
	Symbol string
}

func (e ErrSymbolUnavailable) Error() string {
	return fmt.Sprintf("market data upstream has no series for %s", e.Symbol)
}

// Client fetches daily close series over HTTP, counts requests against the
// daily budget, and writes successful fetches through to the series cache.
// Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *dataset.SeriesCache
	log     zerolog.Logger

	mu           sync.Mutex
	requestCount int
	countDay     string // UTC date the counter belongs to
}

// NewClient creates a market data client. cache is optional; when nil,
// fetches are not persisted.
func NewClient(apiKey string, cache *dataset.SeriesCache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://api.marketstack.dev/v1/eod",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
		log:     log.With().Str("client", "marketdata").Logger(),
	}
}

// apiBar is the upstream JSON row shape.
type apiBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// DailyBars fetches up to lookbackDays of daily bars for a symbol,
// oldest first. Cache-fresh data (same UTC day) is served without an
// upstream call; on upstream failure stale cache is better than nothing.
func (c *Client) DailyBars(symbol string, lookbackDays int) ([]dataset.Bar, error) {
	if c.cache != nil {
		bars, fetchedAt, ok, err := c.cache.Get(symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed, fetching upstream")
		} else if ok && sameUTCDay(fetchedAt, time.Now()) {
			c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Cache hit")
			return bars, nil
		}
	}

	bars, err := c.fetch(symbol, lookbackDays)
	if err != nil {
		if stale, ok := c.staleFromCache(symbol); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Upstream failed, using stale cached series")
			return stale, nil
		}
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(symbol, bars); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache fetched series")
		}
	}
	return bars, nil
}

// DailyCloses is DailyBars reduced to a closing-price series.
func (c *Client) DailyCloses(symbol string, lookbackDays int) (series.Series, error) {
	bars, err := c.DailyBars(symbol, lookbackDays)
	if err != nil {
		return nil, err
	}
	return dataset.ClosingSeries(bars), nil
}

// RemainingRequests reports how much of today's budget is left.
func (c *Client) RemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollCounterLocked()
	return dailyRequestBudget - c.requestCount
}

func (c *Client) fetch(symbol string, lookbackDays int) ([]dataset.Bar, error) {
	if err := c.consumeBudget(); err != nil {
		return nil, err
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -lookbackDays)

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("symbols", symbol)
	q.Set("date_from", from.Format(series.DateFormat))
	q.Set("date_to", to.Format(series.DateFormat))

	reqURL := c.baseURL + "?" + q.Encode()
	c.log.Debug().Str("symbol", symbol).Int("lookback_days", lookbackDays).Msg("Fetching daily bars")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSymbolUnavailable{Symbol: symbol}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []apiBar `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse market data response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, ErrSymbolUnavailable{Symbol: symbol}
	}

	bars := make([]dataset.Bar, 0, len(payload.Data))
	for _, row := range payload.Data {
		date, err := time.ParseInLocation(series.DateFormat, row.Date[:min(len(row.Date), 10)], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in market data response: %w", row.Date, err)
		}
		bars = append(bars, dataset.Bar{
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	// Upstream returns newest first; callers want chronological order.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars, nil
}

func (c *Client) consumeBudget() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollCounterLocked()
	if c.requestCount >= dailyRequestBudget {
		return ErrRateLimitExceeded{Budget: dailyRequestBudget}
	}
	c.requestCount++
	return nil
}

// rollCounterLocked resets the request counter when the UTC day changes.
func (c *Client) rollCounterLocked() {
	today := time.Now().UTC().Format(series.DateFormat)
	if c.countDay != today {
		c.countDay = today
		c.requestCount = 0
	}
}

func (c *Client) staleFromCache(symbol string) ([]dataset.Bar, bool) {
	if c.cache == nil {
		return nil, false
	}
	bars, _, ok, err := c.cache.Get(symbol)
	if err != nil || !ok {
		return nil, false
	}
	return bars, true
}

func sameUTCDay(a, b time.Time) bool {
	return a.UTC().Format(series.DateFormat) == b.UTC().Format(series.DateFormat)
}
