package dataset

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/foresightlab/foresight/internal/database"
)

// SeriesCache persists remotely fetched bar series in the cache database so
// the service survives restarts and API rate limits without refetching.
// Entries are rebuildable; losing this database costs one refetch.
type SeriesCache struct {
	db  *database.DB
	log zerolog.Logger
}

// cachedSeries is the msgpack payload stored per symbol.
type cachedSeries struct {
	Symbol string `msgpack:"symbol"`
	Bars   []Bar  `msgpack:"bars"`
}

// NewSeriesCache creates the cache accessor and ensures its schema.
func NewSeriesCache(db *database.DB, log zerolog.Logger) (*SeriesCache, error) {
	c := &SeriesCache{
		db:  db,
		log: log.With().Str("component", "series_cache").Logger(),
	}
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SeriesCache) migrate() error {
	_, err := c.db.Conn().Exec(`
		CREATE TABLE IF NOT EXISTS remote_series (
			symbol     TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			payload    BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create remote_series table: %w", err)
	}
	return nil
}

// Put stores (or replaces) a symbol's fetched bars.
func (c *SeriesCache) Put(symbol string, bars []Bar) error {
	payload, err := msgpack.Marshal(cachedSeries{Symbol: symbol, Bars: bars})
	if err != nil {
		return fmt.Errorf("failed to encode series for %s: %w", symbol, err)
	}

	_, err = c.db.Conn().Exec(`
		INSERT INTO remote_series (symbol, fetched_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, symbol, time.Now().UTC().Unix(), payload)
	if err != nil {
		return fmt.Errorf("failed to store series for %s: %w", symbol, err)
	}

	c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Cached remote series")
	return nil
}

// Get returns a symbol's cached bars and when they were fetched. The
// second return is false when the symbol has no cache entry.
func (c *SeriesCache) Get(symbol string) ([]Bar, time.Time, bool, error) {
	var fetchedAt int64
	var payload []byte
	err := c.db.Conn().QueryRow(`
		SELECT fetched_at, payload FROM remote_series WHERE symbol = ?
	`, symbol).Scan(&fetchedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read cached series for %s: %w", symbol, err)
	}

	var cached cachedSeries
	if err := msgpack.Unmarshal(payload, &cached); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to decode cached series for %s: %w", symbol, err)
	}

	return cached.Bars, time.Unix(fetchedAt, 0).UTC(), true, nil
}

// Symbols lists every symbol with a cache entry, oldest fetch first, so
// the refresh job touches the stalest data before burning its budget.
func (c *SeriesCache) Symbols() ([]string, error) {
	rows, err := c.db.Conn().Query(`SELECT symbol FROM remote_series ORDER BY fetched_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan cached symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached symbols: %w", err)
	}
	return symbols, nil
}
