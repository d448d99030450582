// Package dataset loads historical daily price data, primarily from a
// directory of per-symbol CSV files with a cached remote source as
// fallback.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foresightlab/foresight/internal/series"
)

// csvSuffix is the filename pattern of dataset files: {SYMBOL}_data.csv.
const csvSuffix = "_data.csv"

// Bar is one daily OHLCV row of a dataset file.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolInfo is the minimal symbol metadata served to the frontend.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// ErrSymbolNotFound indicates no dataset file exists for a symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("dataset for symbol %s not found", e.Symbol)
}

// Store reads the CSV dataset directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a dataset store rooted at dir.
func NewStore(dir string, log zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		log: log.With().Str("component", "dataset").Logger(),
	}
}

// ListSymbols returns the symbols derived from dataset filenames, sorted.
func (s *Store) ListSymbols() ([]SymbolInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SymbolInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	symbols := make([]SymbolInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, csvSuffix) {
			continue
		}
		symbol := strings.TrimSuffix(name, csvSuffix)
		symbols = append(symbols, SymbolInfo{Symbol: symbol, Name: symbol, Sector: "Dataset"})
	}

	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Symbol < symbols[j].Symbol
	})
	return symbols, nil
}

// Load reads and parses a symbol's CSV into date-sorted bars. A malformed
// row fails the whole load; silently dropping rows would skew any metric
// computed downstream.
func (s *Store) Load(symbol string) ([]Bar, error) {
	path := filepath.Join(s.dir, symbol+csvSuffix)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSymbolNotFound{Symbol: symbol}
		}
		return nil, fmt.Errorf("failed to open dataset for %s: %w", symbol, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header for %s: %w", symbol, err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("unusable CSV header for %s: %w", symbol, err)
	}

	var bars []Bar
	line := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read CSV row %d for %s: %w", line+1, symbol, err)
		}
		line++

		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("malformed row %d in dataset for %s: %w", line, symbol, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	s.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Loaded dataset")
	return bars, nil
}

// Closes loads a symbol and reduces it to its closing-price series.
func (s *Store) Closes(symbol string) (series.Series, error) {
	bars, err := s.Load(symbol)
	if err != nil {
		return nil, err
	}
	return ClosingSeries(bars), nil
}

// Recent returns the bars within the last 30 calendar days of a symbol's
// final bar, mirroring the price-history window the frontend charts.
func (s *Store) Recent(symbol string) ([]Bar, error) {
	bars, err := s.Load(symbol)
	if err != nil {
		return nil, err
	}
	return RecentWindow(bars, 30), nil
}

// ClosingSeries converts bars to a closing-price series, preserving order.
func ClosingSeries(bars []Bar) series.Series {
	out := make(series.Series, len(bars))
	for i, b := range bars {
		out[i] = series.Point{Date: b.Date, Value: b.Close}
	}
	return out
}

// RecentWindow filters date-sorted bars down to the trailing window of
// calendar days, measured back from the final bar.
func RecentWindow(bars []Bar, days int) []Bar {
	if len(bars) == 0 {
		return []Bar{}
	}
	cutoff := series.Day(bars[len(bars)-1].Date).AddDate(0, 0, -days)
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !series.Day(b.Date).Before(cutoff) {
			out = append(out, b)
		}
	}
	return out
}

// columnIndex maps the columns this store needs to their header positions.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return idx, nil
}

// parseBar converts one CSV record into a Bar.
func parseBar(record []string, cols map[string]int) (Bar, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	dateStr, err := field("date")
	if err != nil {
		return Bar{}, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return Bar{}, err
	}

	var bar Bar
	bar.Date = date
	for name, dst := range map[string]*float64{
		"open": &bar.Open, "high": &bar.High, "low": &bar.Low, "close": &bar.Close,
	} {
		raw, err := field(name)
		if err != nil {
			return Bar{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("invalid %s value %q: %w", name, raw, err)
		}
		*dst = v
	}

	volStr, err := field("volume")
	if err != nil {
		return Bar{}, err
	}
	// Some exports carry volume as a float; accept both.
	vol, err := strconv.ParseInt(volStr, 10, 64)
	if err != nil {
		volF, ferr := strconv.ParseFloat(volStr, 64)
		if ferr != nil {
			return Bar{}, fmt.Errorf("invalid volume value %q: %w", volStr, err)
		}
		vol = int64(volF)
	}
	bar.Volume = vol

	return bar, nil
}

// parseDate accepts plain dates and datetime stamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(series.DateFormat, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return series.Day(t), nil
}
