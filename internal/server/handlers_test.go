package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresightlab/foresight/internal/dataset"
	"github.com/foresightlab/foresight/internal/evaluation"
)

// testServer builds a server over a temp dataset directory with the given
// per-symbol row counts. Prices rise by 1 per day so the trend model has a
// clean line to fit.
func testServer(t *testing.T, rows map[string]int) *Server {
	t.Helper()
	dir := t.TempDir()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for symbol, n := range rows {
		content := "date,open,high,low,close,volume,Name\n"
		for i := 0; i < n; i++ {
			d := start.AddDate(0, 0, i)
			price := 100 + float64(i)
			content += fmt.Sprintf("%s,%.1f,%.1f,%.1f,%.1f,%d,%s\n",
				d.Format("2006-01-02"), price, price+1, price-1, price, 1000+i, symbol)
		}
		path := filepath.Join(dir, symbol+"_data.csv")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	log := zerolog.Nop()
	return New(Config{
		Log:     log,
		Store:   dataset.NewStore(dir, log),
		Remote:  nil,
		Harness: evaluation.NewHarness(0, 0, log),
		Port:    0,
		DevMode: true,
	})
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSymbols(t *testing.T) {
	s := testServer(t, map[string]int{"MSFT": 5, "AAPL": 5})

	rec := do(t, s, "/symbols")
	require.Equal(t, http.StatusOK, rec.Code)

	var symbols []dataset.SymbolInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &symbols))
	require.Len(t, symbols, 2)
	assert.Equal(t, "AAPL", symbols[0].Symbol)
	assert.Equal(t, "MSFT", symbols[1].Symbol)
}

func TestHandleStockRecentWindow(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/stock/ACME")
	require.Equal(t, http.StatusOK, rec.Code)

	var points []stockPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	// 30 calendar days back from the last bar, inclusive.
	assert.Len(t, points, 31)
	assert.NotZero(t, points[0].Volume)
}

func TestHandleStockUnknownSymbol(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/stock/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "NOPE")
}

func TestHandlePredictSevenDays(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/predict/ACME")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []forecastRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 7)
	// Data rises 1/day on an exact line; the forecast continues it.
	assert.InDelta(t, 190.0, rows[0].YHat, 0.05)
	assert.InDelta(t, 196.0, rows[6].YHat, 0.05)
}

func TestHandlePredictSMABaseline(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/predict/ACME?model=sma")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []forecastRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 7)
	// Flat carry-forward of SMA(20) over closes 170..189 = 179.5.
	for _, row := range rows {
		assert.InDelta(t, 179.5, row.YHat, 1e-9)
	}
}

func TestHandleMetricsCompleteReport(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/metrics/ACME")
	require.Equal(t, http.StatusOK, rec.Code)

	var result evaluation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "ACME", result.Meta.Symbol)
	assert.Equal(t, 30, result.Meta.TestDays)
	// Exact line, exact model: near-zero error and perfect direction calls.
	assert.Less(t, result.Regression.MAE, 0.01)
	assert.Greater(t, result.Regression.R2, 0.99)
	assert.Equal(t, 1.0, result.Classification.Accuracy)
	cm := result.Classification.ConfusionMatrix
	assert.Equal(t, 29, cm.TP+cm.TN+cm.FP+cm.FN)
}

func TestHandleMetricsInsufficientData(t *testing.T) {
	s := testServer(t, map[string]int{"TINY": 40})

	rec := do(t, s, "/metrics/TINY")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "not enough data")
}

func TestHandleMetricsUnknownSymbol(t *testing.T) {
	s := testServer(t, map[string]int{"ACME": 90})

	rec := do(t, s, "/metrics/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHome(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/symbols")
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, "/api/system/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
