package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foresightlab/foresight/internal/clients/marketdata"
	"github.com/foresightlab/foresight/internal/dataset"
	"github.com/foresightlab/foresight/internal/evaluation"
	"github.com/foresightlab/foresight/internal/forecast"
	"github.com/foresightlab/foresight/internal/series"
)

// remoteLookbackDays is how much history the remote fallback requests; a
// year matches what the dataset files typically hold and clears the
// evaluation minimum with room to spare.
const remoteLookbackDays = 365

// predictHorizonDays is the forecast length of the /predict endpoint.
const predictHorizonDays = 7

// Handlers serves the price, forecast and metrics endpoints.
type Handlers struct {
	store   *dataset.Store
	remote  *marketdata.Client
	harness *evaluation.Harness
	log     zerolog.Logger
}

// NewHandlers creates the endpoint handlers. remote may be nil when no API
// key is configured; the service then runs dataset-only.
func NewHandlers(store *dataset.Store, remote *marketdata.Client, harness *evaluation.Harness, log zerolog.Logger) *Handlers {
	return &Handlers{
		store:   store,
		remote:  remote,
		harness: harness,
		log:     log.With().Str("handler", "api").Logger(),
	}
}

// HandleHome handles GET / (liveness probe for humans).
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Foresight backend is running! Try /symbols"))
}

// HandleSymbols handles GET /symbols
func (h *Handlers) HandleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.store.ListSymbols()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list symbols")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, symbols)
}

// stockPoint is one row of the /stock response.
type stockPoint struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// HandleStock handles GET /stock/{symbol}: the last 30 calendar days of
// daily bars, from the dataset if present, otherwise the remote fallback.
func (h *Handlers) HandleStock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	bars, err := h.loadBars(symbol)
	if err != nil {
		h.respondLoadError(w, symbol, err)
		return
	}

	recent := dataset.RecentWindow(bars, 30)
	points := make([]stockPoint, 0, len(recent))
	for _, b := range recent {
		points = append(points, stockPoint{
			Date:   b.Date.Format(series.DateFormat),
			Price:  round2(b.Close),
			Volume: b.Volume,
		})
	}
	h.writeJSON(w, http.StatusOK, points)
}

// forecastRow is one row of the /predict response.
type forecastRow struct {
	DS   string  `json:"ds"`
	YHat float64 `json:"yhat"`
}

// HandlePredict handles GET /predict/{symbol}: a 7-day forecast fitted on
// the symbol's full history. ?model=sma selects the baseline forecaster.
func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	bars, err := h.loadBars(symbol)
	if err != nil {
		h.respondLoadError(w, symbol, err)
		return
	}

	model := h.selectModel(r)
	points, err := model.FitAndForecast(dataset.ClosingSeries(bars), predictHorizonDays)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Forecast failed")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	rows := make([]forecastRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, forecastRow{
			DS:   p.Date.Format(series.DateFormat),
			YHat: round2(p.Predicted),
		})
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// HandleMetrics handles GET /metrics/{symbol}: the train/test evaluation
// of the selected forecaster against the symbol's history.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	bars, err := h.loadBars(symbol)
	if err != nil {
		h.respondLoadError(w, symbol, err)
		return
	}

	result, err := h.harness.Evaluate(symbol, dataset.ClosingSeries(bars), h.selectModel(r))
	if err != nil {
		var insufficient evaluation.ErrInsufficientData
		if errors.As(err, &insufficient) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Evaluation failed")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// loadBars reads a symbol's bars from the dataset, falling back to the
// remote client when no dataset file exists.
func (h *Handlers) loadBars(symbol string) ([]dataset.Bar, error) {
	bars, err := h.store.Load(symbol)
	if err == nil {
		return bars, nil
	}

	var notFound dataset.ErrSymbolNotFound
	if !errors.As(err, &notFound) || h.remote == nil {
		return nil, err
	}

	h.log.Debug().Str("symbol", symbol).Msg("No dataset file, using remote fallback")
	return h.remote.DailyBars(symbol, remoteLookbackDays)
}

// selectModel picks the forecaster from the model query parameter.
func (h *Handlers) selectModel(r *http.Request) evaluation.Predictor {
	if r.URL.Query().Get("model") == "sma" {
		return forecast.NewSMABaseline(0)
	}
	return forecast.NewTrendModel()
}

func (h *Handlers) respondLoadError(w http.ResponseWriter, symbol string, err error) {
	var notFound dataset.ErrSymbolNotFound
	if errors.As(err, &notFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load price data")
	h.writeError(w, http.StatusInternalServerError, err)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// round2 rounds prices to cents for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
