package marketdata

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewClient tests client creation.
func TestNewClient(t *testing.T) {
	client := NewClient("test-key", nil, zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, dailyRequestBudget, client.RemainingRequests())
}

// TestRateLimiting tests the daily request budget.
func TestRateLimiting(t *testing.T) {
	client := NewClient("test-key", nil, zerolog.Nop())

	for i := 0; i < dailyRequestBudget; i++ {
		assert.Equal(t, dailyRequestBudget-i, client.RemainingRequests())
		require.NoError(t, client.consumeBudget())
	}

	err := client.consumeBudget()
	assert.Error(t, err)
	assert.IsType(t, ErrRateLimitExceeded{}, err)
	assert.Equal(t, 0, client.RemainingRequests())
}

func TestDailyBarsParsesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "ACME", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		// Newest first, as the upstream delivers it.
		fmt.Fprint(w, `{"data":[
			{"date":"2024-01-03","open":3,"high":3,"low":3,"close":3.5,"volume":30},
			{"date":"2024-01-02T00:00:00+0000","open":2,"high":2,"low":2,"close":2.5,"volume":20},
			{"date":"2024-01-01","open":1,"high":1,"low":1,"close":1.5,"volume":10}
		]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zerolog.Nop())
	client.baseURL = srv.URL

	bars, err := client.DailyBars("ACME", 30)
	require.NoError(t, err)

	require.Len(t, bars, 3)
	assert.Equal(t, "2024-01-01", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, "2024-01-03", bars[2].Date.Format("2006-01-02"))
	assert.Equal(t, int64(30), bars[2].Volume)
}

func TestDailyBarsEmptyResponseIsSymbolUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zerolog.Nop())
	client.baseURL = srv.URL

	_, err := client.DailyBars("NOPE", 30)
	assert.IsType(t, ErrSymbolUnavailable{}, err)
}

func TestDailyBarsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zerolog.Nop())
	client.baseURL = srv.URL

	_, err := client.DailyBars("ACME", 30)
	assert.Error(t, err)
}

func TestDailyClosesReducesToSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"date":"2024-01-02","open":2,"high":2,"low":2,"close":2.5,"volume":20},
			{"date":"2024-01-01","open":1,"high":1,"low":1,"close":1.5,"volume":10}
		]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", nil, zerolog.Nop())
	client.baseURL = srv.URL

	s, err := client.DailyCloses("ACME", 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, s.Values())
}
