package infrastructure

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecorders(t *testing.T) {
	m := NewMetrics()

	m.ObserveProviderRequest("dividends", 200, 20*time.Millisecond)
	m.ObserveProviderRequest("dividends", 200, 10*time.Millisecond)
	m.ObserveProviderRequest("dividends", 429, time.Millisecond)
	m.IncProviderRetry("dividends")
	m.ObserveStage("yield", 10, 4, time.Millisecond)
	m.ObserveStage("yield", 6, 2, time.Millisecond)
	m.IncForecast("manual")
	m.ObserveHTTPRequest("/api/screen", http.MethodPost, 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("dividends", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("dividends", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRetries.WithLabelValues("dividends")))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.ScreenRowsIn.WithLabelValues("yield")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ScreenRowsOut.WithLabelValues("yield")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastsTotal.WithLabelValues("manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/screen", "POST", "200")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.IncForecast("symbol")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `divcli_forecasts_total{kind="symbol"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := NewMetrics(), NewMetrics()
	a.IncForecast("manual")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ForecastsTotal.WithLabelValues("manual")))
}
