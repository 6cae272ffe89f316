package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "divcli"

// Metrics holds the application collectors. It satisfies the telemetry
// interfaces of the market-data client and the screen pipeline.
type Metrics struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	ProviderRetries  *prometheus.CounterVec

	ScreenRowsIn   *prometheus.CounterVec
	ScreenRowsOut  *prometheus.CounterVec
	ScreenDuration *prometheus.HistogramVec
	ForecastsTotal *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPActive   prometheus.Gauge
}

// NewMetrics creates collectors registered on a private registry together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Market data requests by operation and HTTP status.",
		}, []string{"op", "status"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Market data request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		ProviderRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Market data request retries by operation.",
		}, []string{"op"}),
		ScreenRowsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "screen",
			Name:      "rows_in_total",
			Help:      "Rows entering a screen stage.",
		}, []string{"stage"}),
		ScreenRowsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "screen",
			Name:      "rows_out_total",
			Help:      "Rows passing a screen stage.",
		}, []string{"stage"}),
		ScreenDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "screen",
			Name:      "stage_duration_seconds",
			Help:      "Screen stage execution time.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"stage"}),
		ForecastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "forecasts_total",
			Help:      "Forecasts computed by target kind.",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		HTTPActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "In-flight HTTP requests.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ProviderRequests, m.ProviderDuration, m.ProviderRetries,
		m.ScreenRowsIn, m.ScreenRowsOut, m.ScreenDuration,
		m.ForecastsTotal,
		m.HTTPRequests, m.HTTPDuration, m.HTTPActive,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveProviderRequest(op string, status int, elapsed time.Duration) {
	m.ProviderRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.ProviderDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) IncProviderRetry(op string) {
	m.ProviderRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveStage(stage string, rowsIn, rowsOut int, elapsed time.Duration) {
	m.ScreenRowsIn.WithLabelValues(stage).Add(float64(rowsIn))
	m.ScreenRowsOut.WithLabelValues(stage).Add(float64(rowsOut))
	m.ScreenDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// IncForecast counts one computed forecast.
func (m *Metrics) IncForecast(kind string) {
	m.ForecastsTotal.WithLabelValues(kind).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
