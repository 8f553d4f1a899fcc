// Package metrics holds the Prometheus collectors for statement processing
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fjacquet/pdf-ledger/internal/models"
)

// Namespace prefixes the pipeline metrics.
const Namespace = "pdfledger"

// Categorization sources.
const (
	SourceClassifier    = "classifier"
	SourceFallback      = "fallback"
	SourceInvalid       = "invalid"
	SourceUncategorized = "uncategorized"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Pipeline metrics
	StatementsProcessed *prometheus.CounterVec
	LinesDropped        prometheus.Counter
	RecordsExtracted    prometheus.Counter
	ExtractionDuration  prometheus.Histogram
	Categorized         *prometheus.CounterVec
	BalanceWarnings     prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StatementsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "statements_processed_total",
				Help:      "Statements processed by outcome",
			},
			[]string{"outcome"},
		),
		LinesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_dropped_total",
			Help:      "Statement lines that looked like transactions but did not parse",
		}),
		RecordsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_extracted_total",
			Help:      "Transaction records extracted from statements",
		}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of a full statement run",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		Categorized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "categorization_total",
				Help:      "Categorized records by label source",
			},
			[]string{"source"},
		),
		BalanceWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "balance_warnings_total",
			Help:      "Records whose declared balance disagrees with the running balance",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		gatherer: reg,
	}
}

// ObserveRun records one pipeline run.
func (m *Metrics) ObserveRun(outcome models.Outcome, records, dropped, warnings int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StatementsProcessed.WithLabelValues(outcome.String()).Inc()
	m.RecordsExtracted.Add(float64(records))
	m.LinesDropped.Add(float64(dropped))
	m.BalanceWarnings.Add(float64(warnings))
	m.ExtractionDuration.Observe(elapsed.Seconds())
}

// ObserveCategorization records where the labels of one run came from.
func (m *Metrics) ObserveCategorization(stats models.CategorizationStats) {
	if m == nil {
		return
	}
	m.Categorized.WithLabelValues(SourceClassifier).Add(float64(stats.Successful))
	m.Categorized.WithLabelValues(SourceFallback).Add(float64(stats.Fallback))
	m.Categorized.WithLabelValues(SourceInvalid).Add(float64(stats.Invalid))
	m.Categorized.WithLabelValues(SourceUncategorized).Add(float64(stats.Uncategorized))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records HTTP metrics. The path label is the chi route pattern,
// so URL parameters do not create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)
		m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
