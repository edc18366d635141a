// Package metrics defines the Prometheus collectors of the term index server
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the server.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	QueriesTotal        *prometheus.CounterVec
	QueryLatency        *prometheus.HistogramVec
	QueryResultsCount   *prometheus.HistogramVec
	WordsInsertedTotal  *prometheus.CounterVec
	IndexNodes          *prometheus.GaugeVec
	IndexWords          *prometheus.GaugeVec
	PersistsTotal       *prometheus.CounterVec
	JobsTotal           *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates the collectors and registers them on reg.
// gatherer is what Handler serves.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_index_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "term_index_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_index_queries_total",
				Help: "Total term queries by operation, source and outcome (ok, empty, error).",
			},
			[]string{"op", "source", "outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "term_index_query_latency_seconds",
				Help:    "Term query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"op", "source"},
		),
		QueryResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "term_index_query_results_count",
				Help:    "Number of words returned per prefix or near query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
			[]string{"op"},
		),
		WordsInsertedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_index_words_inserted_total",
				Help: "Total words submitted for insertion, by index.",
			},
			[]string{"index"},
		),
		IndexNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "term_index_nodes",
				Help: "Trie nodes per index, root sentinel included.",
			},
			[]string{"index"},
		),
		IndexWords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "term_index_words",
				Help: "Distinct words per index.",
			},
			[]string{"index"},
		),
		PersistsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_index_persists_total",
				Help: "Total node stream writes by status.",
			},
			[]string{"status"},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "term_index_jobs_total",
				Help: "Total background jobs by type and final status.",
			},
			[]string{"type", "status"},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.WordsInsertedTotal,
		m.IndexNodes,
		m.IndexWords,
		m.PersistsTotal,
		m.JobsTotal,
	)

	return m
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(op, source string, results int, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	m.QueriesTotal.WithLabelValues(op, source, outcome).Inc()
	m.QueryLatency.WithLabelValues(op, source).Observe(took.Seconds())
	if err == nil && op != "has" {
		m.QueryResultsCount.WithLabelValues(op).Observe(float64(results))
	}
}

// SetIndexSize updates the node and word gauges of an index.
func (m *Metrics) SetIndexSize(index string, nodes, words int) {
	if m == nil {
		return
	}
	m.IndexNodes.WithLabelValues(index).Set(float64(nodes))
	m.IndexWords.WithLabelValues(index).Set(float64(words))
}

// ForgetIndex drops the per-index series of a deleted index.
func (m *Metrics) ForgetIndex(index string) {
	if m == nil {
		return
	}
	m.IndexNodes.DeleteLabelValues(index)
	m.IndexWords.DeleteLabelValues(index)
	m.WordsInsertedTotal.DeleteLabelValues(index)
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
