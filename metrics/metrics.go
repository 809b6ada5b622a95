package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds all Prometheus metrics for the bot
type MetricsRegistry struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Scheduler Metrics
	JobRunsTotal  *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	JobSkipsTotal *prometheus.CounterVec

	// Moderation Metrics
	StrikesTotal          *prometheus.CounterVec
	PunishmentsTotal      *prometheus.CounterVec
	ExileTransitionsTotal *prometheus.CounterVec
	ReaperDeletionsTotal  *prometheus.CounterVec
	DirectMessageFailures prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &MetricsRegistry{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moddingway_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "moddingway_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		JobRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_job_runs_total",
				Help: "Scheduled job runs by job name and outcome",
			},
			[]string{"job_name", "status"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moddingway_job_duration_seconds",
				Help:    "Scheduled job execution time in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"job_name"},
		),
		JobSkipsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_job_skips_total",
				Help: "Job triggers dropped because the previous run was still in progress",
			},
			[]string{"job_name"},
		),

		StrikesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_strikes_total",
				Help: "Strikes recorded by severity",
			},
			[]string{"severity"},
		),
		PunishmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_punishments_total",
				Help: "Punishments decided by the strike ledger by kind",
			},
			[]string{"kind"},
		),
		ExileTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_exile_transitions_total",
				Help: "Exile records created or moved to a terminal status",
			},
			[]string{"status"},
		),
		ReaperDeletionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moddingway_reaper_deletions_total",
				Help: "Inactivity reaper deletions by scope kind and result",
			},
			[]string{"scope", "result"},
		),
		DirectMessageFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moddingway_direct_message_failures_total",
				Help: "Direct messages that could not be delivered",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
