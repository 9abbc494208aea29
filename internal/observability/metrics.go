package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "b1g"

// Metrics holds the ingest and provider collectors. It satisfies both the
// ingest observer and the ESPN request observer.
type Metrics struct {
	registry *prometheus.Registry

	ingestRuns       *prometheus.CounterVec
	ingestDuration   *prometheus.HistogramVec
	teamsProcessed   prometheus.Counter
	gamesUpserted    *prometheus.CounterVec
	statsUpserted    *prometheus.CounterVec
	ingestErrors     *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

type MetricsOption func(*metricsOptions)

type metricsOptions struct {
	runtimeCollectors bool
	durationBuckets   []float64
}

// WithRuntimeCollectors adds the go and process collectors to the registry.
func WithRuntimeCollectors() MetricsOption {
	return func(o *metricsOptions) {
		o.runtimeCollectors = true
	}
}

func WithDurationBuckets(buckets []float64) MetricsOption {
	return func(o *metricsOptions) {
		if len(buckets) > 0 {
			o.durationBuckets = buckets
		}
	}
}

// NewMetrics registers every collector on a private registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	options := metricsOptions{
		durationBuckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}
	for _, opt := range opts {
		opt(&options)
	}

	registry := prometheus.NewRegistry()
	if options.runtimeCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ingestRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Ingest runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ingestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Wall time of ingest runs.",
			Buckets:   options.durationBuckets,
		}, []string{"mode"}),
		teamsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "teams_processed_total",
			Help:      "Conference teams whose schedules were processed.",
		}),
		gamesUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "games_upserted_total",
			Help:      "Games written, by outcome.",
		}, []string{"outcome"}),
		statsUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "stats_upserted_total",
			Help:      "Team game stat rows written, by outcome.",
		}, []string{"outcome"}),
		ingestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Recorded ingest errors by scope.",
		}, []string{"scope"}),
		providerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		providerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Provider request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveIngestRun(mode, outcome string, elapsed time.Duration) {
	m.ingestRuns.WithLabelValues(mode, outcome).Inc()
	m.ingestDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *Metrics) AddTeamsProcessed(count int) {
	if count > 0 {
		m.teamsProcessed.Add(float64(count))
	}
}

func (m *Metrics) AddGamesUpserted(inserted, updated int) {
	addOutcomes(m.gamesUpserted, inserted, updated)
}

func (m *Metrics) AddStatsUpserted(inserted, updated int) {
	addOutcomes(m.statsUpserted, inserted, updated)
}

func (m *Metrics) AddIngestError(scope string) {
	m.ingestErrors.WithLabelValues(scope).Inc()
}

func (m *Metrics) ObserveProviderRequest(endpoint, outcome string, elapsed time.Duration) {
	m.providerRequests.WithLabelValues(endpoint, outcome).Inc()
	m.providerLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func addOutcomes(vec *prometheus.CounterVec, inserted, updated int) {
	if inserted > 0 {
		vec.WithLabelValues("inserted").Add(float64(inserted))
	}
	if updated > 0 {
		vec.WithLabelValues("updated").Add(float64(updated))
	}
}
