package providers

import (
	"replyguy/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCommandsTotal(command string)
	AddLinksRecorded(n int)
	IncSweepRuns()
	IncSweepEvictions()
	SetTrackedUsers(count int)
	ObserveLedgerWriteDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	commandsTotal       *prometheus.CounterVec
	linksRecorded       prometheus.Counter
	sweepRuns           prometheus.Counter
	sweepEvictions      prometheus.Counter
	trackedUsers        prometheus.Gauge
	ledgerWriteDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCommandsTotal(command string) {
	m.commandsTotal.WithLabelValues(command).Inc()
}

func (m *MetricsProvider) AddLinksRecorded(n int) {
	m.linksRecorded.Add(float64(n))
}

func (m *MetricsProvider) IncSweepRuns() {
	m.sweepRuns.Inc()
}

func (m *MetricsProvider) IncSweepEvictions() {
	m.sweepEvictions.Inc()
}

func (m *MetricsProvider) SetTrackedUsers(count int) {
	m.trackedUsers.Set(float64(count))
}

func (m *MetricsProvider) ObserveLedgerWriteDuration(duration time.Duration) {
	m.ledgerWriteDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "replyguy_requests_total",
			Help: "Total number of ops HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "replyguy_request_duration_seconds",
			Help:    "Ops HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		commandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "replyguy_commands_total",
			Help: "Total number of slash commands handled",
		}, []string{"command"}),

		linksRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "replyguy_links_recorded_total",
			Help: "Total number of links appended to report ledgers",
		}),

		sweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "replyguy_sweep_runs_total",
			Help: "Total number of membership sweep runs",
		}),

		sweepEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "replyguy_sweep_evictions_total",
			Help: "Total number of members evicted by the sweeper",
		}),

		trackedUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "replyguy_tracked_users",
			Help: "Number of members currently tracked in the registry",
		}),

		ledgerWriteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "replyguy_ledger_write_duration_seconds",
			Help:    "Ledger workbook write duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCommandsTotal(_ string)                        {}
func (n *noopMetrics) AddLinksRecorded(_ int)                           {}
func (n *noopMetrics) IncSweepRuns()                                    {}
func (n *noopMetrics) IncSweepEvictions()                               {}
func (n *noopMetrics) SetTrackedUsers(_ int)                            {}
func (n *noopMetrics) ObserveLedgerWriteDuration(_ time.Duration)       {}
