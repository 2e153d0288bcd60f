package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - метрики сервиса в собственном реестре, чтобы повторный вызов
// NewMetrics в тестах не паниковал из-за дубликатов.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	accessDenied     *prometheus.CounterVec
	matchJobs        *prometheus.CounterVec
	matchJobDuration prometheus.Histogram
	requestsCreated  prometheus.Counter
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_broker_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		accessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_broker_access_denied_total",
				Help: "Operations rejected by an access policy.",
			},
			[]string{"entity", "operation", "policy"},
		),
		matchJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_broker_match_jobs_total",
				Help: "Matching jobs processed by outcome.",
			},
			[]string{"outcome"},
		),
		matchJobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loan_broker_match_job_duration_seconds",
				Help:    "Duration of matching jobs.",
				Buckets: prometheus.DefBuckets,
			},
		),
		requestsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_broker_credit_requests_created_total",
				Help: "Credit requests created by the matching engine.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_broker_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_broker_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

func (m *Metrics) RecordRequestDuration(method, route, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) IncrAccessDenied(entity, operation, policy string) {
	m.accessDenied.WithLabelValues(entity, operation, policy).Inc()
}

// RecordMatchJob: outcome - "ok", "absent" или "error".
func (m *Metrics) RecordMatchJob(outcome string, created int, d time.Duration) {
	m.matchJobs.WithLabelValues(outcome).Inc()
	m.matchJobDuration.Observe(d.Seconds())
	if created > 0 {
		m.requestsCreated.Add(float64(created))
	}
}

func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Handler отдаёт метрики из собственного реестра.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// MatchJobs - счётчик заданий подбора по исходу.
func (m *Metrics) MatchJobs() *prometheus.CounterVec {
	return m.matchJobs
}

func (m *Metrics) CacheHits() *prometheus.CounterVec {
	return m.cacheHits
}

func (m *Metrics) CacheMisses() *prometheus.CounterVec {
	return m.cacheMisses
}
