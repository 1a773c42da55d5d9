// Package metrics exposes Prometheus instruments for the comparison engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Option applies a configuration option to Metrics.
type Option func(*Metrics)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers the metrics on reg instead of the default registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Metrics) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// Metrics groups the engine counters. All methods are safe on a nil
// receiver so callers can run without instrumentation.
type Metrics struct {
	namespace string
	registry  prometheus.Registerer

	comparisonsCreated  prometheus.Counter
	duplicatesRejected  prometheus.Counter
	supplyShortfall     prometheus.Counter
	supplyDuration      prometheus.Histogram
	outcomesRecorded    *prometheus.CounterVec
	outcomesRejected    *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace: "hotlikeme",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.comparisonsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "supplier",
		Name:      "comparisons_created_total",
		Help:      "Open comparisons generated for evaluators.",
	})
	m.duplicatesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "supplier",
		Name:      "duplicates_rejected_total",
		Help:      "Pair inserts rejected by the uniqueness constraint.",
	})
	m.supplyShortfall = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "supplier",
		Name:      "shortfall_total",
		Help:      "Supply requests that returned fewer comparisons than requested.",
	})
	m.supplyDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "supplier",
		Name:      "duration_seconds",
		Help:      "Time spent ensuring open comparisons for an evaluator.",
		Buckets:   prometheus.DefBuckets,
	})
	m.outcomesRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "rating",
		Name:      "outcomes_recorded_total",
		Help:      "Comparison outcomes applied, by outcome.",
	}, []string{"outcome"})
	m.outcomesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "rating",
		Name:      "outcomes_rejected_total",
		Help:      "Outcome updates rejected, by reason.",
	}, []string{"reason"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	return m
}

func (m *Metrics) ComparisonsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.comparisonsCreated.Add(float64(n))
}

func (m *Metrics) DuplicateRejected() {
	if m == nil {
		return
	}
	m.duplicatesRejected.Inc()
}

func (m *Metrics) SupplyFinished(d time.Duration, short bool) {
	if m == nil {
		return
	}
	m.supplyDuration.Observe(d.Seconds())
	if short {
		m.supplyShortfall.Inc()
	}
}

func (m *Metrics) OutcomeRecorded(outcome string) {
	if m == nil {
		return
	}
	m.outcomesRecorded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OutcomeRejected(reason string) {
	if m == nil {
		return
	}
	m.outcomesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) HTTPRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
