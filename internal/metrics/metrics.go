package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	batchesTotal       prometheus.Counter
	batchDuration      prometheus.Histogram
	signalsEvaluated   *prometheus.CounterVec
	priceFetches       *prometheus.CounterVec
	priceFetchDuration prometheus.Histogram
	jobsActive         prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.batchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sigtrail_batches_total",
			Help: "Total number of signal batches evaluated",
		},
	)
	r.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigtrail_batch_duration_seconds",
			Help:    "Batch evaluation duration in seconds, including price fetches",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	r.signalsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigtrail_signals_evaluated_total",
			Help: "Total number of signals evaluated",
		},
		[]string{"outcome", "reason"},
	)
	r.priceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigtrail_price_fetches_total",
			Help: "Total number of price history fetches",
		},
		[]string{"status"},
	)
	r.priceFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigtrail_price_fetch_duration_seconds",
			Help:    "Price history fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sigtrail_jobs_active",
			Help: "Number of batch jobs pending or running",
		},
	)

	reg.MustRegister(r.batchesTotal)
	reg.MustRegister(r.batchDuration)
	reg.MustRegister(r.signalsEvaluated)
	reg.MustRegister(r.priceFetches)
	reg.MustRegister(r.priceFetchDuration)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordBatch records a completed batch evaluation.
func (r *Registry) RecordBatch(duration float64) {
	r.batchesTotal.Inc()
	r.batchDuration.Observe(duration)
}

// RecordSignal records the outcome of one signal evaluation. Reason is
// empty for evaluated signals.
func (r *Registry) RecordSignal(outcome, reason string) {
	r.signalsEvaluated.WithLabelValues(outcome, reason).Inc()
}

// RecordPriceFetch records one provider call.
func (r *Registry) RecordPriceFetch(status string, duration float64) {
	r.priceFetches.WithLabelValues(status).Inc()
	r.priceFetchDuration.Observe(duration)
}

// JobStarted increments the active jobs gauge.
func (r *Registry) JobStarted() {
	r.jobsActive.Inc()
}

// JobFinished decrements the active jobs gauge.
func (r *Registry) JobFinished() {
	r.jobsActive.Dec()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
