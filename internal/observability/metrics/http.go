package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for inbound HTTP requests.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	templateRender  *prometheus.HistogramVec
	templateErrors  *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"}, // route is the echo path template, e.g. /:locale/classes/:slug
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Time taken for HTTP requests",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
			},
			[]string{"method", "route"},
		),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(BucketStart100B, BucketFactor10, BucketCount6),
			},
			[]string{"method", "route"},
		),
		templateRender: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_template_render_duration_seconds",
				Help:    "Time taken to render page templates",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
			},
			[]string{"template"},
		),
		templateErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_template_render_errors_total",
				Help: "Total number of template render failures",
			},
			[]string{"template"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.templateRender,
		m.templateErrors,
	}
}

// Describe implements prometheus.Collector.
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordRequest records one served request. Safe on a nil receiver.
func (m *HTTPMetrics) RecordRequest(method, route string, status int, seconds float64, sizeBytes int64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
	if sizeBytes >= 0 {
		m.responseSize.WithLabelValues(method, route).Observe(float64(sizeBytes))
	}
}

// RecordTemplateRender records a template render; failed renders are counted separately.
func (m *HTTPMetrics) RecordTemplateRender(template string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.templateRender.WithLabelValues(template).Observe(seconds)
	if err != nil {
		m.templateErrors.WithLabelValues(template).Inc()
	}
}
