package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboundMetrics tracks requests made through the shared HTTP client.
type OutboundMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewOutboundMetrics creates and registers outbound request metrics.
func NewOutboundMetrics(registry *prometheus.Registry) (*OutboundMetrics, error) {
	m := &OutboundMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbound_requests_total",
				Help: "Outbound HTTP requests by host and status",
			},
			[]string{"host", "status"}, // status: HTTP code, or "error" for transport failures
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outbound_request_duration_seconds",
				Help:    "Outbound HTTP request latency",
				Buckets: prometheus.ExponentialBuckets(BucketStart100ms/10, BucketFactor2, BucketCount12),
			},
			[]string{"host"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *OutboundMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *OutboundMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
}

// Observe matches the httpclient after-response hook signature.
func (m *OutboundMetrics) Observe(req *http.Request, resp *http.Response, err error, elapsed time.Duration) {
	if m == nil || req == nil || req.URL == nil {
		return
	}
	status := StatusError
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	host := req.URL.Host
	m.requestsTotal.WithLabelValues(host, status).Inc()
	m.requestDuration.WithLabelValues(host).Observe(elapsed.Seconds())
}
