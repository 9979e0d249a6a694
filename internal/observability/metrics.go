// Package observability wires the Prometheus registry and its HTTP endpoint.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics
	Funnel   *metrics.FunnelMetrics
	Outbound *metrics.OutboundMetrics
}

// NewMetrics creates a registry with the Go runtime and process collectors and
// every application collector.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	funnelMetrics, err := metrics.NewFunnelMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create funnel metrics: %w", err)
	}

	outboundMetrics, err := metrics.NewOutboundMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbound metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		HTTP:     httpMetrics,
		Funnel:   funnelMetrics,
		Outbound: outboundMetrics,
	}, nil
}

// Registry exposes the registry, e.g. for tests that gather samples.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format. Collector errors are
// logged through log.
func (m *Metrics) Handler(log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promLogger{log.Module("metrics")},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// promLogger adapts logger.Logger to promhttp.Logger.
type promLogger struct {
	log logger.Logger
}

func (p promLogger) Println(v ...any) {
	p.log.Warn("metrics handler error", logger.String("detail", fmt.Sprint(v...)))
}
