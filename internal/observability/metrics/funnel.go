package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FunnelMetrics tracks the waitlist funnel: webhooks, signups, referrals,
// analytics events and their side effects.
type FunnelMetrics struct {
	webhooksTotal      *prometheus.CounterVec
	webhookDuration    prometheus.Histogram
	subscriptionsTotal *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	referralChecks     *prometheus.CounterVec
	analyticsEvents    *prometheus.CounterVec
	waitlistCount      prometheus.Gauge
}

// NewFunnelMetrics creates and registers funnel metrics.
func NewFunnelMetrics(registry *prometheus.Registry) (*FunnelMetrics, error) {
	m := &FunnelMetrics{
		webhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_webhooks_total",
				Help: "Identity webhooks by event type and outcome",
			},
			[]string{"event_type", "outcome"}, // outcome: created, merged, waitlist_entry, idempotent, ignored, rejected, error
		),
		webhookDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "funnel_webhook_duration_seconds",
				Help:    "Time taken to ingest a verified webhook",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
			},
		),
		subscriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_email_subscriptions_total",
				Help: "Email-marketing subscription attempts by result",
			},
			[]string{"result"}, // ok, missing-config, request-failed, invalid-response
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_operator_notifications_total",
				Help: "Operator notifications by status",
			},
			[]string{"status"},
		),
		referralChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_referral_checks_total",
				Help: "Referral code checks by result",
			},
			[]string{"result"}, // valid, unknown, invalid, unavailable, error
		),
		analyticsEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_analytics_events_total",
				Help: "Client analytics events by status",
			},
			[]string{"status"},
		),
		waitlistCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "funnel_waitlist_entries",
				Help: "Waitlist entries at the last count refresh",
			},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *FunnelMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.webhooksTotal,
		m.webhookDuration,
		m.subscriptionsTotal,
		m.notificationsTotal,
		m.referralChecks,
		m.analyticsEvents,
		m.waitlistCount,
	}
}

// Describe implements prometheus.Collector.
func (m *FunnelMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *FunnelMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// The recorders below are safe on a nil receiver so callers without
// metrics need no guards.

// RecordWebhook counts one webhook outcome and its handling time.
func (m *FunnelMetrics) RecordWebhook(eventType, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(eventType, outcome).Inc()
	m.webhookDuration.Observe(seconds)
}

// RecordSubscription counts one subscription attempt.
func (m *FunnelMetrics) RecordSubscription(result string) {
	if m == nil {
		return
	}
	m.subscriptionsTotal.WithLabelValues(result).Inc()
}

// RecordNotification counts one operator notification.
func (m *FunnelMetrics) RecordNotification(status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(status).Inc()
}

// RecordReferralCheck counts one referral code check.
func (m *FunnelMetrics) RecordReferralCheck(result string) {
	if m == nil {
		return
	}
	m.referralChecks.WithLabelValues(result).Inc()
}

// RecordAnalyticsEvent counts one analytics ingestion.
func (m *FunnelMetrics) RecordAnalyticsEvent(status string) {
	if m == nil {
		return
	}
	m.analyticsEvents.WithLabelValues(status).Inc()
}

// SetWaitlistCount publishes the latest waitlist size.
func (m *FunnelMetrics) SetWaitlistCount(count int) {
	if m == nil {
		return
	}
	m.waitlistCount.Set(float64(count))
}
