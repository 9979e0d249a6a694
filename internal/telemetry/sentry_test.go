package telemetry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
)

// recordingTransport keeps events in memory instead of sending them.
type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(_ sentry.ClientOptions) {}

func (t *recordingTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTransport) Flush(time.Duration) bool { return true }

func (t *recordingTransport) FlushWithContext(context.Context) bool { return true }

func (t *recordingTransport) Close() {}

func (t *recordingTransport) Events() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func sentrySettings() *conf.Settings {
	s := &conf.Settings{}
	s.Main.Environment = conf.EnvTest
	s.Sentry.Enabled = true
	s.Sentry.DSN = "https://public@sentry.example.com/1"
	return s
}

func TestInitDisabled(t *testing.T) {
	s := sentrySettings()
	s.Sentry.Enabled = false
	require.NoError(t, Init(s, "1.0.0", nil))
	Flush()
}

func TestBuiltErrorsAreReportedScrubbed(t *testing.T) {
	transport := &recordingTransport{}
	require.NoError(t, initWithTransport(sentrySettings(), "1.2.3", nil, transport))
	t.Cleanup(func() {
		errors.SetTelemetryReporter(errors.NewSentryReporter(false))
	})

	ee := errors.New(fmt.Errorf("subscribe failed for anna@example.com")).
		Component("convertkit").
		Category(errors.CategoryIntegration).
		Context("email", "anna@example.com").
		Build()
	assert.True(t, ee.IsReported())

	events := transport.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.NotContains(t, event.Message, "anna@example.com")
	assert.Contains(t, event.Message, "[EMAIL_REDACTED]")
	assert.Equal(t, "convertkit", event.Tags["component"])
	assert.Equal(t, "studio-landing@1.2.3", event.Release)
	assert.Empty(t, event.ServerName)
	require.NotEmpty(t, event.Exception)
	assert.NotContains(t, event.Exception[0].Value, "anna@example.com")
}

func TestApplyPrivacyFilters(t *testing.T) {
	event := sentry.NewEvent()
	event.Message = "webhook whsec_abc123 rejected"
	event.ServerName = "web-1"
	event.User = sentry.User{Email: "anna@example.com"}
	event.Tags = map[string]string{"hostname": "web-1", "component": "api"}
	event.Extra = map[string]any{"detail": "from anna@example.com", "count": 3}
	event.Contexts = map[string]sentry.Context{"os": {"name": "linux"}, "trace": {}}

	out := applyPrivacyFilters(event)
	assert.Equal(t, "webhook [SECRET_REDACTED] rejected", out.Message)
	assert.Empty(t, out.ServerName)
	assert.True(t, out.User.IsEmpty())
	assert.NotContains(t, out.Tags, "hostname")
	assert.Equal(t, "api", out.Tags["component"])
	assert.Equal(t, "from [EMAIL_REDACTED]", out.Extra["detail"])
	assert.Equal(t, 3, out.Extra["count"])
	assert.NotContains(t, out.Contexts, "os")
	assert.Contains(t, out.Contexts, "trace")
}
