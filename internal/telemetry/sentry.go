// Package telemetry initializes Sentry error reporting and connects it to the
// errors package, so every built EnhancedError is captured once.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// flushTimeout bounds Flush on shutdown.
const flushTimeout = 2 * time.Second

var (
	initMu      sync.Mutex
	initialized bool
)

// Init configures the Sentry SDK from settings and installs the reporter for
// built errors. With telemetry disabled, or no DSN, it installs a disabled
// reporter and returns nil.
func Init(settings *conf.Settings, version string, log logger.Logger) error {
	return initWithTransport(settings, version, log, nil)
}

func initWithTransport(settings *conf.Settings, version string, log logger.Logger, transport sentry.Transport) error {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.Module("telemetry")

	initMu.Lock()
	defer initMu.Unlock()

	if !settings.Sentry.Enabled || settings.Sentry.DSN == "" {
		errors.SetTelemetryReporter(errors.NewSentryReporter(false))
		initialized = false
		log.Debug("error telemetry disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      settings.Main.Environment,
		ServerName:       "",
		Release:          fmt.Sprintf("studio-landing@%s", version),
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized = true
	log.Info("error telemetry enabled", logger.String("environment", settings.Main.Environment))
	return nil
}

// Flush waits for queued events to be delivered.
func Flush() {
	initMu.Lock()
	enabled := initialized
	initMu.Unlock()
	if enabled {
		sentry.Flush(flushTimeout)
	}
}

// applyPrivacyFilters drops identifying data and scrubs free text. Sign-up
// events carry email addresses, which must never leave the service.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil
	event.Message = errors.ScrubMessage(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = errors.ScrubMessage(event.Exception[i].Value)
	}

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}

	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = errors.ScrubMessage(s)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}
