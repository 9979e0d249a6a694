// Package notification sends operator notifications for waitlist signups
// through shoutrrr service URLs.
package notification

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"slices"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// DefaultTimeout bounds one delivery to all services.
const DefaultTimeout = 10 * time.Second

// Message is one notification.
type Message struct {
	Title string
	Body  string
}

// sender is the subset of shoutrrr's router used here.
type sender interface {
	Send(message string, params *stypes.Params) []error
}

// Service delivers messages to every configured URL. The zero value and a
// nil *Service are disabled and drop messages.
type Service struct {
	sender sender
	log    logger.Logger
}

// New builds a service from settings. Disabled settings, or enabled settings
// without URLs, yield a disabled service.
func New(settings conf.NotifySettings, lg logger.Logger) (*Service, error) {
	if lg == nil {
		lg = logger.NewNopLogger()
	}
	s := &Service{log: lg.Module("notification")}

	urls := slices.DeleteFunc(slices.Clone(settings.URLs), func(u string) bool {
		return strings.TrimSpace(u) == ""
	})
	if !settings.Enabled || len(urls) == 0 {
		return s, nil
	}

	router, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, errors.New(fmt.Errorf("notification urls: %s", redactURLs(err.Error()))).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("url_count", len(urls)).
			Build()
	}
	router.Timeout = DefaultTimeout
	router.SetLogger(log.New(io.Discard, "", 0))
	s.sender = router
	s.log.Info("operator notifications enabled", logger.Int("services", len(urls)))
	return s, nil
}

// Enabled reports whether messages are delivered.
func (s *Service) Enabled() bool {
	return s != nil && s.sender != nil
}

// Notify delivers msg. Every failed service is joined into the returned error.
func (s *Service) Notify(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	if msg.Title != "" {
		params.SetTitle(msg.Title)
	}

	var failures []error
	for _, err := range s.sender.Send(msg.Body, &params) {
		if err != nil {
			failures = append(failures, errors.NewStd(redactURLs(err.Error())))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New(errors.Join(failures...)).
		Component("notification").
		Category(errors.CategoryIntegration).
		Priority(errors.PriorityLow).
		Context("failed_services", len(failures)).
		Build()
}

var credentialPattern = regexp.MustCompile(`([a-z0-9+.-]+://)[^@/\s]+@`)

// redactURLs hides the credential part of service URLs in shoutrrr errors.
func redactURLs(s string) string {
	return errors.ScrubMessage(credentialPattern.ReplaceAllString(s, "${1}[REDACTED]@"))
}
