// Package httpcontroller serves the localized landing pages and mounts the JSON API.
package httpcontroller

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/acme/autocert"

	"github.com/sofi-fitness/studio-landing/internal/api"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability"
	"github.com/sofi-fitness/studio-landing/internal/tracking"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// Server encapsulates the Echo server and the page dependencies.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Content  *content.Store
	Stats    *waitlist.Service
	API      *api.Controller
	Jar      *tracking.Jar
	Metrics  *observability.Metrics

	now func() time.Time
	log logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithContent sets the content store. Defaults to a fresh content.New() store.
func WithContent(store *content.Store) Option {
	return func(s *Server) { s.Content = store }
}

// WithStats sets the waitlist stats shown on the home page.
func WithStats(stats *waitlist.Service) Option {
	return func(s *Server) { s.Stats = stats }
}

// WithAPI mounts the JSON API controller.
func WithAPI(c *api.Controller) Option {
	return func(s *Server) { s.API = c }
}

// WithJar sets the tracking cookie jar.
func WithJar(j *tracking.Jar) Option {
	return func(s *Server) { s.Jar = j }
}

// WithMetrics enables request metrics and the exposition endpoint.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the server and registers middleware and routes.
func New(settings *conf.Settings, opts ...Option) (*Server, error) {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		now:      time.Now,
		log:      logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Module("http")

	if s.Content == nil {
		store, err := content.New()
		if err != nil {
			return nil, err
		}
		s.Content = store
	}
	s.Content.SetStreamConfig(content.StreamConfig{
		CustomerSubdomain: settings.Media.CustomerSubdomain,
		Override:          s.streamOverride,
	})
	if s.Stats == nil {
		s.Stats = waitlist.NewService(nil, waitlist.WithCapacity(settings.Waitlist.Capacity))
	}
	if s.Jar == nil {
		jar, err := tracking.NewJar(settings.Cookies.Secret, settings.Cookies.MaxAge, settings.IsProduction())
		if err != nil {
			return nil, err
		}
		s.Jar = jar
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = goJSONSerializer{}
	s.Echo.HTTPErrorHandler = s.errorHandler
	if settings.WebServer.TrustProxy {
		s.Echo.IPExtractor = api.ClientIP
	} else {
		s.Echo.IPExtractor = echo.ExtractIPDirect()
	}

	if err := s.setupTemplateRenderer(); err != nil {
		return nil, err
	}
	s.configureMiddleware()
	s.initRoutes()
	return s, nil
}

// streamOverride reads stream overrides from the live settings so config
// file edits apply without a restart.
func (s *Server) streamOverride(base, kind string) string {
	settings := conf.GetSettings()
	if settings == nil {
		settings = s.Settings
	}
	return settings.Media.StreamOverride(base, kind)
}

// Address returns the listen address.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Settings.WebServer.Host, s.Settings.WebServer.Port)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ws := s.Settings.WebServer
	errCh := make(chan error, 1)

	go func() {
		var err error
		if ws.AutoTLS.Enabled {
			s.Echo.AutoTLSManager.Prompt = autocert.AcceptTOS
			s.Echo.AutoTLSManager.Cache = autocert.DirCache(ws.AutoTLS.CacheDir)
			s.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(ws.AutoTLS.Domains...)
			s.Echo.Server.ReadTimeout = ws.ReadTimeout
			s.Echo.Server.WriteTimeout = ws.WriteTimeout
			err = s.Echo.StartAutoTLS(s.Address())
		} else {
			err = s.Echo.StartServer(&http.Server{
				Addr:              s.Address(),
				ReadTimeout:       ws.ReadTimeout,
				ReadHeaderTimeout: ws.ReadTimeout,
				WriteTimeout:      ws.WriteTimeout,
			})
		}
		errCh <- err
	}()

	s.log.Info("http server started",
		logger.String("address", s.Address()),
		logger.Bool("auto_tls", ws.AutoTLS.Enabled))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New(err).
			Component("http").
			Category(errors.CategoryNetwork).
			Context("address", s.Address()).
			Build()
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	timeout := s.Settings.WebServer.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("http server shutting down", logger.Duration("timeout", timeout))
	if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.New(err).Component("http").Category(errors.CategoryNetwork).Build()
	}
	return nil
}
