// Package api implements the JSON routes under /api.
package api

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/clerk"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/funnel"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
	"github.com/sofi-fitness/studio-landing/internal/tracking"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// maxBodyBytes bounds request bodies read by the JSON handlers.
const maxBodyBytes = 64 << 10

// errBodyTooLarge is returned by readBody for bodies over maxBodyBytes.
var errBodyTooLarge = errors.NewStd("request body too large")

// Controller serves the /api routes.
type Controller struct {
	settings *conf.Settings
	store    datastore.Interface
	stats    *waitlist.Service
	ingestor *funnel.Ingestor
	verifier *clerk.Verifier
	jar      *tracking.Jar
	limiter  *clientLimiter
	metrics  *metrics.FunnelMetrics
	version  string
	started  time.Time
	log      logger.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore sets the waitlist store. Without one the routes report the
// database as unavailable.
func WithStore(store datastore.Interface) Option {
	return func(c *Controller) { c.store = store }
}

// WithStats sets the waitlist stats service.
func WithStats(stats *waitlist.Service) Option {
	return func(c *Controller) { c.stats = stats }
}

// WithIngestor sets the webhook ingestor.
func WithIngestor(i *funnel.Ingestor) Option {
	return func(c *Controller) { c.ingestor = i }
}

// WithVerifier overrides the webhook verifier built from the settings.
func WithVerifier(v *clerk.Verifier) Option {
	return func(c *Controller) { c.verifier = v }
}

// WithJar sets the cookie jar.
func WithJar(j *tracking.Jar) Option {
	return func(c *Controller) { c.jar = j }
}

// WithMetrics sets the funnel metrics.
func WithMetrics(m *metrics.FunnelMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithVersion sets the version reported by the health route.
func WithVersion(version string) Option {
	return func(c *Controller) { c.version = version }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a controller. The webhook verifier is built from
// settings.Clerk unless WithVerifier is given; a missing secret leaves the
// webhook route answering 500.
func New(settings *conf.Settings, opts ...Option) (*Controller, error) {
	c := &Controller{
		settings: settings,
		version:  "unknown",
		started:  time.Now(),
		log:      logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Module("api")

	if c.verifier == nil && settings.Clerk.WebhookSecret != "" {
		v, err := clerk.NewVerifier(settings.Clerk.WebhookSecret, settings.Clerk.SignatureTolerance)
		if err != nil {
			return nil, err
		}
		c.verifier = v
	}
	if c.jar == nil {
		jar, err := tracking.NewJar(settings.Cookies.Secret, settings.Cookies.MaxAge, settings.IsProduction())
		if err != nil {
			return nil, err
		}
		c.jar = jar
	}
	if c.stats == nil {
		c.stats = waitlist.NewService(c.store,
			waitlist.WithCapacity(settings.Waitlist.Capacity),
			waitlist.WithCountTTL(settings.Waitlist.CountCacheTTL),
			waitlist.WithLogger(c.log))
	}
	if c.ingestor == nil {
		c.ingestor = funnel.NewIngestor(c.store,
			funnel.WithStats(c.stats),
			funnel.WithMetrics(c.metrics),
			funnel.WithSiteName(settings.Main.Name),
			funnel.WithLogger(c.log))
	}
	c.limiter = newClientLimiter(settings.Analytics.RateLimit, settings.Analytics.Burst)
	return c, nil
}

// RegisterRoutes mounts the routes on e.
func (c *Controller) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", c.HealthCheck)
	g.GET("/waitlist/count", c.WaitlistCount)
	g.POST("/waitlist/referral", c.ValidateReferral)
	g.POST("/analytics", c.TrackEvent, c.rateLimit)
	g.POST("/webhooks/clerk", c.ClerkWebhook)
}

// ErrorResponse is the body of unexpected failures.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an ErrorResponse with a fresh correlation id.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	return &ErrorResponse{
		Error:         errText,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID(),
	}
}

// HandleError logs err with a correlation id and writes an ErrorResponse.
// The error text is not exposed to clients.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)
	c.log.WithContext(ctx.Request().Context()).Error(message,
		logger.Error(err),
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("ip", ctx.RealIP()))
	resp.Error = http.StatusText(code)
	return ctx.JSON(code, resp)
}

func correlationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// readBody reads the request body, failing with errBodyTooLarge instead of
// truncating it.
func readBody(ctx echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// ClientIP resolves the client address behind Cloudflare or a reverse proxy:
// CF-Connecting-IP, then the rightmost public X-Forwarded-For entry, then
// X-Real-IP, then the connection address. Entries left of the nearest public
// hop are client-supplied and are not used.
func ClientIP(req *http.Request) string {
	if ip := net.ParseIP(strings.TrimSpace(req.Header.Get("CF-Connecting-IP"))); ip != nil {
		return ip.String()
	}
	if ip := forwardedFor(req.Header.Get(echo.HeaderXForwardedFor)); ip != nil {
		return ip.String()
	}
	if ip := net.ParseIP(strings.TrimSpace(req.Header.Get(echo.HeaderXRealIP))); ip != nil {
		return ip.String()
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// forwardedFor walks X-Forwarded-For from the right, skipping private and
// loopback hops added by our own proxies. When every hop is internal the
// leftmost valid one is returned.
func forwardedFor(xff string) net.IP {
	if xff == "" {
		return nil
	}
	parts := strings.Split(xff, ",")
	var internal net.IP
	for i := len(parts) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(parts[i]))
		if ip == nil {
			continue
		}
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			internal = ip
			continue
		}
		return ip
	}
	return internal
}
