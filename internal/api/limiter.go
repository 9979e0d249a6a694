package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
)

const limiterIdleTTL = 10 * time.Minute

// clientLimiter keeps one token bucket per client IP. Buckets idle for
// limiterIdleTTL are dropped.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *cache.Cache
}

// newClientLimiter returns nil when perSecond is not positive, which disables limiting.
func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: cache.New(limiterIdleTTL, limiterIdleTTL),
	}
}

func (l *clientLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.limiters.Get(ip); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// Refresh the expiry on every hit.
	l.limiters.SetDefault(ip, lim)
	return lim.Allow()
}

// rateLimit rejects clients over the analytics budget with 429.
func (c *Controller) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ip := ctx.RealIP()
		if !c.limiter.allow(ip) {
			c.log.Debug("analytics rate limited", logger.String("ip", ip))
			c.metrics.RecordAnalyticsEvent(metrics.StatusLimited)
			return ctx.JSON(http.StatusTooManyRequests, map[string]any{
				"ok":      false,
				"message": "Too many requests.",
			})
		}
		return next(ctx)
	}
}
