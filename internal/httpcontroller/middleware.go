package httpcontroller

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/tracking"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.initLogger()
	s.Echo.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.requestIDMiddleware())
	s.Echo.Use(s.requestLoggerMiddleware())
	s.Echo.Use(s.MetricsMiddleware())
	s.Echo.Use(s.SecureMiddleware())
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.CacheControlMiddleware())
	s.Echo.Use(s.LocaleMiddleware())
}

// MetricsMiddleware records request counts and latency per route template.
func (s *Server) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if s.Metrics == nil {
			return next
		}
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			s.Metrics.HTTP.RecordRequest(c.Request().Method, route,
				c.Response().Status, time.Since(start).Seconds(), c.Response().Size)
			return nil
		}
	}
}

// SecureMiddleware sets the standard security headers; HSTS only in production.
func (s *Server) SecureMiddleware() echo.MiddlewareFunc {
	cfg := middleware.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	if s.Settings.IsProduction() {
		cfg.HSTSMaxAge = 31536000
	}
	return middleware.SecureWithConfig(cfg)
}

// GzipMiddleware configures Gzip compression for the server
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == s.metricsPath()
		},
	})
}

// CacheControlMiddleware sets cache headers by path. API routes set their own.
func (s *Server) CacheControlMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			h := c.Response().Header()

			switch {
			case strings.HasPrefix(p, "/api/"):
			case strings.HasPrefix(p, "/static/"):
				h.Set("Cache-Control", "public, max-age=3600, must-revalidate")
			case strings.HasPrefix(p, "/images/"):
				h.Set("Cache-Control", "public, max-age=604800, immutable")
			case p == "/sitemap.xml", p == "/robots.txt":
				h.Set("Cache-Control", "public, max-age=3600")
			default:
				h.Set("Cache-Control", "public, max-age=0, must-revalidate")
				h.Add("Vary", "Accept-Language")
			}
			return next(c)
		}
	}
}

// LocaleMiddleware redirects paths without a locale segment to the visitor's
// locale and stores UTM and referral parameters in tracking cookies.
func (s *Server) LocaleMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if skipLocale(req.URL.Path, s.metricsPath()) {
				return next(c)
			}

			s.setTrackingCookies(c)

			if _, ok := i18n.PathLocale(req.URL.Path); ok {
				return next(c)
			}
			locale := i18n.LocaleFromAcceptLanguage(req.Header.Get("Accept-Language"))
			target := i18n.ReplacePathLocale(req.URL.Path, locale)
			if req.URL.RawQuery != "" {
				target += "?" + req.URL.RawQuery
			}
			return c.Redirect(http.StatusTemporaryRedirect, target)
		}
	}
}

// setTrackingCookies writes landing_utm and landing_ref from the query string.
func (s *Server) setTrackingCookies(c echo.Context) {
	q := c.QueryParams()
	if utm, ok := tracking.UTMFromQuery(q); ok {
		cookie, err := s.Jar.UTMCookieFor(utm)
		if err != nil {
			s.log.WithContext(c.Request().Context()).Warn("failed to encode utm cookie", logger.Error(err))
		} else {
			c.SetCookie(cookie)
		}
	}
	if ref := q.Get("ref"); ref != "" {
		c.SetCookie(s.Jar.RawReferralCookie(ref))
	}
}

// skipLocale reports whether p is served without locale handling: the API,
// embedded assets, the metrics endpoint and anything that looks like a file.
func skipLocale(p, metricsPath string) bool {
	switch {
	case p == "/api" || strings.HasPrefix(p, "/api/"):
		return true
	case strings.HasPrefix(p, "/static/"):
		return true
	case metricsPath != "" && p == metricsPath:
		return true
	}
	return strings.Contains(path.Base(p), ".")
}

// metricsPath returns the exposition path, or "" when metrics are off.
func (s *Server) metricsPath() string {
	if s.Metrics == nil || !s.Settings.Metrics.Enabled {
		return ""
	}
	if s.Settings.Metrics.Path == "" {
		return "/metrics"
	}
	return s.Settings.Metrics.Path
}
