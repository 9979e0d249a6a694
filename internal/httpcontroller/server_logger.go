package httpcontroller

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// echoLogAdapter adapts logger.Logger to the io.Writer echo's own logger writes to.
type echoLogAdapter struct {
	log logger.Logger
}

// Write implements io.Writer.
func (a *echoLogAdapter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		a.log.Info(msg)
	}
	return len(p), nil
}

// initLogger routes echo's internal logger through ours.
func (s *Server) initLogger() {
	s.Echo.Logger.SetOutput(&echoLogAdapter{log: s.log.Module("echo")})
	if s.Settings.Debug {
		s.Echo.Logger.SetLevel(glog.DEBUG)
	} else {
		s.Echo.Logger.SetLevel(glog.WARN)
	}
}

// requestIDMiddleware assigns X-Request-ID and stores it in the request
// context so every log line of the request carries it.
func (s *Server) requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))
		},
	})
}

// requestLoggerMiddleware logs one line per request.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	httpLogger := s.log.Module("request")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:          true,
		LogStatus:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogMethod:       true,
		LogError:        true,
		LogResponseSize: true,
		LogUserAgent:    true,
		LogReferer:      true,
		LogRequestID:    true,
		HandleError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == s.metricsPath()
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := logger.LogLevelInfo
			switch {
			case v.Status >= 500:
				level = logger.LogLevelError
			case v.Status >= 400:
				level = logger.LogLevelWarn
			case v.Status >= 300, strings.HasPrefix(v.URI, "/static/"):
				level = logger.LogLevelDebug
			}

			fields := []logger.Field{
				logger.String("remote_ip", v.RemoteIP),
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Float64("latency_ms", float64(v.Latency)/float64(time.Millisecond)),
			}
			if v.RequestID != "" {
				fields = append(fields, logger.String("request_id", v.RequestID))
			}
			if v.ResponseSize > 0 {
				fields = append(fields, logger.Int64("resp_size", v.ResponseSize))
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			if v.Status >= 400 || s.Settings.Debug {
				if v.UserAgent != "" {
					fields = append(fields, logger.String("user_agent", v.UserAgent))
				}
				if v.Referer != "" {
					fields = append(fields, logger.String("referer", v.Referer))
				}
			}

			httpLogger.Log(level, v.Method+" "+v.URI, fields...)
			return nil
		},
	})
}
