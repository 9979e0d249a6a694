package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/sofi-fitness/studio-landing/internal/logger"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	Environment    string  `json:"environment"`
	DatabaseStatus string  `json:"database_status"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	MemoryMB       float64 `json:"memory_mb,omitempty"`
}

// HealthCheck handles GET /api/health. A configured but unreachable
// database reports 503 so load balancers stop routing signups here.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.started)
	resp := HealthResponse{
		Status:         "healthy",
		Version:        c.version,
		Environment:    c.settings.Main.Environment,
		DatabaseStatus: "disabled",
		Uptime:         uptime.Round(time.Second).String(),
		UptimeSeconds:  int64(uptime.Seconds()),
		MemoryMB:       processMemoryMB(),
	}

	status := http.StatusOK
	if c.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := c.store.Ping(pingCtx); err != nil {
			c.log.Warn("health check database ping failed", logger.Error(err))
			resp.Status = "degraded"
			resp.DatabaseStatus = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.DatabaseStatus = "connected"
		}
	}
	return ctx.JSON(status, resp)
}

// processMemoryMB returns the resident set size of this process, or 0 when
// the platform does not expose it.
func processMemoryMB() float64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return 0
	}
	return float64(mem.RSS) / 1024 / 1024
}
