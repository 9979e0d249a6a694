package api

import (
	"bytes"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
)

// AnalyticsRequest is the body of POST /api/analytics.
type AnalyticsRequest struct {
	Event    *string         `json:"event"`
	Section  json.RawMessage `json:"section"`
	Metadata json.RawMessage `json:"metadata"`
}

// AnalyticsResponse is the reply of POST /api/analytics.
type AnalyticsResponse struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message,omitempty"`
}

// parse validates the request: event is required and non-empty, section is a
// non-empty string when present (null is rejected), metadata is a JSON object
// when given.
func (r AnalyticsRequest) parse() (event string, section *string, meta map[string]any, ok bool) {
	if r.Event == nil || *r.Event == "" {
		return "", nil, nil, false
	}
	if raw := bytes.TrimSpace(r.Section); len(raw) > 0 {
		var value string
		if bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &value) != nil || value == "" {
			return "", nil, nil, false
		}
		section = &value
	}
	meta = map[string]any{}
	if raw := bytes.TrimSpace(r.Metadata); len(raw) > 0 {
		if raw[0] != '{' {
			return "", nil, nil, false
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return "", nil, nil, false
		}
	}
	return *r.Event, section, meta, true
}

// TrackEvent handles POST /api/analytics. The locale comes from x-locale and
// the user agent is added to the metadata.
func (c *Controller) TrackEvent(ctx echo.Context) error {
	var req AnalyticsRequest
	body, err := readBody(ctx)
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	event, section, meta, ok := req.parse()
	if err != nil || !ok {
		return ctx.JSON(http.StatusBadRequest, AnalyticsResponse{Message: "Invalid payload."})
	}

	locale := ctx.Request().Header.Get("x-locale")
	if !i18n.IsLocale(locale) {
		locale = i18n.DefaultLocale.String()
	}
	userAgent := ctx.Request().UserAgent()
	if userAgent == "" {
		userAgent = "unknown"
	}
	meta["userAgent"] = userAgent

	if c.store == nil {
		c.metrics.RecordAnalyticsEvent(metrics.StatusSkipped)
		return ctx.JSON(http.StatusOK, AnalyticsResponse{OK: true, Skipped: true})
	}

	reqCtx := ctx.Request().Context()
	record := &datastore.AnalyticsEvent{
		Event:    event,
		Section:  section,
		Locale:   locale,
		Metadata: meta,
	}
	if err := c.store.SaveAnalyticsEvent(reqCtx, record); err != nil {
		c.metrics.RecordAnalyticsEvent(metrics.StatusError)
		c.log.WithContext(reqCtx).Warn("analytics event not stored",
			logger.String("event", event),
			logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, AnalyticsResponse{Message: errors.ScrubMessage(err.Error())})
	}

	c.metrics.RecordAnalyticsEvent(metrics.StatusSuccess)
	return ctx.JSON(http.StatusOK, AnalyticsResponse{OK: true})
}
