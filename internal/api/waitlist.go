package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// ReferralResponse is the body of POST /api/waitlist/referral.
type ReferralResponse struct {
	Valid    bool      `json:"valid"`
	Message  string    `json:"message,omitempty"`
	Referrer *Referrer `json:"referrer,omitempty"`
}

// Referrer identifies a verified referrer.
type Referrer struct {
	Code string `json:"code"`
}

// WaitlistCount handles GET /api/waitlist/count.
func (c *Controller) WaitlistCount(ctx echo.Context) error {
	stats := c.stats.Stats(ctx.Request().Context())
	c.metrics.SetWaitlistCount(stats.Count)
	ctx.Response().Header().Set("Cache-Control", waitlist.CountCacheControl)
	return ctx.JSON(http.StatusOK, stats)
}

// ValidateReferral handles POST /api/waitlist/referral. A known code is
// stored in a signed landing_ref cookie.
func (c *Controller) ValidateReferral(ctx echo.Context) error {
	var req struct {
		Code *string `json:"code"`
	}
	body, err := readBody(ctx)
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil || req.Code == nil || !waitlist.ValidReferralCode(*req.Code) {
		c.metrics.RecordReferralCheck("invalid")
		return ctx.JSON(http.StatusBadRequest, ReferralResponse{Message: "Invalid referral code format."})
	}
	code := waitlist.NormalizeReferralCode(*req.Code)

	if c.store == nil {
		c.metrics.RecordReferralCheck("unavailable")
		return ctx.JSON(http.StatusServiceUnavailable, ReferralResponse{Message: "Referral system unavailable."})
	}

	reqCtx := ctx.Request().Context()
	if _, err := c.store.GetWaitlistEntryByReferralCode(reqCtx, code); err != nil {
		if errors.IsNotFound(err) {
			c.metrics.RecordReferralCheck("unknown")
			return ctx.JSON(http.StatusOK, ReferralResponse{})
		}
		c.metrics.RecordReferralCheck("error")
		return c.HandleError(ctx, err, "Referral lookup failed", http.StatusInternalServerError)
	}

	cookie, err := c.jar.SignedReferralCookie(code)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to set referral cookie", http.StatusInternalServerError)
	}
	ctx.SetCookie(cookie)
	c.metrics.RecordReferralCheck("valid")
	c.log.WithContext(reqCtx).Debug("referral accepted", logger.String("code", code))
	return ctx.JSON(http.StatusOK, ReferralResponse{Valid: true, Referrer: &Referrer{Code: code}})
}
