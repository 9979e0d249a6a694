package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sofi-fitness/studio-landing/internal/clerk"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/funnel"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Webhook rejection messages.
const (
	MsgMissingSecret    = "Missing Clerk webhook secret."
	MsgMissingHeaders   = "Missing Svix headers."
	MsgInvalidSignature = "Invalid webhook signature."
	MsgPayloadTooLarge  = "Webhook payload too large."
)

// ClerkWebhook handles POST /api/webhooks/clerk: it verifies the Svix
// signature over the raw body and hands the event to the funnel.
func (c *Controller) ClerkWebhook(ctx echo.Context) error {
	if c.verifier == nil {
		return c.reject(ctx, funnel.Failure(http.StatusInternalServerError, MsgMissingSecret))
	}

	req := ctx.Request()
	body, err := readBody(ctx)
	if errors.Is(err, errBodyTooLarge) {
		c.log.WithContext(req.Context()).Warn("webhook body too large",
			logger.String("svix_id", req.Header.Get(clerk.HeaderID)),
			logger.Int64("content_length", req.ContentLength),
			logger.Int("limit", maxBodyBytes))
		return c.reject(ctx, funnel.Failure(http.StatusRequestEntityTooLarge, MsgPayloadTooLarge))
	}
	if err != nil {
		c.log.WithContext(req.Context()).Warn("webhook body unreadable", logger.Error(err))
		return c.reject(ctx, funnel.Failure(http.StatusBadRequest, MsgInvalidSignature))
	}

	headers := clerk.HeadersFrom(req.Header)
	if !headers.Complete() {
		return c.reject(ctx, funnel.Failure(http.StatusBadRequest, MsgMissingHeaders))
	}

	if err := c.verifier.Verify(headers, body); err != nil {
		c.log.WithContext(req.Context()).Warn("webhook signature rejected",
			logger.String("svix_id", headers.ID),
			logger.String("ip", ctx.RealIP()),
			logger.Error(err))
		return c.reject(ctx, funnel.Failure(http.StatusBadRequest, MsgInvalidSignature))
	}

	ev, err := clerk.ParseEvent(body)
	if err != nil {
		c.log.WithContext(req.Context()).Warn("webhook payload unreadable",
			logger.String("svix_id", headers.ID),
			logger.Error(err))
		return c.reject(ctx, funnel.Failure(http.StatusBadRequest, MsgInvalidSignature))
	}

	if !c.ingestor.Ready() {
		return c.reject(ctx, funnel.Failure(http.StatusInternalServerError, funnel.MsgDatabaseUnavailable))
	}

	outcome := c.ingestor.Handle(req.Context(), ev)
	return ctx.JSON(outcome.Status, outcome.Body)
}

func (c *Controller) reject(ctx echo.Context, outcome funnel.Outcome) error {
	c.metrics.RecordWebhook("unverified", outcome.Label(), 0)
	return ctx.JSON(outcome.Status, outcome.Body)
}
