// Package convertkit subscribes waitlist members to the email-marketing form.
package convertkit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/httpclient"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// DefaultBaseURL is the public API host.
const DefaultBaseURL = "https://api.convertkit.com"

// Reason explains a failed subscription.
type Reason string

const (
	ReasonMissingConfig   Reason = "missing-config"
	ReasonRequestFailed   Reason = "request-failed"
	ReasonInvalidResponse Reason = "invalid-response"
)

// Result is the outcome of Subscribe. Reason is empty when OK.
type Result struct {
	OK     bool
	Reason Reason
	Err    error // underlying failure, if any
}

func failed(reason Reason, err error) Result {
	return Result{Reason: reason, Err: err}
}

// Client talks to the forms API.
type Client struct {
	http    *httpclient.Client
	apiKey  string
	formID  string
	baseURL string
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the outbound client.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client from settings. A client without API key or form id is
// valid and reports ReasonMissingConfig on every call.
func New(settings conf.ConvertKitSettings, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(settings.APIKey),
		formID:  strings.TrimSpace(settings.FormID),
		baseURL: strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/"),
		log:     logger.NewNopLogger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New(&httpclient.Config{DefaultTimeout: settings.Timeout})
	}
	c.log = c.log.Module("convertkit")
	return c
}

// Configured reports whether API key and form id are set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.formID != ""
}

type subscribeRequest struct {
	APIKey    string `json:"api_key"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

// Subscribe adds email to the configured form. firstName is omitted when empty.
func (c *Client) Subscribe(ctx context.Context, email, firstName string) Result {
	if !c.Configured() {
		return failed(ReasonMissingConfig, nil)
	}

	endpoint := fmt.Sprintf("%s/v3/forms/%s/subscribe", c.baseURL, url.PathEscape(c.formID))
	resp, err := c.http.PostJSON(ctx, endpoint, subscribeRequest{
		APIKey:    c.apiKey,
		Email:     email,
		FirstName: firstName,
	})
	if err != nil {
		return failed(ReasonRequestFailed, errors.New(err).
			Component("convertkit").
			Category(errors.CategoryNetwork).
			Build())
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return failed(ReasonRequestFailed, errors.New(err).
			Component("convertkit").
			Category(errors.CategoryNetwork).
			Build())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(ReasonRequestFailed, errors.Newf("subscribe returned status %d", resp.StatusCode).
			Component("convertkit").
			Category(errors.CategoryIntegration).
			Context("status", resp.StatusCode).
			Build())
	}

	if err := validateResponse(body); err != nil {
		return failed(ReasonInvalidResponse, errors.New(err).
			Component("convertkit").
			Category(errors.CategoryIntegration).
			Build())
	}
	return Result{OK: true}
}

// validateResponse accepts a JSON object whose optional subscription member
// is an object with a numeric id.
func validateResponse(body []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}
	if payload == nil {
		return errors.NewStd("response is null")
	}
	raw, ok := payload["subscription"]
	if !ok {
		return nil
	}
	sub, ok := raw.(map[string]any)
	if !ok {
		return errors.NewStd("subscription is not an object")
	}
	if _, ok := sub["id"].(float64); !ok {
		return errors.NewStd("subscription.id is not a number")
	}
	return nil
}
