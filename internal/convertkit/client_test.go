package convertkit

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/httpclient"
)

const subscribeURL = "https://api.convertkit.com/v3/forms/4242/subscribe"

func newMockedClient(t *testing.T, settings conf.ConvertKitSettings) *Client {
	t.Helper()
	hc := httpclient.New(nil)
	httpmock.ActivateNonDefault(hc.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(settings, WithHTTPClient(hc))
}

func configured() conf.ConvertKitSettings {
	return conf.ConvertKitSettings{APIKey: "key_123", FormID: "4242"}
}

func TestSubscribeMissingConfig(t *testing.T) {
	for _, s := range []conf.ConvertKitSettings{
		{},
		{APIKey: "key_123"},
		{FormID: "4242"},
		{APIKey: "  ", FormID: "4242"},
	} {
		c := newMockedClient(t, s)
		res := c.Subscribe(t.Context(), "a@b.am", "Ani")
		assert.False(t, res.OK)
		assert.Equal(t, ReasonMissingConfig, res.Reason)
		assert.Zero(t, httpmock.GetTotalCallCount())
	}
}

func TestSubscribeSendsPayload(t *testing.T) {
	c := newMockedClient(t, configured())

	var got map[string]any
	httpmock.RegisterResponder(http.MethodPost, subscribeURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK, `{"subscription":{"id":98765}}`), nil
		})

	res := c.Subscribe(t.Context(), "ani@example.am", "Ani")
	assert.True(t, res.OK)
	assert.Empty(t, res.Reason)
	assert.Equal(t, map[string]any{"api_key": "key_123", "email": "ani@example.am", "first_name": "Ani"}, got)
}

func TestSubscribeOmitsEmptyFirstName(t *testing.T) {
	c := newMockedClient(t, configured())

	var got map[string]any
	httpmock.RegisterResponder(http.MethodPost, subscribeURL,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})

	res := c.Subscribe(t.Context(), "ani@example.am", "")
	assert.True(t, res.OK)
	assert.NotContains(t, got, "first_name")
}

func TestSubscribeResults(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Result
	}{
		{"subscription with numeric id", http.StatusOK, `{"subscription":{"id":1,"state":"inactive"}}`, Result{OK: true}},
		{"no subscription member", http.StatusCreated, `{"message":"queued"}`, Result{OK: true}},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, Result{Reason: ReasonRequestFailed}},
		{"unauthorized", http.StatusUnauthorized, `{}`, Result{Reason: ReasonRequestFailed}},
		{"not json", http.StatusOK, `<html>`, Result{Reason: ReasonInvalidResponse}},
		{"json array", http.StatusOK, `[]`, Result{Reason: ReasonInvalidResponse}},
		{"json null", http.StatusOK, `null`, Result{Reason: ReasonInvalidResponse}},
		{"string id", http.StatusOK, `{"subscription":{"id":"1"}}`, Result{Reason: ReasonInvalidResponse}},
		{"missing id", http.StatusOK, `{"subscription":{}}`, Result{Reason: ReasonInvalidResponse}},
		{"null subscription", http.StatusOK, `{"subscription":null}`, Result{Reason: ReasonInvalidResponse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockedClient(t, configured())
			httpmock.RegisterResponder(http.MethodPost, subscribeURL,
				httpmock.NewStringResponder(tt.status, tt.body))

			res := c.Subscribe(t.Context(), "a@b.am", "")
			assert.Equal(t, tt.want.OK, res.OK)
			assert.Equal(t, tt.want.Reason, res.Reason)
			if !tt.want.OK {
				assert.Error(t, res.Err)
			}
		})
	}
}

func TestSubscribeTransportError(t *testing.T) {
	c := newMockedClient(t, configured())
	httpmock.RegisterResponder(http.MethodPost, subscribeURL,
		httpmock.NewErrorResponder(assert.AnError))

	res := c.Subscribe(t.Context(), "a@b.am", "")
	assert.False(t, res.OK)
	assert.Equal(t, ReasonRequestFailed, res.Reason)
	assert.ErrorIs(t, res.Err, assert.AnError)
}

func TestNewBaseURL(t *testing.T) {
	c := New(conf.ConvertKitSettings{BaseURL: "https://kit.example/"})
	assert.Equal(t, "https://kit.example", c.baseURL)
	assert.Equal(t, DefaultBaseURL, New(conf.ConvertKitSettings{}).baseURL)
	assert.False(t, New(conf.ConvertKitSettings{}).Configured())
}
