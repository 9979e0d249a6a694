package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sofi-fitness/studio-landing/internal/clerk"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/datastore/mocks"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/tracking"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

const (
	testWebhookSecret = "whsec_c3R1ZGlvLXllcmV2YW4tYXBpLXRlc3Qta2V5"
	testCookieSecret  = "0123456789abcdef0123456789abcdef"
)

func testSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Main.Name = "Sofi Fitness"
	s.Main.Environment = conf.EnvTest
	s.Clerk.WebhookSecret = testWebhookSecret
	s.Cookies.Secret = testCookieSecret
	s.Waitlist.Capacity = 100
	s.Analytics.RateLimit = 100
	s.Analytics.Burst = 100
	return s
}

func openStore(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "api.db")
	store := datastore.New(settings, nil)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// setupTestEnvironment returns an echo instance with the routes registered.
func setupTestEnvironment(t *testing.T, settings *conf.Settings, opts ...Option) (*echo.Echo, *Controller) {
	t.Helper()
	c, err := New(settings, opts...)
	require.NoError(t, err)
	e := echo.New()
	c.RegisterRoutes(e)
	return e, c
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func seedEntry(t *testing.T, store datastore.Interface, code string) {
	t.Helper()
	require.NoError(t, store.CreateWaitlistEntry(context.Background(), &datastore.WaitlistEntry{
		ClerkUserID:      "user_" + code,
		Email:            strings.ToLower(code) + "@example.am",
		ReferralCode:     code,
		WaitlistPosition: 1,
	}))
}

func TestNewRejectsMalformedWebhookSecret(t *testing.T) {
	s := testSettings()
	s.Clerk.WebhookSecret = "whsec_***"
	_, err := New(s)
	require.Error(t, err)
}

func TestWaitlistCount(t *testing.T) {
	t.Run("with entries", func(t *testing.T) {
		store := openStore(t)
		seedEntry(t, store, "AAAA1111")
		seedEntry(t, store, "BBBB2222")
		e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/waitlist/count", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, waitlist.CountCacheControl, rec.Header().Get("Cache-Control"))
		assert.JSONEq(t, `{"count":2,"spots_remaining":98}`, rec.Body.String())
	})

	t.Run("without store", func(t *testing.T) {
		e, _ := setupTestEnvironment(t, testSettings())
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/waitlist/count", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"spots_remaining":100}`, rec.Body.String())
	})
}

func TestValidateReferral(t *testing.T) {
	store := openStore(t)
	seedEntry(t, store, "KNOWN123")
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantCookie bool
	}{
		{"known code", `{"code":"KNOWN123"}`, http.StatusOK, `{"valid":true,"referrer":{"code":"KNOWN123"}}`, true},
		{"known code with spaces", `{"code":"  KNOWN123 "}`, http.StatusOK, `{"valid":true,"referrer":{"code":"KNOWN123"}}`, true},
		{"unknown code", `{"code":"NOPE1234"}`, http.StatusOK, `{"valid":false}`, false},
		{"too short", `{"code":"abc"}`, http.StatusBadRequest, `{"valid":false,"message":"Invalid referral code format."}`, false},
		{"bad charset", `{"code":"abc$def"}`, http.StatusBadRequest, `{"valid":false,"message":"Invalid referral code format."}`, false},
		{"not a string", `{"code":12345}`, http.StatusBadRequest, `{"valid":false,"message":"Invalid referral code format."}`, false},
		{"not json", `code=KNOWN123`, http.StatusBadRequest, `{"valid":false,"message":"Invalid referral code format."}`, false},
		{"empty body", ``, http.StatusBadRequest, `{"valid":false,"message":"Invalid referral code format."}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, postJSON("/api/waitlist/referral", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())

			cookies := rec.Result().Cookies()
			if !tt.wantCookie {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, tracking.ReferralCookie, c.Name)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.False(t, c.Secure, "not production")
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, 30*24*3600, c.MaxAge)
			assert.NotEqual(t, "KNOWN123", c.Value, "cookie is signed")
		})
	}
}

func TestValidateReferralSignedCookieRoundTrip(t *testing.T) {
	store := openStore(t)
	seedEntry(t, store, "KNOWN123")
	s := testSettings()
	s.Main.Environment = conf.EnvProduction
	jar, err := tracking.NewJar(s.Cookies.Secret, 0, true)
	require.NoError(t, err)
	e, _ := setupTestEnvironment(t, s, WithStore(store), WithJar(jar))

	rec := serve(e, postJSON("/api/waitlist/referral", `{"code":"KNOWN123"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	code, verified := jar.Referral(req)
	assert.Equal(t, "KNOWN123", code)
	assert.True(t, verified)
}

func TestValidateReferralUnavailable(t *testing.T) {
	e, _ := setupTestEnvironment(t, testSettings())
	rec := serve(e, postJSON("/api/waitlist/referral", `{"code":"KNOWN123"}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Referral system unavailable."}`, rec.Body.String())
}

func TestValidateReferralLookupError(t *testing.T) {
	store := new(mocks.MockDataStore)
	store.On("GetWaitlistEntryByReferralCode", mock.Anything, "KNOWN123").
		Return(nil, errors.Newf("connection reset").Category(errors.CategoryDatabase).Build())
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

	rec := serve(e, postJSON("/api/waitlist/referral", `{"code":"KNOWN123"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Referral lookup failed", body["message"])
	assert.Len(t, body["correlation_id"], 8)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	store.AssertExpectations(t)
}

func TestTrackEvent(t *testing.T) {
	store := openStore(t)
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

	req := postJSON("/api/analytics", `{"event":"section_view","section":"pricing","metadata":{"threshold":0.35,"userAgent":"spoofed"}}`)
	req.Header.Set("x-locale", "hy")
	req.Header.Set("User-Agent", "test-agent/1.0")
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	counts, err := store.CountAnalyticsEvents(context.Background(), datastore.AnalyticsFilter{Event: "section_view"})
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "pricing", counts[0].Section)
	assert.Equal(t, "hy", counts[0].Locale)
	assert.EqualValues(t, 1, counts[0].Count)
}

func TestTrackEventStoresMetadata(t *testing.T) {
	store := new(mocks.MockDataStore)
	var saved *datastore.AnalyticsEvent
	store.On("SaveAnalyticsEvent", mock.Anything, mock.AnythingOfType("*datastore.AnalyticsEvent")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*datastore.AnalyticsEvent) }).
		Return(nil)
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

	req := postJSON("/api/analytics", `{"event":"cta_click","metadata":{"userAgent":"spoofed","plan":"founding"}}`)
	req.Header.Set("x-locale", "xx")
	req.Header.Del("User-Agent")
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, saved)
	assert.Equal(t, "cta_click", saved.Event)
	assert.Nil(t, saved.Section)
	assert.Equal(t, "en", saved.Locale, "unknown locales fall back to en")
	assert.Equal(t, "unknown", saved.Metadata["userAgent"])
	assert.Equal(t, "founding", saved.Metadata["plan"])
}

func TestTrackEventValidation(t *testing.T) {
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(openStore(t)))

	for name, body := range map[string]string{
		"missing event":      `{"section":"hero"}`,
		"empty event":        `{"event":""}`,
		"empty section":      `{"event":"view","section":""}`,
		"null section":       `{"event":"view","section":null}`,
		"section not string": `{"event":"view","section":3}`,
		"metadata array":     `{"event":"view","metadata":[1,2]}`,
		"metadata string":    `{"event":"view","metadata":"x"}`,
		"event not string":   `{"event":7}`,
		"body not an object": `[]`,
		"not json":           `event=view`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, postJSON("/api/analytics", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"ok":false,"message":"Invalid payload."}`, rec.Body.String())
		})
	}
}

func TestTrackEventWithoutStore(t *testing.T) {
	e, _ := setupTestEnvironment(t, testSettings())
	rec := serve(e, postJSON("/api/analytics", `{"event":"view"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"skipped":true}`, rec.Body.String())
}

func TestTrackEventStoreError(t *testing.T) {
	store := new(mocks.MockDataStore)
	store.On("SaveAnalyticsEvent", mock.Anything, mock.Anything).
		Return(errors.NewStd("disk full"))
	e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))

	rec := serve(e, postJSON("/api/analytics", `{"event":"view"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"disk full"}`, rec.Body.String())
}

func TestTrackEventRateLimit(t *testing.T) {
	s := testSettings()
	s.Analytics.RateLimit = 0.001
	s.Analytics.Burst = 2
	e, _ := setupTestEnvironment(t, s)

	send := func(ip string) int {
		req := postJSON("/api/analytics", `{"event":"view"}`)
		req.RemoteAddr = ip + ":1234"
		return serve(e, req).Code
	}
	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"), "buckets are per client")
}

func TestClerkWebhook(t *testing.T) {
	store := openStore(t)
	e, c := setupTestEnvironment(t, testSettings(), WithStore(store))

	body := []byte(`{"type":"user.created","data":{"id":"user_1","first_name":"Ani",` +
		`"primary_email_address_id":"idn_1","email_addresses":[{"id":"idn_1","email_address":"ani@example.am"}]}}`)

	signed := func(id string, payload []byte) *http.Request {
		h, _ := c.verifier.Sign(id, time.Now(), payload)
		req := postJSON("/api/webhooks/clerk", string(payload))
		req.Header.Set(clerk.HeaderID, h.ID)
		req.Header.Set(clerk.HeaderTimestamp, h.Timestamp)
		req.Header.Set(clerk.HeaderSignature, h.Signature)
		return req
	}

	rec := serve(e, signed("msg_1", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = serve(e, signed("msg_2", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"idempotent":true}`, rec.Body.String())

	n, err := store.CountWaitlistEntries(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	t.Run("missing headers", func(t *testing.T) {
		rec := serve(e, postJSON("/api/webhooks/clerk", string(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"ok":false,"message":"Missing Svix headers."}`, rec.Body.String())
	})

	t.Run("tampered body", func(t *testing.T) {
		req := signed("msg_3", body)
		req.Body = http.NoBody
		req.ContentLength = 0
		rec := serve(e, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"ok":false,"message":"Invalid webhook signature."}`, rec.Body.String())
	})

	t.Run("signed but unparseable", func(t *testing.T) {
		rec := serve(e, signed("msg_4", []byte(`not json`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"ok":false,"message":"Invalid webhook signature."}`, rec.Body.String())
	})
}

func TestClerkWebhookBodyTooLarge(t *testing.T) {
	e, c := setupTestEnvironment(t, testSettings(), WithStore(openStore(t)))

	payload := []byte(`{"type":"user.created","data":{"id":"user_1","pad":"` +
		strings.Repeat("x", maxBodyBytes) + `"}}`)
	h, _ := c.verifier.Sign("msg_big", time.Now(), payload)
	req := postJSON("/api/webhooks/clerk", string(payload))
	req.Header.Set(clerk.HeaderID, h.ID)
	req.Header.Set(clerk.HeaderTimestamp, h.Timestamp)
	req.Header.Set(clerk.HeaderSignature, h.Signature)

	rec := serve(e, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Webhook payload too large."}`, rec.Body.String())
}

func TestClerkWebhookMissingSecret(t *testing.T) {
	s := testSettings()
	s.Clerk.WebhookSecret = ""
	e, _ := setupTestEnvironment(t, s, WithStore(openStore(t)))

	rec := serve(e, postJSON("/api/webhooks/clerk", `{}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Missing Clerk webhook secret."}`, rec.Body.String())
}

func TestClerkWebhookWithoutStore(t *testing.T) {
	e, c := setupTestEnvironment(t, testSettings())
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	h, _ := c.verifier.Sign("msg_1", time.Now(), payload)
	req := postJSON("/api/webhooks/clerk", string(payload))
	req.Header.Set(clerk.HeaderID, h.ID)
	req.Header.Set(clerk.HeaderTimestamp, h.Timestamp)
	req.Header.Set(clerk.HeaderSignature, h.Signature)

	rec := serve(e, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Database unavailable."}`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		e, _ := setupTestEnvironment(t, testSettings(), WithStore(openStore(t)), WithVersion("1.2.3"))
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "1.2.3", body["version"])
		assert.Equal(t, "connected", body["database_status"])
	})

	t.Run("no database", func(t *testing.T) {
		e, _ := setupTestEnvironment(t, testSettings())
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "disabled", decode(t, rec)["database_status"])
	})

	t.Run("ping failure", func(t *testing.T) {
		store := new(mocks.MockDataStore)
		store.On("Ping", mock.Anything).Return(errors.NewStd("gone"))
		e, _ := setupTestEnvironment(t, testSettings(), WithStore(store))
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "unavailable", body["database_status"])
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.9"}, "198.51.100.7"},
		{"forwarded skips junk", map[string]string{"X-Forwarded-For": "junk, 203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"forwarded ignores client prefix", map[string]string{"X-Forwarded-For": "198.51.100.99, 203.0.113.9"}, "203.0.113.9"},
		{"forwarded all internal", map[string]string{"X-Forwarded-For": "10.0.0.7, 127.0.0.1"}, "10.0.0.7"},
		{"real ip", map[string]string{"X-Real-IP": "2001:db8::1"}, "2001:db8::1"},
		{"remote addr", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
