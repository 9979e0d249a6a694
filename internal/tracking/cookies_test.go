package tracking

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newJar(t *testing.T, secure bool) *Jar {
	t.Helper()
	j, err := NewJar(testSecret, 0, secure)
	require.NoError(t, err)
	return j
}

func TestNewJarRejectsShortSecret(t *testing.T) {
	_, err := NewJar("short", 0, false)
	require.Error(t, err)
}

func TestCookieAttributes(t *testing.T) {
	c := newJar(t, true).Cookie(UTMCookie, "x")
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 30*24*3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	assert.False(t, newJar(t, false).Cookie(UTMCookie, "x").Secure)
}

func TestUTMFromQuery(t *testing.T) {
	_, ok := UTMFromQuery(url.Values{"ref": {"ABCD1234"}})
	assert.False(t, ok)
	_, ok = UTMFromQuery(url.Values{"utm_source": {""}})
	assert.False(t, ok, "empty values alone do not count")

	utm, ok := UTMFromQuery(url.Values{"utm_source": {"instagram"}, "utm_campaign": {""}})
	require.True(t, ok)
	require.NotNil(t, utm.Source)
	assert.Equal(t, "instagram", *utm.Source)
	assert.Nil(t, utm.Medium)
	require.NotNil(t, utm.Campaign)
	assert.Empty(t, *utm.Campaign)

	value, err := utm.Encode()
	require.NoError(t, err)
	raw, err := url.QueryUnescape(value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"utm_source":"instagram","utm_medium":null,"utm_campaign":""}`, raw)

	decoded, err := DecodeUTM(value)
	require.NoError(t, err)
	assert.Equal(t, utm, decoded)
}

func TestReferralCookie(t *testing.T) {
	j := newJar(t, false)

	read := func(c *http.Cookie) (string, bool) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c != nil {
			req.AddCookie(c)
		}
		return j.Referral(req)
	}

	signed, err := j.SignedReferralCookie("ABCD1234")
	require.NoError(t, err)
	code, verified := read(signed)
	assert.Equal(t, "ABCD1234", code)
	assert.True(t, verified)

	code, verified = read(j.RawReferralCookie("RAW_code-1"))
	assert.Equal(t, "RAW_code-1", code)
	assert.False(t, verified)

	code, _ = read(j.RawReferralCookie("<script>"))
	assert.Empty(t, code)

	code, _ = read(nil)
	assert.Empty(t, code)

	other, err := NewJar("fedcba9876543210fedcba9876543210", 0, false)
	require.NoError(t, err)
	forged, err := other.SignedReferralCookie("ABCD1234")
	require.NoError(t, err)
	code, verified = read(forged)
	assert.False(t, verified)
	assert.Empty(t, code, "a value signed with another key is not a valid raw code")
}
