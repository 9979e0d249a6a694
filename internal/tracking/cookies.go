// Package tracking builds the attribution cookies shared by the pages and the API.
package tracking

import (
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/securecookie"

	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// Cookie names.
const (
	UTMCookie      = "landing_utm"
	ReferralCookie = "landing_ref"
)

// DefaultMaxAge is the lifetime of attribution cookies.
const DefaultMaxAge = 30 * 24 * time.Hour

// UTM is the landing_utm payload. Missing parameters are encoded as null.
type UTM struct {
	Source   *string `json:"utm_source"`
	Medium   *string `json:"utm_medium"`
	Campaign *string `json:"utm_campaign"`
}

// UTMFromQuery reads utm_source, utm_medium and utm_campaign. ok is false
// when none of them has a non-empty value.
func UTMFromQuery(q url.Values) (utm UTM, ok bool) {
	get := func(key string) *string {
		if !q.Has(key) {
			return nil
		}
		v := q.Get(key)
		if v != "" {
			ok = true
		}
		return &v
	}
	utm.Source = get("utm_source")
	utm.Medium = get("utm_medium")
	utm.Campaign = get("utm_campaign")
	return utm, ok
}

// Encode returns the JSON cookie value, URL-escaped so it is a valid cookie token.
func (u UTM) Encode() (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeUTM parses a landing_utm cookie value.
func DecodeUTM(value string) (UTM, error) {
	var u UTM
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return u, errors.New(err).Component("tracking").Category(errors.CategoryValidation).Build()
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return u, errors.New(err).Component("tracking").Category(errors.CategoryValidation).Build()
	}
	return u, nil
}

// Jar creates attribution cookies with shared attributes.
type Jar struct {
	maxAge time.Duration
	secure bool
	codec  *securecookie.SecureCookie
}

// NewJar returns a cookie jar. secret signs the referral cookie; a zero
// maxAge uses DefaultMaxAge; secure marks cookies Secure (production).
func NewJar(secret string, maxAge time.Duration, secure bool) (*Jar, error) {
	if len(secret) < 16 {
		return nil, errors.Newf("cookie secret must be at least 16 bytes").
			Component("tracking").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(maxAge.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Jar{maxAge: maxAge, secure: secure, codec: codec}, nil
}

// Cookie returns a cookie with the jar's attributes: path /, SameSite Lax, HttpOnly.
func (j *Jar) Cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(j.maxAge.Seconds()),
		Expires:  time.Now().Add(j.maxAge),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// UTMCookieFor returns the landing_utm cookie for utm.
func (j *Jar) UTMCookieFor(utm UTM) (*http.Cookie, error) {
	value, err := utm.Encode()
	if err != nil {
		return nil, err
	}
	return j.Cookie(UTMCookie, value), nil
}

// RawReferralCookie stores code unsigned, as captured from ?ref= on landing.
func (j *Jar) RawReferralCookie(code string) *http.Cookie {
	return j.Cookie(ReferralCookie, url.QueryEscape(code))
}

// SignedReferralCookie stores a verified code, signed with the jar secret.
func (j *Jar) SignedReferralCookie(code string) (*http.Cookie, error) {
	value, err := j.codec.Encode(ReferralCookie, code)
	if err != nil {
		return nil, errors.New(err).Component("tracking").Category(errors.CategoryGeneric).Build()
	}
	return j.Cookie(ReferralCookie, value), nil
}

// Referral reads the landing_ref cookie from r. A signed value reports
// verified; an unsigned value is returned only when it is a well-formed code.
func (j *Jar) Referral(r *http.Request) (code string, verified bool) {
	c, err := r.Cookie(ReferralCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	var signed string
	if err := j.codec.Decode(ReferralCookie, c.Value, &signed); err == nil {
		return signed, true
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil || !waitlist.ValidReferralCode(raw) {
		return "", false
	}
	return waitlist.NormalizeReferralCode(raw), false
}
