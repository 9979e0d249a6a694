// Package clerk verifies identity-provider webhooks delivered through Svix and
// models their payloads.
package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sofi-fitness/studio-landing/internal/errors"
)

// Svix delivery headers.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// DefaultTolerance is the accepted clock skew between Svix and this server.
const DefaultTolerance = 5 * time.Minute

const secretPrefix = "whsec_"

// Sentinel errors returned by Verify. Use errors.Is to test for them.
var (
	ErrMissingHeaders   = errors.NewStd("missing svix headers")
	ErrInvalidSignature = errors.NewStd("no matching svix signature")
	ErrInvalidTimestamp = errors.NewStd("invalid svix timestamp")
	ErrTimestampSkew    = errors.NewStd("svix timestamp outside tolerance")
)

// Headers are the Svix delivery headers of one request.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom reads the Svix headers of an HTTP request.
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        strings.TrimSpace(h.Get(HeaderID)),
		Timestamp: strings.TrimSpace(h.Get(HeaderTimestamp)),
		Signature: strings.TrimSpace(h.Get(HeaderSignature)),
	}
}

// Complete reports whether all three headers are present.
func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

// Verifier checks Svix webhook signatures.
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier decodes a whsec_ prefixed (or bare) base64 signing secret.
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(secret), secretPrefix)
	if raw == "" {
		return nil, errors.Newf("webhook secret is empty").
			Component("clerk").
			Category(errors.CategoryConfiguration).
			Build()
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New(fmt.Errorf("decode webhook secret: %w", err)).
			Component("clerk").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{key: key, tolerance: tolerance, now: time.Now}, nil
}

// Verify checks that body was signed for the delivery described by h and
// that the delivery timestamp is within the tolerance window.
func (v *Verifier) Verify(h Headers, body []byte) error {
	if !h.Complete() {
		return signatureError(ErrMissingHeaders, h)
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return signatureError(ErrInvalidTimestamp, h)
	}
	sent := time.Unix(ts, 0)
	if skew := v.now().Sub(sent); skew > v.tolerance || skew < -v.tolerance {
		return signatureError(ErrTimestampSkew, h)
	}

	expected := v.sign(h.ID, h.Timestamp, body)
	for _, candidate := range strings.Fields(h.Signature) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return signatureError(ErrInvalidSignature, h)
}

// Sign returns a svix-signature header value for the delivery. Used by
// tooling and tests that replay webhooks.
func (v *Verifier) Sign(id string, timestamp time.Time, body []byte) (Headers, string) {
	ts := strconv.FormatInt(timestamp.Unix(), 10)
	sig := "v1," + base64.StdEncoding.EncodeToString(v.sign(id, ts, body))
	return Headers{ID: id, Timestamp: ts, Signature: sig}, sig
}

func (v *Verifier) sign(id, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

func signatureError(err error, h Headers) error {
	return errors.New(err).
		Component("clerk").
		Category(errors.CategorySignature).
		Priority(errors.PriorityLow).
		Context("svix_id", h.ID).
		Build()
}
