package clerk

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/sofi-fitness/studio-landing/internal/errors"
)

// Event types handled by the waitlist funnel.
const (
	EventUserCreated          = "user.created"
	EventWaitlistEntryCreated = "waitlistEntry.created"
	// EventWaitlistEntryCreatedAlt is the snake_case spelling some deliveries use.
	EventWaitlistEntryCreatedAlt = "waitlist_entry.created"
)

// Event is a verified webhook payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EmailAddress is one address of a user.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// User is the data of a user.created event.
type User struct {
	ID                    string         `json:"id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
	UnsafeMetadata        map[string]any `json:"unsafe_metadata"`
}

// WaitlistEntry is the data of a waitlistEntry.created event.
type WaitlistEntry struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// WaitlistUser is the signup record extracted from a User.
type WaitlistUser struct {
	ClerkUserID string
	Email       string // empty when the user has no primary address
	FirstName   string
	FullName    *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	ReferredBy  *string
}

// ParseEvent decodes a webhook body.
func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, errors.New(err).
			Component("clerk").
			Category(errors.CategoryValidation).
			Build()
	}
	if ev.Type == "" {
		return Event{}, errors.Newf("webhook payload has no type").
			Component("clerk").
			Category(errors.CategoryValidation).
			Build()
	}
	return ev, nil
}

// IsWaitlistEntryCreated reports whether the event announces a waitlist signup.
func (e Event) IsWaitlistEntryCreated() bool {
	return e.Type == EventWaitlistEntryCreated || e.Type == EventWaitlistEntryCreatedAlt
}

// User decodes the event data as a user.
func (e Event) User() (User, error) {
	var u User
	if err := json.Unmarshal(e.Data, &u); err != nil {
		return User{}, errors.New(err).
			Component("clerk").
			Category(errors.CategoryValidation).
			Context("event_type", e.Type).
			Build()
	}
	return u, nil
}

// WaitlistEntry decodes the event data as a waitlist entry. The boolean is
// false unless data is an object with string id and email_address fields.
func (e Event) WaitlistEntry() (WaitlistEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(e.Data, &raw); err != nil || raw == nil {
		return WaitlistEntry{}, false
	}
	id, idOK := raw["id"].(string)
	email, emailOK := raw["email_address"].(string)
	if !idOK || !emailOK {
		return WaitlistEntry{}, false
	}
	return WaitlistEntry{ID: id, EmailAddress: email}, true
}

// ExtractWaitlistUser resolves the primary email, full name, attribution and
// referral of a user. Unsafe metadata overrides public metadata; attribution
// values are only taken when they are strings.
func ExtractWaitlistUser(u User) WaitlistUser {
	first := deref(u.FirstName)
	last := deref(u.LastName)

	var parts []string
	for _, p := range []string{first, last} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	metadata := make(map[string]any, len(u.PublicMetadata)+len(u.UnsafeMetadata))
	for k, v := range u.PublicMetadata {
		metadata[k] = v
	}
	for k, v := range u.UnsafeMetadata {
		metadata[k] = v
	}

	return WaitlistUser{
		ClerkUserID: u.ID,
		Email:       primaryEmail(u),
		FirstName:   first,
		FullName:    nonEmpty(strings.Join(parts, " ")),
		UTMSource:   stringValue(metadata, "utm_source"),
		UTMMedium:   stringValue(metadata, "utm_medium"),
		UTMCampaign: stringValue(metadata, "utm_campaign"),
		ReferredBy:  stringValue(metadata, "referred_by"),
	}
}

func primaryEmail(u User) string {
	id := deref(u.PrimaryEmailAddressID)
	if id == "" {
		return ""
	}
	for _, e := range u.EmailAddresses {
		if e.ID == id {
			return e.EmailAddress
		}
	}
	return ""
}

func stringValue(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
