package notification

import (
	"fmt"
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Signup kinds reported to operators.
const (
	KindNewMember     = "new member"
	KindMergedMember  = "merged member"
	KindWaitlistEntry = "waitlist entry"
)

// Signup describes a stored waitlist entry.
type Signup struct {
	Kind         string
	Email        string
	Position     int
	ReferralCode string
	ReferredBy   string
	Source       string
	Count        int
	Capacity     int
}

// SignupMessage renders the operator message for a signup. The email address
// is masked.
func SignupMessage(site string, s Signup) Message {
	if site == "" {
		site = "Studio"
	}
	kind := s.Kind
	if kind == "" {
		kind = KindNewMember
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(kind[:1])+kind[1:], logger.MaskEmail(s.Email))
	if s.Position > 0 {
		fmt.Fprintf(&b, "Position: #%d\n", s.Position)
	}
	if s.ReferralCode != "" {
		fmt.Fprintf(&b, "Referral code: %s\n", s.ReferralCode)
	}
	if s.ReferredBy != "" {
		fmt.Fprintf(&b, "Referred by: %s\n", s.ReferredBy)
	}
	if s.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", s.Source)
	}
	if s.Capacity > 0 {
		fmt.Fprintf(&b, "Founding spots left: %d of %d", max(s.Capacity-s.Count, 0), s.Capacity)
	}
	return Message{
		Title: fmt.Sprintf("%s waitlist: %s", site, kind),
		Body:  strings.TrimRight(b.String(), "\n"),
	}
}
