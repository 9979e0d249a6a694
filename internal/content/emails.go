package content

import (
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// EmailStep names a message of the waitlist email sequence.
type EmailStep string

const (
	StepWelcome EmailStep = "welcome"
	StepDay3    EmailStep = "day3"
	StepDay7    EmailStep = "day7"
)

// Token defaults used when the caller does not supply a value.
const (
	DefaultInstagramHandle = "@studioyerevan"
	DefaultReferralLink    = "[LINK]"
)

// EmailTokens fills the placeholders of an email template.
type EmailTokens struct {
	InstagramHandle string
	ReferralLink    string
}

// EmailTemplate is a rendered subject and body.
type EmailTemplate struct {
	Subject string `yaml:"subject" json:"subject"`
	Body    string `yaml:"body" json:"body"`
}

// SequenceTemplate is a rendered email with its position in the sequence.
type SequenceTemplate struct {
	EmailTemplate
	Step         EmailStep `json:"step"`
	DayOffset    int       `json:"day_offset"`
	InternalName string    `json:"internal_name"`
}

type emailStepConfig struct {
	Step         EmailStep `yaml:"step"`
	DayOffset    int       `yaml:"day_offset"`
	InternalName string    `yaml:"internal_name"`
}

type emailData struct {
	Steps     []emailStepConfig                           `yaml:"steps"`
	Templates map[i18n.Locale]map[EmailStep]EmailTemplate `yaml:"templates"`
}

func (t EmailTokens) apply(text string) string {
	handle := t.InstagramHandle
	if handle == "" {
		handle = DefaultInstagramHandle
	}
	link := t.ReferralLink
	if link == "" {
		link = DefaultReferralLink
	}
	return strings.NewReplacer(
		"{{instagram_handle}}", handle,
		"{{referral_link}}", link,
	).Replace(text)
}

// EmailTemplate renders one step of the sequence for locale. Unknown steps
// render as an empty template.
func (s *Store) EmailTemplate(locale i18n.Locale, step EmailStep, tokens EmailTokens) EmailTemplate {
	tmpl := forLocale(s.emails.Templates, locale)[step]
	return EmailTemplate{
		Subject: tokens.apply(tmpl.Subject),
		Body:    tokens.apply(tmpl.Body),
	}
}

// EmailSequence renders every step in send order.
func (s *Store) EmailSequence(locale i18n.Locale, tokens EmailTokens) []SequenceTemplate {
	out := make([]SequenceTemplate, 0, len(s.emails.Steps))
	for _, cfg := range s.emails.Steps {
		out = append(out, SequenceTemplate{
			EmailTemplate: s.EmailTemplate(locale, cfg.Step, tokens),
			Step:          cfg.Step,
			DayOffset:     cfg.DayOffset,
			InternalName:  cfg.InternalName,
		})
	}
	return out
}
