package content

import "github.com/sofi-fitness/studio-landing/internal/i18n"

// ClerkLocalization is the copy of the hosted waitlist widget.
type ClerkLocalization struct {
	Locale           string        `yaml:"locale" json:"locale"`
	WaitlistStart    WaitlistStart `yaml:"waitlist_start" json:"waitlistStart"`
	EmailLabel       string        `yaml:"email_label" json:"emailLabel"`
	EmailPlaceholder string        `yaml:"email_placeholder" json:"emailPlaceholder"`
}

// WaitlistStart is the first screen of the waitlist widget.
type WaitlistStart struct {
	Title      string `yaml:"title" json:"title"`
	Subtitle   string `yaml:"subtitle" json:"subtitle"`
	FormButton string `yaml:"form_button" json:"formButton"`
	ActionText string `yaml:"action_text" json:"actionText"`
	ActionLink string `yaml:"action_link" json:"actionLink"`
}

// ClerkLocalization returns the widget localization for locale.
func (s *Store) ClerkLocalization(locale i18n.Locale) ClerkLocalization {
	return forLocale(s.clerk, locale)
}
