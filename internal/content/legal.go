package content

import "github.com/sofi-fitness/studio-landing/internal/i18n"

// LegalSection is a heading with one or more paragraphs.
type LegalSection struct {
	Heading string   `yaml:"heading"`
	Body    []string `yaml:"body"`
}

// LegalDocument is a privacy policy or terms of service page.
type LegalDocument struct {
	Title     string         `yaml:"title"`
	UpdatedAt string         `yaml:"updated_at"`
	Sections  []LegalSection `yaml:"sections"`
}

// Summary returns the first paragraph, used as the page description.
func (d LegalDocument) Summary() string {
	for _, section := range d.Sections {
		if len(section.Body) > 0 {
			return section.Body[0]
		}
	}
	return d.Title
}

// LegalContent holds both legal documents of a locale.
type LegalContent struct {
	Privacy LegalDocument `yaml:"privacy"`
	Terms   LegalDocument `yaml:"terms"`
}

// Legal returns the legal documents for locale.
func (s *Store) Legal(locale i18n.Locale) LegalContent {
	return forLocale(s.legal, locale)
}
