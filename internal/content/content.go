// Package content holds the localized copy, class catalog, legal pages and
// email sequence of the landing site. Everything is embedded YAML decoded once
// at start-up; a Store is read-only afterwards apart from stream settings.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Store is the decoded content of every locale.
type Store struct {
	landing  map[i18n.Locale]Landing
	pages    map[i18n.Locale]PageLabels
	notFound NotFoundCopy
	legal    map[i18n.Locale]LegalContent
	clerk    map[i18n.Locale]ClerkLocalization
	emails   emailData
	catalog  catalog

	streams atomic.Pointer[StreamConfig]
}

var (
	defaultStore     *Store
	defaultStoreErr  error
	defaultStoreOnce sync.Once
)

// Default returns the store decoded from the embedded data. It panics when
// the embedded YAML is invalid, which the package tests rule out.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore, defaultStoreErr = Load(dataFS)
	})
	if defaultStoreErr != nil {
		panic(defaultStoreErr)
	}
	return defaultStore
}

// New decodes the embedded data into a fresh store.
func New() (*Store, error) {
	return Load(dataFS)
}

// Load decodes content from fsys, which must contain the data/*.yaml files.
func Load(fsys fs.FS) (*Store, error) {
	s := &Store{}
	s.streams.Store(&StreamConfig{})

	var landingRaw map[string]yaml.Node
	if err := decodeFile(fsys, "landing.yaml", &landingRaw); err != nil {
		return nil, err
	}
	landing, err := decodeLocalized[Landing](landingRaw, "landing.yaml")
	if err != nil {
		return nil, err
	}
	s.landing = landing

	var pagesRaw map[string]yaml.Node
	if err := decodeFile(fsys, "pages.yaml", &pagesRaw); err != nil {
		return nil, err
	}
	if node, ok := pagesRaw["not_found"]; ok {
		if err := node.Decode(&s.notFound); err != nil {
			return nil, contentError(err, "pages.yaml")
		}
		delete(pagesRaw, "not_found")
	}
	if s.pages, err = decodeLocalized[PageLabels](pagesRaw, "pages.yaml"); err != nil {
		return nil, err
	}

	if err := decodeFile(fsys, "legal.yaml", &s.legal); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, "clerk.yaml", &s.clerk); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, "emails.yaml", &s.emails); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, "classes.yaml", &s.catalog); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	s.catalog.index()
	return s, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, "data/"+name)
	if err != nil {
		return contentError(err, name)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return contentError(err, name)
	}
	return nil
}

// decodeLocalized decodes the default locale first and then decodes every
// other locale on top of a copy of it, so a locale only lists what it changes.
func decodeLocalized[T any](raw map[string]yaml.Node, file string) (map[i18n.Locale]T, error) {
	base, ok := raw[string(i18n.DefaultLocale)]
	if !ok {
		return nil, contentError(fmt.Errorf("missing %q section", i18n.DefaultLocale), file)
	}
	var defaults T
	if err := base.Decode(&defaults); err != nil {
		return nil, contentError(err, file)
	}

	out := map[i18n.Locale]T{i18n.DefaultLocale: defaults}
	for _, locale := range i18n.Locales {
		if locale == i18n.DefaultLocale {
			continue
		}
		value := cloneViaYAML(defaults)
		if node, ok := raw[string(locale)]; ok {
			if err := node.Decode(&value); err != nil {
				return nil, contentError(err, file)
			}
		}
		out[locale] = value
	}
	return out, nil
}

// cloneViaYAML deep-copies v so overlay decoding cannot alias the default
// locale's maps and slices.
func cloneViaYAML[T any](v T) T {
	var out T
	data, err := yaml.Marshal(v)
	if err != nil {
		return v
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func contentError(err error, file string) error {
	return errors.New(err).
		Component("content").
		Category(errors.CategoryContent).
		Context("file", file).
		Build()
}

// validate checks that every locale is complete and the catalog is consistent.
func (s *Store) validate() error {
	for _, locale := range i18n.Locales {
		if _, ok := s.legal[locale]; !ok {
			return contentError(fmt.Errorf("missing legal content for %s", locale), "legal.yaml")
		}
		if _, ok := s.clerk[locale]; !ok {
			return contentError(fmt.Errorf("missing widget localization for %s", locale), "clerk.yaml")
		}
		if _, ok := s.emails.Templates[locale]; !ok {
			return contentError(fmt.Errorf("missing email templates for %s", locale), "emails.yaml")
		}
	}
	return s.catalog.validate()
}

// forLocale returns m[locale], falling back to the default locale.
func forLocale[T any](m map[i18n.Locale]T, locale i18n.Locale) T {
	if v, ok := m[locale]; ok {
		return v
	}
	return m[i18n.DefaultLocale]
}
