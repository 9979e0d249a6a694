package seo

import (
	"strings"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// DefaultBaseURL is the public site URL when none is configured.
const DefaultBaseURL = "https://sofi.fitness"

// DefaultOGImage is the share image of pages without their own.
const DefaultOGImage = "/images/og-image.svg"

// Alternate is a hreflang link.
type Alternate struct {
	Hreflang string
	URL      string
}

// PageMeta is everything a page renders into <head>.
type PageMeta struct {
	Locale      i18n.Locale
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	Alternates  []Alternate
	OGType      string
	OGLocale    string
	OGTitle     string
	OGDesc      string
	Image       string
	ImageAlt    string
	TwitterCard string
	NoIndex     bool
}

// PageInput describes a page for NewPageMeta.
type PageInput struct {
	BaseURL     string
	Locale      i18n.Locale
	Path        string // locale-less path, "" for the home page
	Title       string
	Description string
	Keywords    []string
	OGType      string // defaults to website
	OGTitle     string // defaults to Title
	OGDesc      string // defaults to Description
	Image       string // defaults to DefaultOGImage
	ImageAlt    string
}

// NewPageMeta builds the canonical URL, hreflang alternates, Open Graph and
// Twitter card fields of a page.
func NewPageMeta(in PageInput) PageMeta {
	base := NormalizeBaseURL(in.BaseURL)
	meta := PageMeta{
		Locale:      in.Locale,
		Title:       in.Title,
		Description: in.Description,
		Keywords:    in.Keywords,
		Canonical:   LocalizedURL(base, in.Locale, in.Path),
		OGType:      firstNonEmpty(in.OGType, "website"),
		OGLocale:    in.Locale.OpenGraphLocale(),
		OGTitle:     firstNonEmpty(in.OGTitle, in.Title),
		OGDesc:      firstNonEmpty(in.OGDesc, in.Description),
		Image:       absoluteURL(base, firstNonEmpty(in.Image, DefaultOGImage)),
		ImageAlt:    firstNonEmpty(in.ImageAlt, BusinessName),
		TwitterCard: "summary_large_image",
	}
	for _, locale := range i18n.Locales {
		meta.Alternates = append(meta.Alternates, Alternate{
			Hreflang: string(locale),
			URL:      LocalizedURL(base, locale, in.Path),
		})
	}
	meta.Alternates = append(meta.Alternates, Alternate{
		Hreflang: "x-default",
		URL:      LocalizedURL(base, i18n.DefaultLocale, in.Path),
	})
	return meta
}

// LocalizedURL returns {base}/{locale}{path}.
func LocalizedURL(baseURL string, locale i18n.Locale, path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return NormalizeBaseURL(baseURL) + "/" + string(locale) + strings.TrimSuffix(path, "/")
}

// NormalizeBaseURL trims trailing slashes and falls back to DefaultBaseURL.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return DefaultBaseURL
	}
	return baseURL
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
