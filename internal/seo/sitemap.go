package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies used by the sitemap.
const (
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
)

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"-"`
	PriorityS  string  `xml:"priority"`
}

// Sitemap is a <urlset> document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// BuildSitemap lists every page of every locale: home, classes, legal pages
// and each class detail page.
func BuildSitemap(baseURL string, classSlugs []string, now time.Time) Sitemap {
	lastMod := now.UTC().Format("2006-01-02")
	sm := Sitemap{XMLNS: sitemapNamespace}

	add := func(loc, freq string, priority float64) {
		sm.URLs = append(sm.URLs, SitemapURL{
			Loc:        loc,
			LastMod:    lastMod,
			ChangeFreq: freq,
			Priority:   priority,
			PriorityS:  fmt.Sprintf("%.1f", priority),
		})
	}

	for _, locale := range i18n.Locales {
		primary := locale == i18n.DefaultLocale
		add(LocalizedURL(baseURL, locale, ""), ChangeWeekly, pick(primary, 1.0, 0.9))
		add(LocalizedURL(baseURL, locale, "/classes"), ChangeWeekly, pick(primary, 0.9, 0.8))
		add(LocalizedURL(baseURL, locale, "/privacy"), ChangeMonthly, 0.3)
		add(LocalizedURL(baseURL, locale, "/terms"), ChangeMonthly, 0.3)
		for _, slug := range classSlugs {
			add(LocalizedURL(baseURL, locale, "/classes/"+slug), ChangeWeekly, pick(primary, 0.8, 0.7))
		}
	}
	return sm
}

// WriteTo encodes the sitemap as indented XML with a declaration.
func (s Sitemap) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return 0, fmt.Errorf("encode sitemap: %w", err)
	}
	b.WriteString("\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// RobotsTxt allows every crawler and points at the sitemap.
func RobotsTxt(baseURL string) string {
	return "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + NormalizeBaseURL(baseURL) + "/sitemap.xml\n"
}

func pick(primary bool, a, b float64) float64 {
	if primary {
		return a
	}
	return b
}
