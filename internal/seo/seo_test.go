package seo

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

const base = "https://sofi.fitness"

func types(schemas []Schema) []string {
	out := make([]string, len(schemas))
	for i, s := range schemas {
		out[i] = s.Type()
	}
	return out
}

func TestLocalBusiness(t *testing.T) {
	s := LocalBusiness(base)
	assert.Equal(t, "HealthClub", s.Type())
	assert.Equal(t, "Sofi Fitness", s["name"])
	assert.Equal(t, "Yerevan, Armenia", s["areaServed"])
	assert.Equal(t, []string{
		"https://instagram.com/studioyerevan",
		"https://facebook.com/studioyerevan",
		"https://t.me/studioyerevan",
	}, s["sameAs"])
}

func TestHomepageStructuredData(t *testing.T) {
	store, err := content.New()
	require.NoError(t, err)

	schemas := HomepageStructuredData(i18n.English, base, "English-friendly boutique fitness in Yerevan.",
		store.LocalizedClassGroups(i18n.English))

	require.Len(t, schemas, 3)
	assert.Equal(t, []string{"HealthClub", "WebSite", "ItemList"}, types(schemas))
	assert.Equal(t, "en-US", schemas[0]["inLanguage"])
	assert.Equal(t, "English-friendly boutique fitness in Yerevan.", schemas[0]["description"])
	assert.Equal(t, 11, schemas[2]["numberOfItems"])

	ru := HomepageStructuredData(i18n.Russian, base, "", nil)
	assert.Equal(t, "ru-RU", ru[0]["inLanguage"])
	assert.Equal(t, "https://sofi.fitness/ru", ru[1]["url"])
}

func TestClassStructuredData(t *testing.T) {
	store, err := content.New()
	require.NoError(t, err)

	c, ok := store.LocalizedClass(i18n.English, "hot-power-flow")
	require.True(t, ok)
	schemas := ClassStructuredData(i18n.English, base, c, content.DefaultStreamHost)
	assert.Equal(t, []string{"ExercisePlan", "VideoObject"}, types(schemas))
	assert.Equal(t, "https://sofi.fitness/en/classes/hot-power-flow", schemas[0]["url"])
	assert.Equal(t, "PT60M", schemas[0]["activityDuration"])
	assert.Contains(t, schemas[1]["thumbnailUrl"], "/thumbnails/thumbnail.jpg")

	c.StreamID = ""
	assert.Equal(t, []string{"ExercisePlan"}, types(ClassStructuredData(i18n.English, base, c, content.DefaultStreamHost)))
}

func TestBreadcrumb(t *testing.T) {
	s := Breadcrumb([]BreadcrumbItem{
		{Name: "Studio Yerevan", URL: base + "/en"},
		{Name: "Classes", URL: base + "/en/classes"},
	})
	assert.Equal(t, "BreadcrumbList", s.Type())
	items := s["itemListElement"].([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1]["position"])
	assert.Equal(t, base+"/en/classes", items[1]["item"])
}

func TestLegalPage(t *testing.T) {
	s := LegalPage(i18n.Armenian, "Privacy", "desc", base+"/hy/privacy")
	assert.Equal(t, "WebPage", s.Type())
	assert.Equal(t, "hy-AM", s["inLanguage"])
}

func TestJSONLD(t *testing.T) {
	single, err := JSONLD(Schema{"@type": "WebPage", "name": "</script><b>"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(single), "{"))
	assert.NotContains(t, string(single), "</script>")

	many, err := JSONLD(LocalBusiness(base), Breadcrumb(nil))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(many), &decoded))
	assert.Len(t, decoded, 2)
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(PageInput{
		BaseURL:     "https://sofi.fitness/",
		Locale:      i18n.Russian,
		Path:        "/classes/yin-release",
		Title:       "Yin Release | Sofi Fitness",
		Description: "desc",
		OGType:      "article",
		Image:       "/images/gallery/fitness-5.jpg",
	})

	assert.Equal(t, "https://sofi.fitness/ru/classes/yin-release", meta.Canonical)
	assert.Equal(t, "ru_RU", meta.OGLocale)
	assert.Equal(t, "article", meta.OGType)
	assert.Equal(t, "Yin Release | Sofi Fitness", meta.OGTitle)
	assert.Equal(t, "https://sofi.fitness/images/gallery/fitness-5.jpg", meta.Image)
	assert.Equal(t, "summary_large_image", meta.TwitterCard)
	assert.Equal(t, []Alternate{
		{"en", "https://sofi.fitness/en/classes/yin-release"},
		{"hy", "https://sofi.fitness/hy/classes/yin-release"},
		{"ru", "https://sofi.fitness/ru/classes/yin-release"},
		{"x-default", "https://sofi.fitness/en/classes/yin-release"},
	}, meta.Alternates)

	home := NewPageMeta(PageInput{Locale: i18n.English, Title: "Home"})
	assert.Equal(t, "https://sofi.fitness/en", home.Canonical)
	assert.Equal(t, "website", home.OGType)
	assert.Equal(t, "https://sofi.fitness/images/og-image.svg", home.Image)
}

func TestLocalizedURL(t *testing.T) {
	assert.Equal(t, "https://sofi.fitness/hy", LocalizedURL("", i18n.Armenian, ""))
	assert.Equal(t, "https://example.com/en/privacy", LocalizedURL("https://example.com//", i18n.English, "privacy"))
}

func TestBuildSitemap(t *testing.T) {
	slugs := []string{"hot-power-flow", "yin-release"}
	sm := BuildSitemap(base, slugs, time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC))

	require.Len(t, sm.URLs, len(i18n.Locales)*(4+len(slugs)))

	byLoc := map[string]SitemapURL{}
	for _, u := range sm.URLs {
		byLoc[u.Loc] = u
		assert.Equal(t, "2026-02-22", u.LastMod)
	}

	tests := []struct {
		loc      string
		freq     string
		priority float64
	}{
		{base + "/en", ChangeWeekly, 1.0},
		{base + "/hy", ChangeWeekly, 0.9},
		{base + "/en/classes", ChangeWeekly, 0.9},
		{base + "/ru/classes", ChangeWeekly, 0.8},
		{base + "/en/privacy", ChangeMonthly, 0.3},
		{base + "/hy/terms", ChangeMonthly, 0.3},
		{base + "/en/classes/yin-release", ChangeWeekly, 0.8},
		{base + "/ru/classes/hot-power-flow", ChangeWeekly, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			u, ok := byLoc[tt.loc]
			require.True(t, ok)
			assert.Equal(t, tt.freq, u.ChangeFreq)
			assert.InDelta(t, tt.priority, u.Priority, 1e-9)
		})
	}

	var buf bytes.Buffer
	_, err := sm.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<priority>1.0</priority>")
	assert.Contains(t, out, "<loc>https://sofi.fitness/ru/classes/hot-power-flow</loc>")
}

func TestRobotsTxt(t *testing.T) {
	robots := RobotsTxt("https://sofi.fitness/")
	assert.Contains(t, robots, "Sitemap: https://sofi.fitness/sitemap.xml")
	assert.Contains(t, robots, "Disallow: /api/")
}
