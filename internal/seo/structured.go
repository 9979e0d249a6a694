// Package seo builds page metadata, JSON-LD structured data and the sitemap.
package seo

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

const (
	schemaContext = "https://schema.org"

	// BusinessName is the organization name used in structured data.
	BusinessName = "Sofi Fitness"

	businessDescription = "Yerevan's first English-friendly boutique fitness studio offering hot yoga, strength, mobility, and recovery."
	socialHandle        = "studioyerevan"
)

// Schema is a single JSON-LD object.
type Schema map[string]any

// Type returns the @type of the schema.
func (s Schema) Type() string {
	t, _ := s["@type"].(string)
	return t
}

// BreadcrumbItem is one step of a breadcrumb trail.
type BreadcrumbItem struct {
	Name string
	URL  string
}

// LocalBusiness describes the studio as a HealthClub.
func LocalBusiness(baseURL string) Schema {
	return Schema{
		"@context":    schemaContext,
		"@type":       "HealthClub",
		"name":        BusinessName,
		"description": businessDescription,
		"areaServed":  "Yerevan, Armenia",
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": "Yerevan",
			"addressCountry":  "AM",
		},
		"url": baseURL,
		"sameAs": []string{
			"https://instagram.com/" + socialHandle,
			"https://facebook.com/" + socialHandle,
			"https://t.me/" + socialHandle,
		},
	}
}

// HomepageStructuredData returns the HealthClub, WebSite and class ItemList
// schemas of the home page.
func HomepageStructuredData(locale i18n.Locale, baseURL, description string, groups []content.ClassGroup) []Schema {
	business := LocalBusiness(baseURL)
	business["url"] = LocalizedURL(baseURL, locale, "")
	business["inLanguage"] = locale.Tag()
	if description != "" {
		business["description"] = description
	}

	website := Schema{
		"@context":   schemaContext,
		"@type":      "WebSite",
		"name":       BusinessName,
		"url":        LocalizedURL(baseURL, locale, ""),
		"inLanguage": locale.Tag(),
	}

	return []Schema{business, website, ClassGroupItemList(locale, baseURL, groups)}
}

// ClassGroupItemList lists every class, grouped in display order.
func ClassGroupItemList(locale i18n.Locale, baseURL string, groups []content.ClassGroup) Schema {
	var items []map[string]any
	position := 1
	for _, group := range groups {
		for _, c := range group.Classes {
			items = append(items, map[string]any{
				"@type":    "ListItem",
				"position": position,
				"name":     c.Title,
				"url":      LocalizedURL(baseURL, locale, "/classes/"+c.Slug),
			})
			position++
		}
	}
	return Schema{
		"@context":        schemaContext,
		"@type":           "ItemList",
		"name":            BusinessName + " classes",
		"inLanguage":      locale.Tag(),
		"numberOfItems":   len(items),
		"itemListElement": items,
	}
}

// ClassStructuredData returns the ExercisePlan of a class and, when the class
// has a stream, its VideoObject.
func ClassStructuredData(locale i18n.Locale, baseURL string, c content.Class, streamHost string) []Schema {
	pageURL := LocalizedURL(baseURL, locale, "/classes/"+c.Slug)
	plan := Schema{
		"@context":         schemaContext,
		"@type":            "ExercisePlan",
		"name":             c.Title,
		"description":      c.Description,
		"url":              pageURL,
		"inLanguage":       locale.Tag(),
		"activityDuration": fmt.Sprintf("PT%dM", c.DurationMinutes),
		"intensity":        c.Intensity,
		"image":            absoluteURL(baseURL, c.Image),
		"provider": map[string]any{
			"@type": "HealthClub",
			"name":  BusinessName,
			"url":   baseURL,
		},
	}
	schemas := []Schema{plan}

	if c.HasStream() {
		schemas = append(schemas, Schema{
			"@context":     schemaContext,
			"@type":        "VideoObject",
			"name":         c.Title,
			"description":  c.Subtitle,
			"thumbnailUrl": c.ThumbnailURL(streamHost),
			"embedUrl":     c.IframeSrc,
			"duration":     fmt.Sprintf("PT%dM", c.DurationMinutes),
			"inLanguage":   locale.Tag(),
		})
	}
	return schemas
}

// Breadcrumb builds a BreadcrumbList from items in order.
func Breadcrumb(items []BreadcrumbItem) Schema {
	elements := make([]map[string]any, len(items))
	for i, item := range items {
		elements[i] = map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     item.Name,
			"item":     item.URL,
		}
	}
	return Schema{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": elements,
	}
}

// LegalPage describes a privacy or terms page.
func LegalPage(locale i18n.Locale, title, description, pageURL string) Schema {
	return Schema{
		"@context":    schemaContext,
		"@type":       "WebPage",
		"name":        title,
		"description": description,
		"url":         pageURL,
		"inLanguage":  locale.Tag(),
		"isPartOf": map[string]any{
			"@type": "WebSite",
			"name":  BusinessName,
		},
	}
}

// JSONLD encodes schemas for a <script type="application/ld+json"> element.
// A single schema is encoded as an object, several as an array.
func JSONLD(schemas ...Schema) (template.JS, error) {
	var (
		data []byte
		err  error
	)
	if len(schemas) == 1 {
		data, err = json.Marshal(schemas[0])
	} else {
		data, err = json.Marshal(schemas)
	}
	if err != nil {
		return "", fmt.Errorf("encode structured data: %w", err)
	}
	// json.Marshal escapes <, > and & so the payload cannot close the script tag.
	return template.JS(data), nil
}

func absoluteURL(baseURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
