package httpcontroller

import (
	"fmt"
	"html/template"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"

	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/i18n"
)

// GetTemplateFunctions returns a map of functions that can be used in templates
func (s *Server) GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"add":            addFunc,
		"sub":            subFunc,
		"upper":          upperFunc,
		"localizedPath":  localizedPath,
		"toJSON":         toJSONFunc,
		"hiddenControls": content.WithHiddenControls,
		"thumbnail":      s.thumbnail,
		"sectionIDs":     func() []string { return content.SectionIDs },
	}
}

// simple math functions
func addFunc(a, b int) int { return a + b }
func subFunc(a, b int) int { return a - b }

// upperFunc upper-cases s with the casing rules of locale.
func upperFunc(locale i18n.Locale, s string) string {
	return cases.Upper(locale.LanguageTag()).String(s)
}

// localizedPath returns /{locale}{path}. locale is an i18n.Locale or a
// plain string, such as a language-name map key.
func localizedPath(locale any, path string) string {
	l := i18n.ResolveLocale(fmt.Sprint(locale))
	if path == "" || path == "/" {
		return "/" + string(l)
	}
	return i18n.ReplacePathLocale(path, l)
}

// toJSONFunc encodes v for a script context. The encoder escapes <, > and &.
func toJSONFunc(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

func (s *Server) thumbnail(c content.Class) string {
	return c.ThumbnailURL(s.Content.StreamConfig().Host())
}
