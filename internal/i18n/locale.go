// Package i18n resolves the site locale from paths and Accept-Language headers.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported site language.
type Locale string

const (
	English  Locale = "en"
	Armenian Locale = "hy"
	Russian  Locale = "ru"
)

// DefaultLocale is used whenever a request does not name a supported locale.
const DefaultLocale = English

// Locales lists the supported locales in display order.
var Locales = []Locale{English, Armenian, Russian}

type localeInfo struct {
	tag      language.Tag
	ogLocale string
	name     string
}

var info = map[Locale]localeInfo{
	English:  {tag: language.MustParse("en-US"), ogLocale: "en_US", name: "English"},
	Armenian: {tag: language.MustParse("hy-AM"), ogLocale: "hy_AM", name: "Հայերեն"},
	Russian:  {tag: language.MustParse("ru-RU"), ogLocale: "ru_RU", name: "Русский"},
}

// IsLocale reports whether s is exactly one of the supported locale codes.
func IsLocale(s string) bool {
	_, ok := info[Locale(s)]
	return ok
}

// ResolveLocale maps any language string onto a supported locale.
// Matching is case-insensitive: exact codes win, then hy* and ru* prefixes;
// everything else, including the empty string, resolves to DefaultLocale.
func ResolveLocale(input string) Locale {
	if input == "" {
		return DefaultLocale
	}
	normalized := strings.ToLower(input)
	if IsLocale(normalized) {
		return Locale(normalized)
	}
	switch {
	case strings.HasPrefix(normalized, "hy"):
		return Armenian
	case strings.HasPrefix(normalized, "ru"):
		return Russian
	}
	return DefaultLocale
}

// LocaleFromAcceptLanguage resolves the highest-weighted entry of an
// Accept-Language header. Headers x/text cannot parse fall back to the first
// raw entry.
func LocaleFromAcceptLanguage(header string) Locale {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err == nil && len(tags) > 0 {
		return ResolveLocale(tags[0].String())
	}
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return ResolveLocale(strings.TrimSpace(first))
}

// ReplacePathLocale returns path with its locale segment set to locale.
// A path without a locale segment gets one prepended; "/" becomes "/{locale}".
func ReplacePathLocale(path string, locale Locale) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	segments := strings.Split(path, "/")
	if len(segments) > 1 && IsLocale(segments[1]) {
		segments[1] = string(locale)
		return strings.Join(segments, "/")
	}
	if path == "/" {
		return "/" + string(locale)
	}
	return "/" + string(locale) + path
}

// PathLocale returns the locale named by the first path segment, if any.
func PathLocale(path string) (Locale, bool) {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if IsLocale(first) {
		return Locale(first), true
	}
	return "", false
}

// Tag returns the BCP-47 tag used in structured data and html lang, e.g. "en-US".
func (l Locale) Tag() string {
	return l.info().tag.String()
}

// OpenGraphLocale returns the og:locale value, e.g. "hy_AM".
func (l Locale) OpenGraphLocale() string {
	return l.info().ogLocale
}

// NativeName returns the language name written in that language.
func (l Locale) NativeName() string {
	return l.info().name
}

// LanguageTag returns the x/text tag for locale-aware formatting.
func (l Locale) LanguageTag() language.Tag {
	return l.info().tag
}

func (l Locale) String() string { return string(l) }

func (l Locale) info() localeInfo {
	if i, ok := info[l]; ok {
		return i
	}
	return info[DefaultLocale]
}
