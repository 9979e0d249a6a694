package i18n

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		input string
		want  Locale
	}{
		{"", English},
		{"en", English},
		{"EN", English},
		{"hy", Armenian},
		{"hy-AM", Armenian},
		{"ru-RU", Russian},
		{"RU", Russian},
		{"fr-FR", English},
		{"de", English},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLocale(tt.input))
		})
	}
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", English},
		{"ru-RU,ru;q=0.9,en;q=0.8", Russian},
		{"hy-AM", Armenian},
		{"en-GB,en;q=0.9", English},
		{"fr-FR,ru;q=0.9", English},
		{"de;q=0.5,hy;q=0.9", Armenian},
		{"hy;q=garbage", Armenian},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, LocaleFromAcceptLanguage(tt.header))
		})
	}
}

func TestReplacePathLocale(t *testing.T) {
	tests := []struct {
		path   string
		locale Locale
		want   string
	}{
		{"/en/privacy", Russian, "/ru/privacy"},
		{"/en", Armenian, "/hy"},
		{"/", Armenian, "/hy"},
		{"/privacy", Russian, "/ru/privacy"},
		{"classes/yin-release", English, "/en/classes/yin-release"},
		{"/hy/classes/yin-release", English, "/en/classes/yin-release"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplacePathLocale(tt.path, tt.locale))
		})
	}
}

func TestPathLocale(t *testing.T) {
	l, ok := PathLocale("/ru/classes")
	assert.True(t, ok)
	assert.Equal(t, Russian, l)

	_, ok = PathLocale("/classes")
	assert.False(t, ok)

	_, ok = PathLocale("/")
	assert.False(t, ok)
}

func TestLocaleMetadata(t *testing.T) {
	assert.Equal(t, "en-US", English.Tag())
	assert.Equal(t, "hy-AM", Armenian.Tag())
	assert.Equal(t, "ru_RU", Russian.OpenGraphLocale())
	assert.Equal(t, "Հայերեն", Armenian.NativeName())
	assert.Equal(t, "en-US", Locale("xx").Tag())
}

func TestLocaleProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("resolution always yields a supported locale", prop.ForAll(
		func(s string) bool {
			return IsLocale(string(ResolveLocale(s)))
		},
		gen.AnyString(),
	))

	properties.Property("resolution is idempotent", prop.ForAll(
		func(s string) bool {
			once := ResolveLocale(s)
			return ResolveLocale(string(once)) == once
		},
		gen.AnyString(),
	))

	properties.Property("replaced paths always start with the target locale", prop.ForAll(
		func(path string, idx int) bool {
			locale := Locales[idx]
			got := ReplacePathLocale(path, locale)
			l, ok := PathLocale(got)
			return ok && l == locale && strings.HasPrefix(got, "/")
		},
		gen.AlphaString().Map(func(s string) string { return "/" + s }),
		gen.IntRange(0, len(Locales)-1),
	))

	properties.TestingRun(t)
}
