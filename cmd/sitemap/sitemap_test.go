package sitemap

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/conf"
)

func TestRun(t *testing.T) {
	settings := &conf.Settings{}
	settings.Main.SiteURL = "https://sofi.fitness"

	var buf bytes.Buffer
	require.NoError(t, Run(settings, &buf, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<loc>https://sofi.fitness/en</loc>")
	assert.Contains(t, out, "<loc>https://sofi.fitness/hy/privacy</loc>")
	assert.Contains(t, out, "<loc>https://sofi.fitness/ru/classes/hot-power-flow</loc>")
	assert.Contains(t, out, "<lastmod>2026-10-17</lastmod>")
}
