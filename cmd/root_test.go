package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/buildinfo"
	"github.com/sofi-fitness/studio-landing/internal/conf"
)

func TestRootCommandVersion(t *testing.T) {
	ctx := conf.NewContext(buildinfo.New("1.0.0", "2026-10-17", "abcdef"))
	root := RootCommand(ctx)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "studio-landing 1.0.0 (commit abcdef, built 2026-10-17)\n", out.String())
	assert.Nil(t, ctx.Settings, "version does not load configuration")
}

func TestRootCommandSubcommands(t *testing.T) {
	root := RootCommand(conf.NewContext(buildinfo.New("", "", "")))
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "sitemap", "emails", "version"} {
		assert.True(t, names[want], want)
	}
}
