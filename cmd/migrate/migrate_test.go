package migrate

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/buildinfo"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
)

func TestRunSQLite(t *testing.T) {
	ctx := conf.NewContext(buildinfo.New("test", "", ""))
	ctx.Settings = &conf.Settings{}
	ctx.Settings.Database.SQLite.Enabled = true
	ctx.Settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "data", "waitlist.db")

	var buf bytes.Buffer
	require.NoError(t, Run(ctx, &buf))
	assert.Equal(t, "schema up to date (2 tables)\n", buf.String())
	assert.FileExists(t, ctx.Settings.Database.SQLite.Path)
}

func TestRunWithoutDatabase(t *testing.T) {
	ctx := conf.NewContext(buildinfo.New("test", "", ""))
	ctx.Settings = &conf.Settings{}

	err := Run(ctx, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
