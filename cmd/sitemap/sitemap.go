// Package sitemap prints the sitemap served at /sitemap.xml.
package sitemap

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/content"
	"github.com/sofi-fitness/studio-landing/internal/seo"
)

// Command creates the sitemap command.
func Command(ctx *conf.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml for the configured site URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(ctx.Settings, cmd.OutOrStdout(), time.Now())
		},
	}
}

// Run writes the sitemap for settings.Main.SiteURL to w.
func Run(settings *conf.Settings, w io.Writer, now time.Time) error {
	store, err := content.New()
	if err != nil {
		return err
	}
	_, err = seo.BuildSitemap(settings.Main.SiteURL, store.ClassSlugs(), now).WriteTo(w)
	return err
}
