// Package migrate creates or updates the database schema.
package migrate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Command creates the migrate command.
func Command(ctx *conf.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the waitlist tables",
		Long:  "Open the configured database and migrate the waitlist_entries and analytics_events tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(ctx, cmd.OutOrStdout())
		},
	}
}

// Run opens the configured store, which migrates the schema, and closes it.
func Run(ctx *conf.Context, out io.Writer) error {
	store := datastore.New(ctx.Settings, ctx.Logger)
	if store == nil {
		return errors.Newf("no database backend enabled").
			Component("migrate").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			ctx.Logger.Warn("failed to close database", logger.Error(err))
		}
	}()

	_, err := fmt.Fprintf(out, "schema up to date (%d tables)\n", len(datastore.Models()))
	return err
}
