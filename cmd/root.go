package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sofi-fitness/studio-landing/cmd/emails"
	"github.com/sofi-fitness/studio-landing/cmd/migrate"
	"github.com/sofi-fitness/studio-landing/cmd/serve"
	"github.com/sofi-fitness/studio-landing/cmd/sitemap"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *conf.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studio-landing",
		Short:         "Sofi Fitness landing page and waitlist service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd); err != nil {
		panic(err)
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), ctx.Build.String())
		},
	}

	rootCmd.AddCommand(
		serve.Command(ctx),
		migrate.Command(ctx),
		sitemap.Command(ctx),
		emails.Command(ctx),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version needs no configuration
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize(ctx)
	}

	return rootCmd
}

// initialize loads settings after flags are parsed, so command-line values
// take precedence over the config file and environment.
func initialize(ctx *conf.Context) error {
	settings, err := conf.Load()
	if err != nil {
		return err
	}
	ctx.Settings = settings
	ctx.Logger = logger.NewZapLogger(settings.LoggerConfig())
	ctx.Logger.Debug("configuration loaded",
		logger.String("environment", settings.Main.Environment),
		logger.String("config_file", viper.ConfigFileUsed()))
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config.yaml (default: search ., ~/.config/studio-landing, /etc/studio-landing)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("site-url", "", "Canonical site URL, e.g. https://sofi.fitness")

	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	for key, flag := range map[string]string{
		"logging.level": "log-level",
		"main.siteurl":  "site-url",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
