// Package serve runs the landing page web server.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sofi-fitness/studio-landing/internal/api"
	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/convertkit"
	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/funnel"
	"github.com/sofi-fitness/studio-landing/internal/httpclient"
	"github.com/sofi-fitness/studio-landing/internal/httpcontroller"
	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/notification"
	"github.com/sofi-fitness/studio-landing/internal/observability"
	"github.com/sofi-fitness/studio-landing/internal/telemetry"
	"github.com/sofi-fitness/studio-landing/internal/tracking"
	"github.com/sofi-fitness/studio-landing/internal/waitlist"
)

// Command creates the serve command.
func Command(ctx *conf.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Serve the localized landing pages, the waitlist API and the metrics endpoint.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(sigCtx, ctx)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("host", "", "Listen host")
	flags.String("port", "", "Listen port")
	flags.Bool("autotls", false, "Obtain certificates from Let's Encrypt")

	for key, flag := range map[string]string{
		"webserver.host":            "host",
		"webserver.port":            "port",
		"webserver.autotls.enabled": "autotls",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// Run wires the store, the funnel and the HTTP server, then serves until ctx
// is cancelled.
func Run(ctx context.Context, app *conf.Context) error {
	settings := app.Settings
	log := app.Logger
	defer func() { _ = log.Flush() }()

	if err := telemetry.Init(settings, app.Build.Version, log); err != nil {
		log.Warn("error telemetry unavailable", logger.Error(err))
	}
	defer telemetry.Flush()

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	store := datastore.New(settings, log)
	if store == nil {
		log.Warn("no database backend enabled, waitlist routes will report the database as unavailable")
	} else {
		if err := store.Open(); err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("failed to close database", logger.Error(err))
			}
		}()
	}

	stats := waitlist.NewService(store,
		waitlist.WithCapacity(settings.Waitlist.Capacity),
		waitlist.WithCountTTL(settings.Waitlist.CountCacheTTL),
		waitlist.WithLogger(log))

	hc := httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.ConvertKit.Timeout,
		UserAgent:      "studio-landing/" + app.Build.Version,
	})
	hc.SetAfterResponseHook(m.Outbound.Observe)
	defer hc.Close()

	subscriber := convertkit.New(settings.ConvertKit,
		convertkit.WithHTTPClient(hc),
		convertkit.WithLogger(log))
	if !subscriber.Configured() {
		log.Warn("ConvertKit is not configured, new signups are not subscribed to the email sequence")
	}

	notifier, err := notification.New(settings.Notify, log)
	if err != nil {
		return err
	}

	ingestor := funnel.NewIngestor(store,
		funnel.WithSubscriber(subscriber),
		funnel.WithNotifier(notifier),
		funnel.WithStats(stats),
		funnel.WithMetrics(m.Funnel),
		funnel.WithSiteName(settings.Main.Name),
		funnel.WithLogger(log))

	jar, err := tracking.NewJar(settings.Cookies.Secret, settings.Cookies.MaxAge, settings.IsProduction())
	if err != nil {
		return err
	}

	controller, err := api.New(settings,
		api.WithStore(store),
		api.WithStats(stats),
		api.WithIngestor(ingestor),
		api.WithJar(jar),
		api.WithMetrics(m.Funnel),
		api.WithVersion(app.Build.Version),
		api.WithLogger(log))
	if err != nil {
		return err
	}

	server, err := httpcontroller.New(settings,
		httpcontroller.WithStats(stats),
		httpcontroller.WithAPI(controller),
		httpcontroller.WithJar(jar),
		httpcontroller.WithMetrics(m),
		httpcontroller.WithLogger(log))
	if err != nil {
		return err
	}

	conf.WatchConfig(log, func(s *conf.Settings) {
		log.Info("stream overrides reloaded", logger.Int("streams", len(s.Media.Streams)))
	})

	return server.Start(ctx)
}
