// defaults.go: default configuration values
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Sofi Fitness")
	viper.SetDefault("main.siteurl", "https://sofi.fitness")
	viper.SetDefault("main.environment", EnvDevelopment)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.readtimeout", 15*time.Second)
	viper.SetDefault("webserver.writetimeout", 30*time.Second)
	viper.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	viper.SetDefault("webserver.trustproxy", false)
	viper.SetDefault("webserver.autotls.enabled", false)
	viper.SetDefault("webserver.autotls.domains", []string{})
	viper.SetDefault("webserver.autotls.cachedir", "data/autocert")

	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "data/waitlist.db")
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.postgres.enabled", false)
	viper.SetDefault("database.slowquerythreshold", 200*time.Millisecond)

	viper.SetDefault("clerk.signaturetolerance", 5*time.Minute)

	viper.SetDefault("convertkit.baseurl", "https://api.convertkit.com")
	viper.SetDefault("convertkit.timeout", 10*time.Second)

	viper.SetDefault("cookies.maxage", 30*24*time.Hour)

	viper.SetDefault("waitlist.capacity", 100)
	viper.SetDefault("waitlist.countcachettl", 30*time.Second)

	viper.SetDefault("analytics.ratelimit", 2.0)
	viper.SetDefault("analytics.burst", 20)

	viper.SetDefault("media.customersubdomain", "")
	viper.SetDefault("media.imagesdir", "public/images")

	viper.SetDefault("notify.enabled", false)

	viper.SetDefault("sentry.enabled", false)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}
