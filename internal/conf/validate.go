// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		validateMainSettings,
		validateWebServerSettings,
		validateDatabaseSettings,
		validateWaitlistSettings,
		validateAnalyticsSettings,
		validateNotifySettings,
	}
	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateMainSettings(s *Settings) error {
	u, err := url.Parse(s.Main.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("main.siteurl must be an absolute URL, got '%s'", s.Main.SiteURL)
	}
	switch s.Main.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("main.environment must be development, production or test, got '%s'", s.Main.Environment)
	}
	return nil
}

func validateWebServerSettings(s *Settings) error {
	if s.WebServer.Port == "" {
		return fmt.Errorf("webserver.port is required")
	}
	if err := validateEnvPort(s.WebServer.Port); err != nil {
		return fmt.Errorf("webserver.port: %w", err)
	}
	if s.WebServer.AutoTLS.Enabled && len(s.WebServer.AutoTLS.Domains) == 0 {
		return fmt.Errorf("webserver.autotls.domains must list at least one domain when autotls is enabled")
	}
	return nil
}

func validateDatabaseSettings(s *Settings) error {
	db := s.Database
	enabled := 0
	for _, on := range []bool{db.SQLite.Enabled, db.MySQL.Enabled, db.Postgres.Enabled} {
		if on {
			enabled++
		}
	}
	if enabled > 1 {
		return fmt.Errorf("only one of database.sqlite, database.mysql and database.postgres can be enabled")
	}
	if db.SQLite.Enabled && strings.TrimSpace(db.SQLite.Path) == "" {
		return fmt.Errorf("database.sqlite.path is required when sqlite is enabled")
	}
	if db.MySQL.Enabled && (db.MySQL.Host == "" || db.MySQL.Database == "") {
		return fmt.Errorf("database.mysql.host and database.mysql.database are required when mysql is enabled")
	}
	if db.Postgres.Enabled && db.Postgres.DSN == "" {
		return fmt.Errorf("database.postgres.dsn is required when postgres is enabled")
	}
	return nil
}

func validateWaitlistSettings(s *Settings) error {
	if s.Waitlist.Capacity <= 0 {
		return fmt.Errorf("waitlist.capacity must be positive, got %d", s.Waitlist.Capacity)
	}
	if s.Waitlist.CountCacheTTL < 0 {
		return fmt.Errorf("waitlist.countcachettl must not be negative")
	}
	return nil
}

func validateAnalyticsSettings(s *Settings) error {
	if s.Analytics.RateLimit < 0 {
		return fmt.Errorf("analytics.ratelimit must not be negative")
	}
	if s.Analytics.RateLimit > 0 && s.Analytics.Burst < 1 {
		return fmt.Errorf("analytics.burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func validateNotifySettings(s *Settings) error {
	if s.Notify.Enabled && len(s.Notify.URLs) == 0 {
		return fmt.Errorf("notify.urls must list at least one service URL when notifications are enabled")
	}
	return nil
}
