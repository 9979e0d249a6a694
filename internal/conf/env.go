// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVars   []string           // Environment variable names, first set wins
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
// Names follow the hosting platform's conventions so an existing deployment
// environment can be reused unchanged.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"main.siteurl", []string{"SITE_URL", "NEXT_PUBLIC_SITE_URL"}, validateEnvURL},
		{"main.environment", []string{"APP_ENV", "NODE_ENV"}, validateEnvEnvironment},
		{"debug", []string{"STUDIO_DEBUG"}, validateEnvBool},

		{"logging.level", []string{"LOG_LEVEL"}, validateEnvLogLevel},
		{"logging.json", []string{"LOG_JSON"}, validateEnvBool},

		{"webserver.port", []string{"PORT"}, validateEnvPort},
		{"webserver.trustproxy", []string{"TRUST_PROXY"}, validateEnvBool},

		{"database.sqlite.path", []string{"SQLITE_PATH"}, nil},
		{"database.postgres.dsn", []string{"DATABASE_URL"}, validateEnvPostgresDSN},
		{"database.postgres.dsnfile", []string{"DATABASE_URL_FILE"}, nil},

		{"clerk.publishablekey", []string{"CLERK_PUBLISHABLE_KEY", "NEXT_PUBLIC_CLERK_PUBLISHABLE_KEY"}, nil},
		{"clerk.webhooksecret", []string{"CLERK_WEBHOOK_SECRET"}, validateEnvWebhookSecret},
		{"clerk.webhooksecretfile", []string{"CLERK_WEBHOOK_SECRET_FILE"}, nil},

		{"convertkit.apikey", []string{"CONVERTKIT_API_KEY"}, nil},
		{"convertkit.apikeyfile", []string{"CONVERTKIT_API_KEY_FILE"}, nil},
		{"convertkit.formid", []string{"CONVERTKIT_FORM_ID"}, validateEnvFormID},

		{"cookies.secret", []string{"COOKIE_SECRET"}, nil},
		{"cookies.secretfile", []string{"COOKIE_SECRET_FILE"}, nil},

		{"media.customersubdomain", []string{"CLOUDFLARE_CUSTOMER_SUBDOMAIN", "NEXT_PUBLIC_CLOUDFLARE_CUSTOMER_SUBDOMAIN"}, nil},

		{"sentry.dsn", []string{"SENTRY_DSN"}, validateEnvURL},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		args := append([]string{binding.ConfigKey}, binding.EnvVars...)
		if err := viper.BindEnv(args...); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", strings.Join(binding.EnvVars, "/"), err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		for _, name := range binding.EnvVars {
			value := os.Getenv(name)
			if value == "" {
				continue
			}
			if err := binding.Validate(value); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value: %v", name, err))
			}
			break
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func validateEnvEnvironment(value string) error {
	switch strings.ToLower(value) {
	case EnvDevelopment, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("environment must be one of development, production, test; got '%s'", value)
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown log level '%s'", value)
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("port must be numeric: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvPostgresDSN(value string) error {
	if strings.HasPrefix(value, "postgres://") || strings.HasPrefix(value, "postgresql://") {
		return nil
	}
	// key=value DSNs are accepted as long as they name a host
	if strings.Contains(value, "host=") {
		return nil
	}
	return fmt.Errorf("DATABASE_URL must be a postgres:// URL or a key=value DSN")
}

func validateEnvWebhookSecret(value string) error {
	if !strings.HasPrefix(value, "whsec_") {
		return fmt.Errorf("webhook secret must start with whsec_")
	}
	return nil
}

func validateEnvFormID(value string) error {
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return fmt.Errorf("form id must be numeric, got '%s'", value)
	}
	return nil
}
