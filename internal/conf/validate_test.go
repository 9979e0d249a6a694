package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Main.SiteURL = "https://sofi.fitness"
	s.Main.Environment = EnvDevelopment
	s.WebServer.Port = "8080"
	s.Database.SQLite = SQLiteSettings{Enabled: true, Path: ":memory:"}
	s.Waitlist = WaitlistSettings{Capacity: 100, CountCacheTTL: time.Second}
	s.Analytics = AnalyticsSettings{RateLimit: 1, Burst: 5}
	return s
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{
			name:    "relative site url",
			mutate:  func(s *Settings) { s.Main.SiteURL = "/landing" },
			wantErr: "main.siteurl",
		},
		{
			name:    "unknown environment",
			mutate:  func(s *Settings) { s.Main.Environment = "staging" },
			wantErr: "main.environment",
		},
		{
			name:    "bad port",
			mutate:  func(s *Settings) { s.WebServer.Port = "99999" },
			wantErr: "webserver.port",
		},
		{
			name: "two databases",
			mutate: func(s *Settings) {
				s.Database.MySQL = MySQLSettings{Enabled: true, Host: "db", Database: "waitlist"}
			},
			wantErr: "only one of",
		},
		{
			name: "postgres without dsn",
			mutate: func(s *Settings) {
				s.Database.SQLite.Enabled = false
				s.Database.Postgres.Enabled = true
			},
			wantErr: "database.postgres.dsn",
		},
		{
			name:    "zero capacity",
			mutate:  func(s *Settings) { s.Waitlist.Capacity = 0 },
			wantErr: "waitlist.capacity",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(s *Settings) { s.Analytics.Burst = 0 },
			wantErr: "analytics.burst",
		},
		{
			name:    "notify without urls",
			mutate:  func(s *Settings) { s.Notify.Enabled = true },
			wantErr: "notify.urls",
		},
		{
			name:    "autotls without domains",
			mutate:  func(s *Settings) { s.WebServer.AutoTLS.Enabled = true },
			wantErr: "autotls",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvValidators(t *testing.T) {
	assert.NoError(t, validateEnvWebhookSecret("whsec_abc"))
	assert.Error(t, validateEnvWebhookSecret("abc"))
	assert.NoError(t, validateEnvPostgresDSN("postgresql://u@h/db"))
	assert.NoError(t, validateEnvPostgresDSN("host=localhost user=u dbname=db"))
	assert.Error(t, validateEnvPostgresDSN("mysql://u@h/db"))
	assert.NoError(t, validateEnvURL("https://sofi.fitness"))
	assert.Error(t, validateEnvURL("ftp://sofi.fitness"))
	assert.NoError(t, validateEnvBool("TRUE"))
	assert.Error(t, validateEnvBool("yes"))
	assert.NoError(t, validateEnvEnvironment("Production"))
	assert.Error(t, validateEnvLogLevel("verbose"))
}
