package datastore

import (
	"net/url"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// PostgresStore implements DataStore for PostgreSQL through lib/pq.
type PostgresStore struct {
	DataStore
	Settings *conf.Settings
}

// Open connects to PostgreSQL and migrates the schema.
func (store *PostgresStore) Open() error {
	dsn := store.Settings.Database.Postgres.DSN
	if dsn == "" {
		return validationError("postgres dsn must not be empty", "database.postgres.dsn", "")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), store.gormConfig(store.Settings))
	if err != nil {
		return dbError(err, "open_postgres", errors.PriorityCritical, "host", dsnHost(dsn))
	}
	configurePool(db)

	store.DB = db
	store.Logger.Info("connected to postgres", logger.String("host", dsnHost(dsn)))
	return performAutoMigration(db, store.Logger, "PostgreSQL")
}

// dsnHost returns the host of a URL-style DSN without credentials.
func dsnHost(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
