package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Database.SQLite.Path == "" {
		return validationError("sqlite path must not be empty", "database.sqlite.path", "")
	}
	return nil
}

// Open sets up the SQLite database connection and migrates the schema.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Database.SQLite.Path
	dsn := path
	if path == ":memory:" {
		// Every pooled connection must see the same in-memory database.
		dsn = "file::memory:?cache=shared"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return dbError(err, "create_sqlite_dir", errors.PriorityHigh, "path", dir)
			}
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), store.gormConfig(store.Settings))
	if err != nil {
		return dbError(err, "open_sqlite", errors.PriorityCritical, "path", path)
	}

	// SQLite serializes writers; one connection avoids "database is locked" under load.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	store.DB = db
	store.Logger.Info("opened sqlite database", logger.String("path", path))
	return performAutoMigration(db, store.Logger, "SQLite")
}
