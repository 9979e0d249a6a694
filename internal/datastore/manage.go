package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Models lists every table managed by the store.
func Models() []any {
	return []any{&WaitlistEntry{}, &AnalyticsEvent{}}
}

// performAutoMigration creates or updates the schema.
func performAutoMigration(db *gorm.DB, log logger.Logger, dbType string) error {
	start := time.Now()
	if err := db.AutoMigrate(Models()...); err != nil {
		return dbError(err, "auto_migrate", errors.PriorityCritical, "db_type", dbType)
	}
	log.Debug("schema migrated",
		logger.String("db_type", dbType),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// configurePool sets connection pool limits for networked databases.
func configurePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}
