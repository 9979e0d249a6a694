package datastore

import (
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/sofi-fitness/studio-landing/internal/conf"
	"github.com/sofi-fitness/studio-landing/internal/errors"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	m := settings.Database.MySQL
	switch {
	case m.Host == "":
		return validationError("mysql host must not be empty", "database.mysql.host", "")
	case m.Database == "":
		return validationError("mysql database must not be empty", "database.mysql.database", "")
	}
	return nil
}

// mysqlDSN builds the driver DSN. clientFoundRows makes UPDATE report matched
// rather than changed rows, so re-merging identical data is not "not found".
func mysqlDSN(m conf.MySQLSettings) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = m.Username
	cfg.Passwd = m.Password
	cfg.Net = "tcp"
	port := m.Port
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(m.Host, port)
	cfg.DBName = m.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open sets up the MySQL database connection and migrates the schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	m := store.Settings.Database.MySQL
	db, err := gorm.Open(mysql.Open(mysqlDSN(m)), store.gormConfig(store.Settings))
	if err != nil {
		return dbError(err, "open_mysql", errors.PriorityCritical,
			"host", m.Host, "port", m.Port, "database", m.Database)
	}
	configurePool(db)

	store.DB = db
	store.Logger.Info("connected to mysql",
		logger.String("host", m.Host),
		logger.String("database", m.Database))
	return performAutoMigration(db, store.Logger, "MySQL")
}
