package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/models"
)

// Service is the application's handle on the database.
type Service interface {
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
}

const healthTimeout = 5 * time.Second

type service struct {
	db     *gorm.DB
	driver string
}

// Dialector picks the gorm driver for the configured database.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres, "":
		return postgres.Open(PostgresDSN(cfg)), nil
	case config.DriverMySQL:
		if cfg.MySQLDSN == "" {
			return nil, errors.New("MYSQL_DSN is required for the mysql driver")
		}
		return mysql.Open(cfg.MySQLDSN), nil
	case config.DriverSQLite:
		if cfg.SQLiteFile == "" {
			return nil, errors.New("SQLITE_FILE is required for the sqlite driver")
		}
		return sqlite.Open(SQLiteDSN(cfg.SQLiteFile)), nil
	}
	return nil, errors.Errorf("unknown database driver %q", cfg.DBDriver)
}

// PostgresDSN builds a libpq style connection string.
func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
}

// SQLiteDSN turns foreign keys on, otherwise the cascades are not enforced.
func SQLiteDSN(file string) string {
	if strings.Contains(file, "?") {
		return file + "&_foreign_keys=on"
	}
	return file + "?_foreign_keys=on"
}

// New opens the database, migrates the schema and tunes the pool.
func New(cfg *config.Config) (Service, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return Open(dialector, cfg)
}

// Open is New for an already built dialector (tests hand in containers).
func Open(dialector gorm.Dialector, cfg *config.Config) (Service, error) {
	logLevel := logger.Warn
	if cfg.DebugMode {
		logLevel = logger.Info
	}

	gormLogger := logger.New(
		logging.Log.WithField("component", "gorm"),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	logging.Log.WithField("driver", dialector.Name()).Info("database connected")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database instance")
	}
	if dialector.Name() == config.DriverSQLite {
		// a single writer avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &service{db: db, driver: dialector.Name()}, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	logging.Log.Debug("database migrations completed")
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health pings the database and reports the pool state. "status" is "up"
// or "down"; a down database also carries "error".
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	stats := map[string]string{"driver": s.driver}
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		logging.Log.WithError(err).Warn("database health check failed")
		return stats
	}

	pool := sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(pool.OpenConnections)
	stats["in_use"] = strconv.Itoa(pool.InUse)
	stats["idle"] = strconv.Itoa(pool.Idle)
	stats["wait_count"] = strconv.FormatInt(pool.WaitCount, 10)
	stats["max_open_connections"] = strconv.Itoa(pool.MaxOpenConnections)
	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	logging.Log.WithField("driver", s.driver).Info("disconnected from database")
	return sqlDB.Close()
}
