package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PoolOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     logger.LogLevel
}

// DefaultPool matches the store sizing of the service: ten concurrent connections.
var DefaultPool = PoolOptions{MaxOpenConns: 10, MaxIdleConns: 5, LogLevel: logger.Warn}

func OpenGorm(dsn string, opts PoolOptions, log *zap.Logger) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opts, log)
}

// OpenGormWithDialector opens and pings a pool on any dialector (tests pass sqlmock/sqlite).
func OpenGormWithDialector(dial gorm.Dialector, opts PoolOptions, log *zap.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(opts.LogLevel),
		DisableAutomaticPing: true,
		TranslateError:       true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info("gorm: connected", zap.Int("max_open_conns", opts.MaxOpenConns))
	return db, nil
}

// ParseLogLevel maps GORM_LOG_LEVEL values to gorm levels, defaulting to warn.
func ParseLogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
