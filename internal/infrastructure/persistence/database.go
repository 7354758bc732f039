package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erp/reconciler/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the PostgreSQL connection pool shared by every repository
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// NewDatabase opens and pings the pool. A nil logger silences GORM.
func NewDatabase(cfg *config.DatabaseConfig, logger gormlogger.Interface) (*Database, error) {
	if logger == nil {
		logger = gormlogger.Discard
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db, err := wrapDatabase(gdb)
	if err != nil {
		return nil, err
	}
	db.sql.SetMaxOpenConns(cfg.MaxOpenConns)
	db.sql.SetMaxIdleConns(cfg.MaxIdleConns)
	db.sql.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.sql.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.sql.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func wrapDatabase(gdb *gorm.DB) (*Database, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: gdb, sql: sqlDB}, nil
}

// SQL exposes the pool for migrations
func (d *Database) SQL() *sql.DB {
	return d.sql
}

// PingContext lets the health endpoint probe the pool
func (d *Database) PingContext(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sql.Close()
}
