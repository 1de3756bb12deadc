package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database owns the connection pool shared by the settlement stores
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase opens a Postgres pool and verifies it with a ping.
// SQL is logged through zap at cfg.LogLevel; statements slower than
// slowThreshold are logged as warnings.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger, slowThreshold time.Duration) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel),
		logger.WithSlowThreshold(slowThreshold))

	// Transactions are opened explicitly by the settlement scope
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database pool opened",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sqlDB.Close()
}

// Ping reports whether the database answers; used by the readiness probe
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}
