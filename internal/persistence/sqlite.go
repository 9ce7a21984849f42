package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
)

// SQLite wraps a database/sql handle backed by go-sqlite3.
type SQLite struct {
	DB *sql.DB
}

// SQLiteOptions tune the sqlite connection pool.
type SQLiteOptions struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

// SQLiteOption mutates SQLiteOptions.
type SQLiteOption func(*SQLiteOptions)

// WithRetry controls connection retries. Attempts below one are ignored.
func WithRetry(attempts int, delay time.Duration) SQLiteOption {
	return func(o *SQLiteOptions) {
		if attempts > 0 {
			o.RetryAttempts = attempts
		}
		if delay >= 0 {
			o.RetryDelay = delay
		}
	}
}

// NewSQLite opens the sqlite database, creating its parent directory.
func NewSQLite(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, opts ...SQLiteOption) (*SQLite, error) {
	options := &SQLiteOptions{
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifeSec) * time.Second,
		RetryAttempts:   3,
		RetryDelay:      200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(options)
	}
	dsn := cfg.DSN
	if dsn == "" {
		return nil, errors.New("sqlite data source cannot be empty")
	}

	if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	var err error
	for i := 0; i < options.RetryAttempts; i++ {
		var db *sql.DB
		db, err = sql.Open(config.DriverSQLite, dsn)
		if err == nil {
			// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
			db.SetMaxOpenConns(options.MaxOpenConns)
			if options.ConnMaxLifetime > 0 {
				db.SetConnMaxLifetime(options.ConnMaxLifetime)
			}
			if err = db.PingContext(ctx); err == nil {
				logger.Info("ticket store ready", zap.String("driver", config.DriverSQLite), zap.String("path", dsn))
				return &SQLite{DB: db}, nil
			}
			db.Close()
		}
		if i < options.RetryAttempts-1 {
			logger.Warn("sqlite not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * options.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to open sqlite after %d attempts: %w", options.RetryAttempts, err)
}

// Close releases the handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("sqlite handle not configured")
	}
	return s.DB.PingContext(ctx)
}
