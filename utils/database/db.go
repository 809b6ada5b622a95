package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moddingway/logging"
	"moddingway/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	defaultSQLitePath = "./data/moddingway.db"
	connectAttempts   = 10
)

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// Store is the record store adapter for users, strikes, exiles, sticky roles and notes.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection. The driver name of db selects placeholder style and schema.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured backend, retrying while Postgres starts up.
func Open(ctx context.Context, cfg model.DatabaseConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}

	dsn, err := buildDSN(driver, cfg)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = sqlx.ConnectContext(ctx, driver, dsn)
		if err == nil {
			break
		}
		logging.Warn("Database not ready, retrying", "driver", driver, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}

	logging.Info("Connected to database", "driver", driver)
	return New(db), nil
}

func buildDSN(driver string, cfg model.DatabaseConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	switch driver {
	case DriverPostgres:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.User, cfg.Password, cfg.Host, port, cfg.Name), nil
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(defaultSQLitePath), os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
		return defaultSQLitePath, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates every table and index the store needs if missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(s.db.DriverName()) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
