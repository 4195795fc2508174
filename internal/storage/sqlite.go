// Package storage provides the data persistence layer for the money book.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sehyunpark/moneybook/internal/common"
	"golang.org/x/sync/singleflight"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Object store names.
const (
	tableCategories   = "categories"
	tableTransactions = "transactions"
)

// Store owns the single shared SQLite handle behind both the category and
// transaction stores. The handle is established lazily: every public
// operation calls ensureConn first, which reopens and re-migrates when the
// cached handle is stale or a required table has gone missing (for example
// after an external factory reset of the database file).
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
	group  singleflight.Group
}

// NewStore creates a store for the database at dbPath. The connection itself
// is not opened until the first operation needs it.
func NewStore(dbPath string) (*Store, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return &Store{dbPath: dbPath}, nil
}

// Close closes the cached database connection, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// ensureConn returns a live handle, opening or repairing one as needed.
// Concurrent callers share a single in-flight open attempt instead of racing
// to open duplicate connections.
func (s *Store) ensureConn(ctx context.Context) (*sql.DB, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	db := s.db
	s.mu.Unlock()

	if db != nil {
		if err := db.PingContext(ctx); err == nil {
			missing, merr := s.missingTables(ctx, db)
			if merr == nil && len(missing) == 0 {
				return db, nil
			}
			if merr == nil && len(missing) > 0 {
				// A required table disappeared underneath us. Recreate only
				// what is missing; rows in the surviving table stay put.
				if rerr := s.recreateTables(ctx, db, missing); rerr == nil {
					return db, nil
				}
			}
		}
		// Stale handle: drop it and fall through to a fresh open.
		s.mu.Lock()
		if s.db == db {
			s.db = nil
		}
		s.mu.Unlock()
		_ = db.Close()
	}

	v, err, _ := s.group.Do("connect", func() (any, error) {
		return s.connect(ctx)
	})
	if err != nil {
		return nil, err
	}
	conn, ok := v.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected connection type", common.ErrConnection)
	}
	return conn, nil
}

// connect opens the database, applies pending migrations and caches the
// handle. It runs inside the singleflight group.
func (s *Store) connect(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	if s.db != nil {
		db := s.db
		s.mu.Unlock()
		return db, nil
	}
	s.mu.Unlock()

	db, err := sql.Open("sqlite3", s.dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()

	slog.Debug("database connection established", "path", s.dbPath)
	return db, nil
}

// missingTables reports which of the two required tables are absent.
func (s *Store) missingTables(ctx context.Context, db *sql.DB) ([]string, error) {
	var missing []string
	for _, name := range []string{tableCategories, tableTransactions} {
		var count int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect schema: %w", err)
		}
		if count == 0 {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// recreateTables rebuilds only the named tables with the current layout.
func (s *Store) recreateTables(ctx context.Context, db *sql.DB, names []string) error {
	for _, name := range names {
		var stmts []string
		switch name {
		case tableCategories:
			stmts = categoriesSchema()
		case tableTransactions:
			stmts = transactionsSchema()
		default:
			return fmt.Errorf("unknown table %q", name)
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to recreate %s: %w", name, err)
			}
		}
		slog.Info("recreated missing object store", "table", name)
	}
	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return 0, err
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate ensures the database is open and at the expected schema version.
// Opening the connection already applies pending migrations, so this exists
// for callers that want migration to happen eagerly.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.ensureConn(ctx)
	return err
}
