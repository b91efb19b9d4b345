// Package store owns the local SQLite database: it opens the file with
// foreign-key enforcement, repairs pre-migration legacy tables, applies the
// embedded goose migrations and hands out the handle repositories are built on.
//
// A Store is an explicit value; there is no package-level database handle, so
// tests can open as many isolated in-memory stores as they need.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/client/migrations"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at path and brings its schema
// to the latest version. Any failure here leaves the app without storage and
// must be treated as fatal by the caller.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &common.StorageError{Op: "open", Err: fmt.Errorf("database path is required")}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, &common.StorageError{Op: "open", Err: err}
	}
	// One connection: the in-memory database lives on it, and a single
	// writer avoids SQLITE_BUSY between the UI path and the sync pass.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func dsn(path string) string {
	if path == MemoryPath {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return &common.StorageError{Op: "pragma", Err: err}
	}
	var fk int
	if err := s.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		return &common.StorageError{Op: "pragma", Err: err}
	}
	if fk != 1 {
		return &common.StorageError{Op: "pragma", Err: fmt.Errorf("foreign key enforcement unavailable")}
	}

	if err := s.repairLegacyPlaces(ctx); err != nil {
		return err
	}
	return s.migrate(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.Migrations)
	if err != nil {
		return &common.StorageError{Op: "migrate", Err: err}
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return &common.StorageError{Op: "migrate", Err: err}
	}
	for _, r := range results {
		s.logger.Info(ctx, "applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Version reports the applied schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.Migrations)
	if err != nil {
		return 0, &common.StorageError{Op: "version", Err: err}
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, &common.StorageError{Op: "version", Err: err}
	}
	return v, nil
}

// DB is the handle repositories are constructed with.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx runs fn in a transaction on the store; see dbx.WithTx.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
