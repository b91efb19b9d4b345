// Package dbx provides the small database abstractions every repository is
// built on: a handle interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a scoped transaction helper with guaranteed rollback, a partial-update
// builder and helpers for TEXT timestamp columns.
package dbx

import (
	"context"
	"database/sql"

	"github.com/franckludovic/travelbuddy/internal/common"
)

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions. *sql.DB satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Repositories constructed inside fn must be bound to tx, not to the outer
// handle, otherwise their statements run outside the transaction.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    id, err := places.NewSQLiteRepository(tx).Create(ctx, p)
//	    ...
//	})
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return &common.StorageError{Op: "begin", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = &common.StorageError{Op: "commit", Err: cerr}
		}
	}()

	err = fn(ctx, tx)
	return err
}

// Wrap converts a driver error into a *common.StorageError tagged with the
// operation and table. A nil err stays nil.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &common.StorageError{Op: op, Table: table, Err: err}
}

// ExpectOne checks that res affected at least one row and returns a
// NotFoundError otherwise.
func ExpectOne(res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return Wrap("rows affected", table, err)
	}
	if n == 0 {
		return &common.NotFoundError{Table: table, ID: id}
	}
	return nil
}
