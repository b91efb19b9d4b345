package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sqlite3 "modernc.org/sqlite/lib"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// QueryAll runs query and scans every row with scan. No rows is an empty
// result, not an error.
func QueryAll[T any](ctx context.Context, db DBTX, table string, scan func(Scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Wrap("select", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, Wrap("scan", table, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap("select", table, err)
	}
	return out, nil
}

// QueryOne scans a single row. A missing row yields nil, nil.
func QueryOne[T any](ctx context.Context, db DBTX, table string, scan func(Scanner) (T, error), query string, args ...any) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Wrap("select", table, err)
	}
	return &item, nil
}

// Insert runs an INSERT and returns the new rowid.
func Insert(ctx context.Context, db DBTX, table, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, Wrap("insert", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, Wrap("insert", table, err)
	}
	return id, nil
}

// DeleteByID removes one row by primary key; NotFoundError when absent.
func DeleteByID(ctx context.Context, db DBTX, table, pk string, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+pk+" = ?", id)
	if err != nil {
		return Wrap("delete", table, err)
	}
	return ExpectOne(res, table, id)
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var se interface{ Code() int }
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE")
}
