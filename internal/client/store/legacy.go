package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/common"
)

// Columns that only existed in the pre-migration places table. Their presence
// means the table was created by an early build and must be rebuilt.
var legacyPlaceColumns = []string{"image_url", "local_path"}

// Columns carried over from a legacy places table when present.
var placeColumns = []string{
	"place_id", "title", "description", "latitude", "longitude",
	"synched", "created_at", "updated_at", "user_id",
}

const createPlacesRebuild = `
CREATE TABLE places__rebuild (
    place_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT,
    latitude    REAL NOT NULL,
    longitude   REAL NOT NULL,
    synched     INTEGER DEFAULT 0,
    created_at  TEXT DEFAULT (datetime('now')),
    updated_at  TEXT,
    user_id     INTEGER,
    FOREIGN KEY(user_id) REFERENCES users(user_id) ON DELETE SET NULL ON UPDATE CASCADE
)`

// repairLegacyPlaces rebuilds a legacy places table in place, keeping its
// rows, using SQLite's create-copy-drop-rename procedure. Foreign keys are
// switched off on the connection for the duration so dropping the old table
// does not cascade into children.
func (s *Store) repairLegacyPlaces(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return &common.StorageError{Op: "legacy check", Table: "places", Err: err}
	}
	defer conn.Close()

	cols, err := tableColumns(ctx, conn, "places")
	if err != nil {
		return &common.StorageError{Op: "legacy check", Table: "places", Err: err}
	}
	if !hasAny(cols, legacyPlaceColumns) {
		return nil
	}

	s.logger.Warn(ctx, "rebuilding legacy places table", "columns", strings.Join(cols, ","))

	var keep []string
	for _, c := range placeColumns {
		if slices.Contains(cols, c) {
			keep = append(keep, c)
		}
	}
	colList := strings.Join(keep, ", ")

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return &common.StorageError{Op: "legacy rebuild", Table: "places", Err: err}
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON") //nolint:errcheck

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &common.StorageError{Op: "legacy rebuild", Table: "places", Err: err}
	}
	stmts := []string{
		createPlacesRebuild,
		fmt.Sprintf("INSERT INTO places__rebuild (%s) SELECT %s FROM places", colList, colList),
		"DROP TABLE places",
		"ALTER TABLE places__rebuild RENAME TO places",
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return &common.StorageError{Op: "legacy rebuild", Table: "places", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &common.StorageError{Op: "legacy rebuild", Table: "places", Err: err}
	}
	return nil
}

func tableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func hasAny(cols, want []string) bool {
	return slices.ContainsFunc(want, func(w string) bool { return slices.Contains(cols, w) })
}
