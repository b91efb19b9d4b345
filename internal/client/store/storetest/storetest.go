// Package storetest opens fully migrated in-memory stores for tests.
package storetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/store"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/stretchr/testify/require"
)

// Open returns a migrated in-memory store closed at test cleanup.
func Open(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.MemoryPath, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// DB is Open(t).DB().
func DB(t testing.TB) *sql.DB {
	t.Helper()
	return Open(t).DB()
}

// Clock returns a deterministic time source that advances by one second per call.
func Clock(start time.Time) func() time.Time {
	cur := start.Add(-time.Second)
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

// SeedUser inserts a user row and returns its id.
func SeedUser(t testing.TB, db *sql.DB, email string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (full_name, email) VALUES (?, ?)`, "Test User", email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedPlace inserts a place row owned by userID (0 for none) and returns its id.
func SeedPlace(t testing.TB, db *sql.DB, userID int64, title string) int64 {
	t.Helper()
	var owner any
	if userID != 0 {
		owner = userID
	}
	res, err := db.Exec(`INSERT INTO places (title, latitude, longitude, user_id) VALUES (?, 0, 0, ?)`, title, owner)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Synched reads the synched flag of one row.
func Synched(t testing.TB, db *sql.DB, table, pk string, id int64) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow(`SELECT synched FROM `+table+` WHERE `+pk+` = ?`, id).Scan(&v))
	return v
}
