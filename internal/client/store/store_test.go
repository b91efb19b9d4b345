package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesAllTables(t *testing.T) {
	s := openMemory(t)

	want := []string{"users", "places", "place_photos", "favorites", "notes", "note_photos", "planned_visits", "sync_logs"}
	for _, table := range want {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	s := openMemory(t)

	_, err := s.DB().Exec(`INSERT INTO place_photos (place_id, local_path) VALUES (999, '/tmp/x.jpg')`)
	require.Error(t, err, "orphan photo must be rejected")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s1, err := Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	_, err = s1.DB().Exec(`INSERT INTO places (title, latitude, longitude) VALUES ('Cafe', 1, 2)`)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	defer s2.Close()

	var n int
	require.NoError(t, s2.DB().QueryRow(`SELECT COUNT(*) FROM places`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_EmptyPathIsStorageError(t *testing.T) {
	_, err := Open(context.Background(), " ", logging.Discard())
	var se *common.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "open", se.Op)
}

func TestOpen_RebuildsLegacyPlacesKeepingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
CREATE TABLE users (user_id INTEGER PRIMARY KEY AUTOINCREMENT, full_name TEXT NOT NULL, email TEXT UNIQUE NOT NULL);
CREATE TABLE places (
  place_id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  image_url TEXT NOT NULL,
  local_path TEXT,
  synched INTEGER DEFAULT 0,
  user_id INTEGER
);
INSERT INTO places (title, description, latitude, longitude, image_url, local_path)
VALUES ('Old Town', 'legacy row', 48.1, 11.5, 'https://cdn/x.jpg', '/old/x.jpg');
`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(context.Background(), path, logging.Discard())
	require.NoError(t, err)
	defer s.Close()

	var title, desc string
	require.NoError(t, s.DB().QueryRow(`SELECT title, description FROM places WHERE place_id = 1`).Scan(&title, &desc))
	assert.Equal(t, "Old Town", title)
	assert.Equal(t, "legacy row", desc)

	_, err = s.DB().Exec(`SELECT image_url FROM places`)
	assert.Error(t, err, "legacy column must be gone")

	_, err = s.DB().Exec(`INSERT INTO places (title, latitude, longitude) VALUES ('New', 0, 0)`)
	assert.NoError(t, err)
}

func TestWithTx_UsesStoreHandle(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO places (title, latitude, longitude) VALUES ('A', 0, 0)`)
		require.NoError(t, err)
		_, err = tx.ExecContext(ctx, `INSERT INTO place_photos (place_id, local_path) VALUES (999, '/x')`)
		return err
	})
	require.Error(t, err)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM places`).Scan(&n))
	assert.Equal(t, 0, n, "insert must roll back with the failing child insert")
}
