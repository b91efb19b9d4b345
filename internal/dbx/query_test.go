package dbx

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID int64
	V  string
}

func scanRow(s Scanner) (row, error) {
	var r row
	err := s.Scan(&r.ID, &r.V)
	return r, err
}

func TestQueryAll_And_QueryOne(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	got, err := QueryAll(ctx, db, "t", scanRow, `SELECT id, v FROM t ORDER BY id`)
	require.NoError(t, err)
	assert.Empty(t, got)

	id, err := Insert(ctx, db, "t", `INSERT INTO t(v) VALUES (?)`, "a")
	require.NoError(t, err)
	_, err = Insert(ctx, db, "t", `INSERT INTO t(v) VALUES (?)`, "b")
	require.NoError(t, err)

	got, err = QueryAll(ctx, db, "t", scanRow, `SELECT id, v FROM t ORDER BY id`)
	require.NoError(t, err)
	assert.Equal(t, []row{{1, "a"}, {2, "b"}}, got)

	one, err := QueryOne(ctx, db, "t", scanRow, `SELECT id, v FROM t WHERE id = ?`, id)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "a", one.V)

	none, err := QueryOne(ctx, db, "t", scanRow, `SELECT id, v FROM t WHERE id = ?`, 99)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	id, err := Insert(ctx, db, "t", `INSERT INTO t(v) VALUES ('x')`)
	require.NoError(t, err)

	require.NoError(t, DeleteByID(ctx, db, "t", "id", id))
	err = DeleteByID(ctx, db, "t", "id", id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQueryAll_ErrorIsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("disk I/O error"))

	_, err = QueryAll(context.Background(), db, "t", scanRow, `SELECT id, v FROM t`)
	var se *common.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "select", se.Op)
	assert.Equal(t, "t", se.Table)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`CREATE UNIQUE INDEX t_v ON t(v)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t(v) VALUES ('dup')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t(v) VALUES ('dup')`)
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("UNIQUE but not sqlite")))
	assert.False(t, IsUniqueViolation(nil))
}
