package favorites

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TableFavorites

const selectFavorite = `SELECT fav_id, user_id, place_id, synched, remote_id, version, created_at FROM favorites`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// WithClock replaces the time source used for default timestamps.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Add(ctx context.Context, userID, placeID int64) (int64, error) {
	query := `INSERT INTO favorites (user_id, place_id, synched, created_at) VALUES (?, ?, 0, ?)
		ON CONFLICT(user_id, place_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, placeID, dbx.FormatTime(r.now())); err != nil {
		return 0, dbx.Wrap("insert", table, err)
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT fav_id FROM favorites WHERE user_id = ? AND place_id = ?`, userID, placeID).Scan(&id)
	if err != nil {
		return 0, dbx.Wrap("select", table, err)
	}
	return id, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, userID, placeID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND place_id = ?`, userID, placeID)
	if err != nil {
		return dbx.Wrap("delete", table, err)
	}
	return dbx.ExpectOne(res, table, placeID)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Favorite, error) {
	return dbx.QueryOne(ctx, r.db, table, scanFavorite, selectFavorite+` WHERE fav_id = ?`, id)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	return dbx.QueryAll(ctx, r.db, table, scanFavorite,
		selectFavorite+` WHERE user_id = ? ORDER BY created_at DESC, fav_id DESC`, userID)
}

func (r *SQLiteRepository) IsFavorite(ctx context.Context, userID, placeID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND place_id = ?`, userID, placeID).Scan(&n)
	if err != nil {
		return false, dbx.Wrap("select", table, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "fav_id", id)
}

func (r *SQLiteRepository) ListUnsynched(ctx context.Context) ([]models.Favorite, error) {
	return dbx.QueryAll(ctx, r.db, table, scanFavorite,
		selectFavorite+` WHERE synched = 0 ORDER BY created_at, fav_id`)
}

func (r *SQLiteRepository) MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error {
	return dbx.MarkSynched(ctx, r.db, table, "fav_id", id, version, remoteID)
}

func scanFavorite(s dbx.Scanner) (models.Favorite, error) {
	var (
		f        models.Favorite
		synched  sql.NullInt64
		remoteID sql.NullInt64
	)
	err := s.Scan(&f.ID, &f.UserID, &f.PlaceID, &synched, &remoteID, &f.Version, dbx.ScanTime(&f.CreatedAt))
	f.Synched = synched.Int64 == 1
	f.RemoteID = dbx.Int64Ptr(remoteID)
	return f, err
}

var _ Repository = (*SQLiteRepository)(nil)
