package places

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TablePlaces

const selectPlace = `SELECT place_id, title, description, latitude, longitude, user_id, synched, remote_id, version, created_at, updated_at FROM places`

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

// Create inserts p with synched = 0. Zero timestamps are filled from the clock.
func (r *SQLiteRepository) Create(ctx context.Context, p *models.Place) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p.Synched = false

	query := `INSERT INTO places (title, description, latitude, longitude, user_id, synched, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`
	id, err := dbx.Insert(ctx, r.db, table, query,
		p.Title, dbx.NullString(p.Description), p.Latitude, p.Longitude, dbx.NullInt64(p.UserID),
		dbx.FormatTime(p.CreatedAt), dbx.FormatTime(p.UpdatedAt))
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Place, error) {
	return dbx.QueryOne(ctx, r.db, table, scanPlace, selectPlace+` WHERE place_id = ?`, id)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Place, error) {
	return dbx.QueryAll(ctx, r.db, table, scanPlace,
		selectPlace+` WHERE user_id = ? ORDER BY created_at DESC, place_id DESC`, userID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.PlacePatch) error {
	u := dbx.NewUpdate(table)
	dbx.SetIf(u, "title", p.Title)
	dbx.SetIf(u, "description", p.Description)
	dbx.SetIf(u, "latitude", p.Latitude)
	dbx.SetIf(u, "longitude", p.Longitude)
	dbx.SetIf(u, "user_id", p.UserID)
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	u.Set("synched", 0).Set("updated_at", dbx.FormatTime(r.now())).Incr("version")
	return u.Exec(ctx, r.db, "place_id", id)
}

// Delete removes the place; children go with it through ON DELETE CASCADE.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "place_id", id)
}

func (r *SQLiteRepository) ListUnsynched(ctx context.Context) ([]models.Place, error) {
	return dbx.QueryAll(ctx, r.db, table, scanPlace,
		selectPlace+` WHERE synched = 0 ORDER BY created_at, place_id`)
}

func (r *SQLiteRepository) MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error {
	return dbx.MarkSynched(ctx, r.db, table, "place_id", id, version, remoteID)
}

func scanPlace(s dbx.Scanner) (models.Place, error) {
	var (
		p        models.Place
		desc     sql.NullString
		userID   sql.NullInt64
		remoteID sql.NullInt64
		synched  sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.Title, &desc, &p.Latitude, &p.Longitude, &userID, &synched, &remoteID, &p.Version,
		dbx.ScanTime(&p.CreatedAt), dbx.ScanTime(&p.UpdatedAt))
	p.Description = desc.String
	p.UserID = dbx.Int64Ptr(userID)
	p.RemoteID = dbx.Int64Ptr(remoteID)
	p.Synched = synched.Int64 == 1
	return p, err
}
