package notes

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TableNotes

const selectNote = `SELECT note_id, user_id, place_id, title, content, latitude, longitude, synched, remote_id, version, created_at, updated_at FROM notes`

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

func (r *SQLiteRepository) Create(ctx context.Context, n *models.Note) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	n.Synched = false

	query := `INSERT INTO notes (user_id, place_id, title, content, latitude, longitude, synched, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`
	id, err := dbx.Insert(ctx, r.db, table, query,
		n.UserID, n.PlaceID, dbx.NullString(n.Title), dbx.NullString(n.Content),
		dbx.NullFloat64(n.Latitude), dbx.NullFloat64(n.Longitude),
		dbx.FormatTime(n.CreatedAt), dbx.FormatTime(n.UpdatedAt))
	if err != nil {
		return 0, err
	}
	n.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	return dbx.QueryOne(ctx, r.db, table, scanNote, selectNote+` WHERE note_id = ?`, id)
}

func (r *SQLiteRepository) ListByPlace(ctx context.Context, placeID int64) ([]models.Note, error) {
	return dbx.QueryAll(ctx, r.db, table, scanNote,
		selectNote+` WHERE place_id = ? ORDER BY created_at DESC, note_id DESC`, placeID)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Note, error) {
	return dbx.QueryAll(ctx, r.db, table, scanNote,
		selectNote+` WHERE user_id = ? ORDER BY created_at DESC, note_id DESC`, userID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.NotePatch) error {
	u := dbx.NewUpdate(table)
	dbx.SetIf(u, "title", p.Title)
	dbx.SetIf(u, "content", p.Content)
	dbx.SetIf(u, "latitude", p.Latitude)
	dbx.SetIf(u, "longitude", p.Longitude)
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	u.Set("synched", 0).Set("updated_at", dbx.FormatTime(r.now())).Incr("version")
	return u.Exec(ctx, r.db, "note_id", id)
}

// Delete removes the note and, through the schema, its photos.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "note_id", id)
}

func (r *SQLiteRepository) ListUnsynched(ctx context.Context) ([]models.Note, error) {
	return dbx.QueryAll(ctx, r.db, table, scanNote,
		selectNote+` WHERE synched = 0 ORDER BY created_at, note_id`)
}

func (r *SQLiteRepository) MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error {
	return dbx.MarkSynched(ctx, r.db, table, "note_id", id, version, remoteID)
}

func scanNote(s dbx.Scanner) (models.Note, error) {
	var (
		n        models.Note
		title    sql.NullString
		content  sql.NullString
		lat, lon sql.NullFloat64
		synched  sql.NullInt64
		remoteID sql.NullInt64
	)
	err := s.Scan(&n.ID, &n.UserID, &n.PlaceID, &title, &content, &lat, &lon, &synched, &remoteID, &n.Version,
		dbx.ScanTime(&n.CreatedAt), dbx.ScanTime(&n.UpdatedAt))
	n.Title = title.String
	n.Content = content.String
	n.Latitude = dbx.Float64Ptr(lat)
	n.Longitude = dbx.Float64Ptr(lon)
	n.Synched = synched.Int64 == 1
	n.RemoteID = dbx.Int64Ptr(remoteID)
	return n, err
}
