package photos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db       dbx.DBTX
	table    string
	ownerCol string
	now      func() time.Time
	selectQ  string
}

// NewPlacePhotos binds the repository to place_photos.
func NewPlacePhotos(db dbx.DBTX) *SQLiteRepository {
	return newRepository(db, models.TablePlacePhotos, "place_id")
}

// NewNotePhotos binds the repository to note_photos.
func NewNotePhotos(db dbx.DBTX) *SQLiteRepository {
	return newRepository(db, models.TableNotePhotos, "note_id")
}

func newRepository(db dbx.DBTX, table, ownerCol string) *SQLiteRepository {
	return &SQLiteRepository{
		db:       db,
		table:    table,
		ownerCol: ownerCol,
		now:      time.Now,
		selectQ: fmt.Sprintf(`SELECT photo_id, %s, photo_url, local_path, display_order, synched, remote_id, version, created_at FROM %s`,
			ownerCol, table),
	}
}

// WithClock replaces the time source used for default timestamps.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Table() string { return r.table }

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Photo) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.Synched = false

	query := fmt.Sprintf(`INSERT INTO %s (%s, photo_url, local_path, display_order, synched, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`, r.table, r.ownerCol)
	id, err := dbx.Insert(ctx, r.db, r.table, query,
		p.OwnerID, dbx.NullString(p.PhotoURL), dbx.NullString(p.LocalPath), p.DisplayOrder, dbx.FormatTime(p.CreatedAt))
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	return dbx.QueryOne(ctx, r.db, r.table, scanPhoto, r.selectQ+` WHERE photo_id = ?`, id)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Photo, error) {
	return dbx.QueryAll(ctx, r.db, r.table, scanPhoto,
		r.selectQ+` WHERE `+r.ownerCol+` = ? ORDER BY display_order, photo_id`, ownerID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.PhotoPatch) error {
	u := dbx.NewUpdate(r.table)
	if p.PhotoURL != nil {
		u.Set("photo_url", dbx.NullString(*p.PhotoURL))
	}
	if p.LocalPath != nil {
		u.Set("local_path", dbx.NullString(*p.LocalPath))
		if p.PhotoURL == nil && *p.LocalPath != "" {
			// a new local asset invalidates the uploaded one
			u.Set("photo_url", nil)
		}
	}
	dbx.SetIf(u, "display_order", p.DisplayOrder)
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	u.Set("synched", 0).Incr("version")
	return u.Exec(ctx, r.db, "photo_id", id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, r.table, "photo_id", id)
}

func (r *SQLiteRepository) ListUnsynched(ctx context.Context) ([]models.Photo, error) {
	return dbx.QueryAll(ctx, r.db, r.table, scanPhoto,
		r.selectQ+` WHERE synched = 0 ORDER BY created_at, photo_id`)
}

func (r *SQLiteRepository) MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error {
	return dbx.MarkSynched(ctx, r.db, r.table, "photo_id", id, version, remoteID)
}

func (r *SQLiteRepository) SetPhotoURL(ctx context.Context, id, version int64, url string) error {
	return dbx.NewUpdate(r.table).Set("photo_url", dbx.NullString(url)).ExecAtVersion(ctx, r.db, "photo_id", id, version)
}

func (r *SQLiteRepository) ListEvictable(ctx context.Context) ([]models.Photo, error) {
	return dbx.QueryAll(ctx, r.db, r.table, scanPhoto,
		r.selectQ+` WHERE synched = 1 AND photo_url IS NOT NULL AND photo_url <> ''
			AND local_path IS NOT NULL AND local_path <> '' ORDER BY photo_id`)
}

func (r *SQLiteRepository) ClearLocalPath(ctx context.Context, id int64) error {
	return dbx.NewUpdate(r.table).Set("local_path", nil).Exec(ctx, r.db, "photo_id", id)
}

func scanPhoto(s dbx.Scanner) (models.Photo, error) {
	var (
		p         models.Photo
		photoURL  sql.NullString
		localPath sql.NullString
		order     sql.NullInt64
		synched   sql.NullInt64
		remoteID  sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.OwnerID, &photoURL, &localPath, &order, &synched, &remoteID, &p.Version, dbx.ScanTime(&p.CreatedAt))
	p.PhotoURL = photoURL.String
	p.LocalPath = localPath.String
	p.DisplayOrder = int(order.Int64)
	p.Synched = synched.Int64 == 1
	p.RemoteID = dbx.Int64Ptr(remoteID)
	return p, err
}
