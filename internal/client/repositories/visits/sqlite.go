package visits

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TablePlannedVisits

const selectVisit = `SELECT planned_visit_id, user_id, place_id, planned_date, is_completed, synched, remote_id, version, created_at, updated_at FROM planned_visits`

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

func (r *SQLiteRepository) Create(ctx context.Context, v *models.PlannedVisit) (int64, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = r.now()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	v.Synched = false

	query := `INSERT INTO planned_visits (user_id, place_id, planned_date, is_completed, synched, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`
	id, err := dbx.Insert(ctx, r.db, table, query,
		v.UserID, v.PlaceID, dbx.TimeValue(v.PlannedDate), dbx.Bool(v.IsCompleted),
		dbx.FormatTime(v.CreatedAt), dbx.FormatTime(v.UpdatedAt))
	if err != nil {
		return 0, err
	}
	v.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.PlannedVisit, error) {
	return dbx.QueryOne(ctx, r.db, table, scanVisit, selectVisit+` WHERE planned_visit_id = ?`, id)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.PlannedVisit, error) {
	return dbx.QueryAll(ctx, r.db, table, scanVisit,
		selectVisit+` WHERE user_id = ? ORDER BY planned_date IS NULL, planned_date, planned_visit_id`, userID)
}

func (r *SQLiteRepository) ListByPlace(ctx context.Context, placeID int64) ([]models.PlannedVisit, error) {
	return dbx.QueryAll(ctx, r.db, table, scanVisit,
		selectVisit+` WHERE place_id = ? ORDER BY planned_date IS NULL, planned_date, planned_visit_id`, placeID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.PlannedVisitPatch) error {
	u := dbx.NewUpdate(table)
	if p.PlannedDate != nil {
		u.Set("planned_date", dbx.TimeValue(*p.PlannedDate))
	}
	if p.IsCompleted != nil {
		u.Set("is_completed", dbx.Bool(*p.IsCompleted))
	}
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	u.Set("synched", 0).Set("updated_at", dbx.FormatTime(r.now())).Incr("version")
	return u.Exec(ctx, r.db, "planned_visit_id", id)
}

func (r *SQLiteRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return r.Update(ctx, id, models.PlannedVisitPatch{IsCompleted: &completed})
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "planned_visit_id", id)
}

func (r *SQLiteRepository) ListUnsynched(ctx context.Context) ([]models.PlannedVisit, error) {
	return dbx.QueryAll(ctx, r.db, table, scanVisit,
		selectVisit+` WHERE synched = 0 ORDER BY created_at, planned_visit_id`)
}

func (r *SQLiteRepository) MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error {
	return dbx.MarkSynched(ctx, r.db, table, "planned_visit_id", id, version, remoteID)
}

func scanVisit(s dbx.Scanner) (models.PlannedVisit, error) {
	var (
		v         models.PlannedVisit
		completed sql.NullInt64
		synched   sql.NullInt64
		remoteID  sql.NullInt64
	)
	err := s.Scan(&v.ID, &v.UserID, &v.PlaceID, dbx.ScanTime(&v.PlannedDate), &completed, &synched, &remoteID, &v.Version,
		dbx.ScanTime(&v.CreatedAt), dbx.ScanTime(&v.UpdatedAt))
	v.IsCompleted = completed.Int64 == 1
	v.Synched = synched.Int64 == 1
	v.RemoteID = dbx.Int64Ptr(remoteID)
	return v, err
}
