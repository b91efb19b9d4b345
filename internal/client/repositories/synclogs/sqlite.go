package synclogs

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TableSyncLogs

const selectLog = `SELECT sync_id, user_id, last_sync_time, status, message, created_at FROM sync_logs`

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

func (r *SQLiteRepository) Create(ctx context.Context, l *models.SyncLog) (int64, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.now()
	}
	if l.LastSyncTime.IsZero() {
		l.LastSyncTime = l.CreatedAt
	}
	if l.Status == "" {
		l.Status = models.SyncLogSuccess
	}

	query := `INSERT INTO sync_logs (user_id, last_sync_time, status, message, created_at) VALUES (?, ?, ?, ?, ?)`
	id, err := dbx.Insert(ctx, r.db, table, query,
		l.UserID, dbx.FormatTime(l.LastSyncTime), l.Status, dbx.NullString(l.Message), dbx.FormatTime(l.CreatedAt))
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.SyncLog, error) {
	return dbx.QueryOne(ctx, r.db, table, scanLog, selectLog+` WHERE sync_id = ?`, id)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.SyncLog, error) {
	return dbx.QueryAll(ctx, r.db, table, scanLog,
		selectLog+` WHERE user_id = ? ORDER BY last_sync_time DESC, sync_id DESC`, userID)
}

func (r *SQLiteRepository) Last(ctx context.Context, userID int64) (*models.SyncLog, error) {
	return dbx.QueryOne(ctx, r.db, table, scanLog,
		selectLog+` WHERE user_id = ? ORDER BY last_sync_time DESC, sync_id DESC LIMIT 1`, userID)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.SyncLogPatch) error {
	u := dbx.NewUpdate(table)
	if p.LastSyncTime != nil {
		u.Set("last_sync_time", dbx.FormatTime(*p.LastSyncTime))
	}
	dbx.SetIf(u, "status", p.Status)
	dbx.SetIf(u, "message", p.Message)
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	return u.Exec(ctx, r.db, "sync_id", id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "sync_id", id)
}

func scanLog(s dbx.Scanner) (models.SyncLog, error) {
	var (
		l       models.SyncLog
		status  sql.NullString
		message sql.NullString
	)
	err := s.Scan(&l.ID, &l.UserID, dbx.ScanTime(&l.LastSyncTime), &status, &message, dbx.ScanTime(&l.CreatedAt))
	l.Status = status.String
	l.Message = message.String
	return l, err
}
