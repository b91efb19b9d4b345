package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
)

const table = models.TableUsers

const selectUser = `SELECT user_id, firebase_uid, full_name, email, role, password_hash, created_at, updated_at FROM users`

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

func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	if u.Role == "" {
		u.Role = "user"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	query := `INSERT INTO users (firebase_uid, full_name, email, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := dbx.Insert(ctx, r.db, table, query,
		dbx.NullString(u.FirebaseUID), u.FullName, u.Email, u.Role, dbx.NullString(u.PasswordHash),
		dbx.FormatTime(u.CreatedAt), dbx.FormatTime(u.UpdatedAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrEmailTaken
		}
		return 0, err
	}
	u.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return dbx.QueryOne(ctx, r.db, table, scanUser, selectUser+` WHERE user_id = ?`, id)
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return dbx.QueryOne(ctx, r.db, table, scanUser, selectUser+` WHERE email = ?`, email)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p models.UserPatch) error {
	u := dbx.NewUpdate(table)
	dbx.SetIf(u, "firebase_uid", p.FirebaseUID)
	dbx.SetIf(u, "full_name", p.FullName)
	dbx.SetIf(u, "email", p.Email)
	dbx.SetIf(u, "role", p.Role)
	dbx.SetIf(u, "password_hash", p.PasswordHash)
	if u.Len() == 0 {
		return common.ErrEmptyPatch
	}
	u.Set("updated_at", dbx.FormatTime(r.now()))

	err := u.Exec(ctx, r.db, "user_id", id)
	if dbx.IsUniqueViolation(err) {
		return common.ErrEmailTaken
	}
	return err
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.DeleteByID(ctx, r.db, table, "user_id", id)
}

func scanUser(s dbx.Scanner) (models.User, error) {
	var (
		u            models.User
		firebaseUID  sql.NullString
		passwordHash sql.NullString
		role         sql.NullString
	)
	err := s.Scan(&u.ID, &firebaseUID, &u.FullName, &u.Email, &role, &passwordHash,
		dbx.ScanTime(&u.CreatedAt), dbx.ScanTime(&u.UpdatedAt))
	u.FirebaseUID = firebaseUID.String
	u.PasswordHash = passwordHash.String
	u.Role = role.String
	return u, err
}
