package dbx

import (
	"context"
	"fmt"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/common"
)

// Update builds an UPDATE statement from only the columns that were set,
// so unspecified columns are never overwritten.
//
// Column names come from code, never from user input.
type Update struct {
	table string
	sets  []string
	args  []any
}

// NewUpdate starts an update for table.
func NewUpdate(table string) *Update {
	return &Update{table: table}
}

// Set adds col = v unconditionally.
func (u *Update) Set(col string, v any) *Update {
	u.sets = append(u.sets, col+" = ?")
	u.args = append(u.args, v)
	return u
}

// Incr adds col = col + 1.
func (u *Update) Incr(col string) *Update {
	u.sets = append(u.sets, col+" = "+col+" + 1")
	return u
}

// SetIf adds col = *v when v is non-nil.
func SetIf[T any](u *Update, col string, v *T) *Update {
	if v != nil {
		u.Set(col, *v)
	}
	return u
}

// Len is the number of columns set so far.
func (u *Update) Len() int { return len(u.sets) }

// Build renders the statement with a "WHERE pk = ?" predicate.
func (u *Update) Build(pk string, id int64) (string, []any, error) {
	if len(u.sets) == 0 {
		return "", nil, common.ErrEmptyPatch
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", u.table, strings.Join(u.sets, ", "), pk)
	args := append(append([]any{}, u.args...), id)
	return query, args, nil
}

// Exec runs the statement against db and reports a NotFoundError when the
// predicate matched nothing.
func (u *Update) Exec(ctx context.Context, db DBTX, pk string, id int64) error {
	query, args, err := u.Build(pk, id)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return Wrap("update", u.table, err)
	}
	return ExpectOne(res, u.table, id)
}

// ExecAtVersion runs the statement only if the row's version column still
// equals version. It returns common.ErrRowChanged when the row exists at
// another version and a NotFoundError when it is gone.
func (u *Update) ExecAtVersion(ctx context.Context, db DBTX, pk string, id, version int64) error {
	query, args, err := u.Build(pk, id)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, query+" AND version = ?", append(args, version)...)
	if err != nil {
		return Wrap("update", u.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Wrap("rows affected", u.table, err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", u.table, pk), id).Scan(&exists)
	if err != nil {
		return Wrap("select", u.table, err)
	}
	if exists == 0 {
		return &common.NotFoundError{Table: u.table, ID: id}
	}
	return common.ErrRowChanged
}

// MarkSynched sets synched = 1 on the row if it is still at version, the
// version that was pushed. The backend id is recorded either way, so a
// re-push of an edited row addresses the same remote record.
func MarkSynched(ctx context.Context, db DBTX, table, pk string, id, version int64, remoteID *int64) error {
	if remoteID != nil {
		if err := NewUpdate(table).Set("remote_id", *remoteID).Exec(ctx, db, pk, id); err != nil {
			return err
		}
	}
	return NewUpdate(table).Set("synched", 1).ExecAtVersion(ctx, db, pk, id, version)
}
