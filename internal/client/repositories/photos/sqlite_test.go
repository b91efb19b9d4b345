package photos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/store/storetest"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seedNote(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	uid := storetest.SeedUser(t, db, "n@example.com")
	pid := storetest.SeedPlace(t, db, uid, "P")
	res, err := db.Exec(`INSERT INTO notes (user_id, place_id, title) VALUES (?, ?, 'n')`, uid, pid)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestPlacePhotos_CreatePendingUpload(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	id, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/tmp/a.jpg"})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pid, got.OwnerID)
	assert.Equal(t, "/tmp/a.jpg", got.LocalPath)
	assert.Empty(t, got.PhotoURL)
	assert.False(t, got.Synched)
	assert.True(t, got.PendingUpload())
	assert.Equal(t, "place_photos", r.Table())
}

func TestPlacePhotos_OrphanRejected(t *testing.T) {
	r := NewPlacePhotos(storetest.DB(t))
	_, err := r.Create(context.Background(), &models.Photo{OwnerID: 404, LocalPath: "/x"})
	var se *common.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Op)
}

func TestNotePhotos_ListByOwnerDisplayOrder(t *testing.T) {
	db := storetest.DB(t)
	r := NewNotePhotos(db)
	ctx := context.Background()
	nid := seedNote(t, db)

	second, err := r.Create(ctx, &models.Photo{OwnerID: nid, LocalPath: "/b", DisplayOrder: 2})
	require.NoError(t, err)
	first, err := r.Create(ctx, &models.Photo{OwnerID: nid, LocalPath: "/a", DisplayOrder: 1})
	require.NoError(t, err)

	got, err := r.ListByOwner(ctx, nid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].ID)
	assert.Equal(t, second, got[1].ID)
	assert.Equal(t, "note_photos", r.Table())
}

func TestSetPhotoURL_DoesNotTouchSynched(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	id, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/tmp/a.jpg"})
	require.NoError(t, err)
	require.NoError(t, r.SetPhotoURL(ctx, id, 0, "https://cdn/x.jpg"))

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.jpg", got.PhotoURL)
	assert.False(t, got.Synched)
	assert.False(t, got.PendingUpload())

	require.NoError(t, r.MarkSynched(ctx, id, 0, ptr(int64(9))))
	got, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Synched)
	assert.Equal(t, int64(9), *got.RemoteID)
}

func TestUpdate_PartialResetsSynched(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	id, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/a", DisplayOrder: 3})
	require.NoError(t, err)
	require.NoError(t, r.MarkSynched(ctx, id, 0, nil))

	require.NoError(t, r.Update(ctx, id, models.PhotoPatch{DisplayOrder: ptr(5)}))
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, got.DisplayOrder)
	assert.Equal(t, "/a", got.LocalPath)
	assert.False(t, got.Synched)

	assert.ErrorIs(t, r.Update(ctx, id, models.PhotoPatch{}), common.ErrEmptyPatch)
	assert.ErrorIs(t, r.Update(ctx, 77, models.PhotoPatch{LocalPath: ptr("")}), common.ErrNotFound)
}

func TestEvictable_AndClearLocalPath(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	uploaded, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/up.jpg"})
	require.NoError(t, err)
	require.NoError(t, r.SetPhotoURL(ctx, uploaded, 0, "https://cdn/up.jpg"))
	require.NoError(t, r.MarkSynched(ctx, uploaded, 0, nil))

	pending, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/pending.jpg"})
	require.NoError(t, err)

	got, err := r.ListEvictable(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uploaded, got[0].ID)

	require.NoError(t, r.ClearLocalPath(ctx, uploaded))
	p, err := r.GetByID(ctx, uploaded)
	require.NoError(t, err)
	assert.True(t, p.CloudOnly())
	assert.True(t, p.Synched, "eviction is not a content edit")

	got, err = r.ListEvictable(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	unsynched, err := r.ListUnsynched(ctx)
	require.NoError(t, err)
	require.Len(t, unsynched, 1)
	assert.Equal(t, pending, unsynched[0].ID)
}

func TestListUnsynched_CreationOrder(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/b", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	a, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/a", CreatedAt: base})
	require.NoError(t, err)

	got, err := r.ListUnsynched(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{a, b}, []int64{got[0].ID, got[1].ID})
}

func TestDelete(t *testing.T) {
	db := storetest.DB(t)
	r := NewNotePhotos(db)
	ctx := context.Background()
	nid := seedNote(t, db)

	id, err := r.Create(ctx, &models.Photo{OwnerID: nid, LocalPath: "/n"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, id))

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, r.Delete(ctx, id), common.ErrNotFound)
}

func TestUpdate_NewLocalPathClearsURL(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	id, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/a.jpg"})
	require.NoError(t, err)
	require.NoError(t, r.SetPhotoURL(ctx, id, 0, "https://cdn/a.jpg"))
	require.NoError(t, r.MarkSynched(ctx, id, 0, nil))

	require.NoError(t, r.Update(ctx, id, models.PhotoPatch{LocalPath: ptr("/b.jpg")}))
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/b.jpg", got.LocalPath)
	assert.Empty(t, got.PhotoURL)
	assert.True(t, got.PendingUpload())
	assert.False(t, got.Synched)
	assert.Equal(t, int64(1), got.Version)

	require.NoError(t, r.Update(ctx, id, models.PhotoPatch{LocalPath: ptr("/c.jpg"), PhotoURL: ptr("https://cdn/c.jpg")}))
	got, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/c.jpg", got.PhotoURL, "an explicit URL is kept")
}

func TestSetPhotoURL_StaleVersion(t *testing.T) {
	db := storetest.DB(t)
	r := NewPlacePhotos(db)
	ctx := context.Background()
	pid := storetest.SeedPlace(t, db, 0, "Cafe")

	id, err := r.Create(ctx, &models.Photo{OwnerID: pid, LocalPath: "/a.jpg"})
	require.NoError(t, err)
	require.NoError(t, r.Update(ctx, id, models.PhotoPatch{LocalPath: ptr("/b.jpg")}))

	assert.ErrorIs(t, r.SetPhotoURL(ctx, id, 0, "https://cdn/a.jpg"), common.ErrRowChanged)
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.PhotoURL)

	assert.ErrorIs(t, r.SetPhotoURL(ctx, 404, 0, "https://cdn/x.jpg"), common.ErrNotFound)
}
