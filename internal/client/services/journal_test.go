package services

import (
	"context"
	"testing"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/photos"
	"github.com/franckludovic/travelbuddy/internal/client/store/storetest"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_CreatePlaceStagesCaptures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	taken := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	p := &models.Place{Title: "Harbour"}
	err := h.journal.CreatePlace(ctx, p, []models.Capture{
		{URI: "file://" + h.capture(t, "one.jpg"), Latitude: 4.05, Longitude: 9.7, Timestamp: taken},
		{URI: h.capture(t, "two.png")},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.05, p.Latitude)
	assert.Equal(t, 9.7, p.Longitude)
	assert.False(t, p.Synched)

	pp, err := h.journal.PlacePhotos(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, pp, 2)
	assert.Equal(t, 0, pp[0].DisplayOrder)
	assert.Equal(t, 1, pp[1].DisplayOrder)
	assert.True(t, pp[0].CreatedAt.Equal(taken))
	assert.Contains(t, pp[0].LocalPath, h.stager.Dir(models.TablePlaces, p.ID))
	assert.Contains(t, pp[1].LocalPath, ".png")
	for _, ph := range pp {
		assert.True(t, h.stager.Exists(ph.LocalPath))
		assert.True(t, ph.PendingUpload())
	}
	assert.Equal(t, 2, h.stagedFiles())
}

func TestJournal_CreatePlaceRollsBackOnStagingFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := &models.Place{Title: "Broken", Latitude: 1, Longitude: 1}
	err := h.journal.CreatePlace(ctx, p, []models.Capture{
		{URI: h.capture(t, "ok.jpg")},
		{URI: "/camera/missing.jpg"},
	})
	require.Error(t, err)
	var me *common.MediaStagingError
	assert.ErrorAs(t, err, &me)

	assert.Zero(t, p.ID)
	assert.Equal(t, 0, h.count(t, models.TablePlaces))
	assert.Equal(t, 0, h.count(t, models.TablePlacePhotos))
	assert.Equal(t, 0, h.stagedFiles())
}

func TestJournal_CreatePlaceWithoutCaptures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := &models.Place{Title: "Offline", Latitude: 1, Longitude: 2}
	require.NoError(t, h.journal.CreatePlace(ctx, p, nil))

	got, err := h.journal.Place(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Offline", got.Title)
	assert.False(t, got.Synched)
}

func TestJournal_AddNoteUsesCaptureLocation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	db := h.st.DB()
	uid := storetest.SeedUser(t, db, "n@example.com")
	pid := storetest.SeedPlace(t, db, uid, "P")

	n := &models.Note{UserID: uid, PlaceID: pid, Content: "sunset"}
	require.NoError(t, h.journal.AddNote(ctx, n, []models.Capture{{URI: h.capture(t, "n.jpg"), Latitude: 3, Longitude: 4}}))
	require.NotNil(t, n.Latitude)
	assert.Equal(t, 3.0, *n.Latitude)
	assert.Equal(t, 4.0, *n.Longitude)

	np, err := photos.NewNotePhotos(db).ListByOwner(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, np, 1)
	assert.Contains(t, np[0].LocalPath, h.stager.Dir(models.TableNotes, n.ID))

	ns, err := h.journal.Notes(ctx, pid)
	require.NoError(t, err)
	assert.Len(t, ns, 1)
}

func TestJournal_AddPlacePhotoAppends(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := &models.Place{Title: "P"}
	require.NoError(t, h.journal.CreatePlace(ctx, p, []models.Capture{{URI: h.capture(t, "a.jpg")}}))

	ph, err := h.journal.AddPlacePhoto(ctx, p.ID, models.Capture{URI: h.capture(t, "b.jpg")})
	require.NoError(t, err)
	assert.Equal(t, 1, ph.DisplayOrder)
	assert.Equal(t, p.ID, ph.OwnerID)

	_, err = h.journal.AddPlacePhoto(ctx, p.ID, models.Capture{URI: "/camera/none.jpg"})
	require.Error(t, err)

	pp, err := h.journal.PlacePhotos(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, pp, 2)
}

func TestJournal_DeletePlacePhotoRemovesFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := &models.Place{Title: "P"}
	require.NoError(t, h.journal.CreatePlace(ctx, p, []models.Capture{{URI: h.capture(t, "a.jpg")}}))
	pp, err := h.journal.PlacePhotos(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, h.journal.DeletePlacePhoto(ctx, pp[0].ID))
	assert.False(t, h.stager.Exists(pp[0].LocalPath))
	assert.Equal(t, 0, h.count(t, models.TablePlacePhotos))

	err = h.journal.DeletePlacePhoto(ctx, pp[0].ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJournal_DeletePlaceCascadesFiles(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	uid := storetest.SeedUser(t, h.st.DB(), "d@example.com")

	p := &models.Place{Title: "P", UserID: &uid}
	require.NoError(t, h.journal.CreatePlace(ctx, p, []models.Capture{{URI: h.capture(t, "a.jpg")}}))
	n := &models.Note{UserID: uid, PlaceID: p.ID, Content: "x"}
	require.NoError(t, h.journal.AddNote(ctx, n, []models.Capture{{URI: h.capture(t, "b.jpg")}}))
	require.Equal(t, 2, h.stagedFiles())

	require.NoError(t, h.journal.DeletePlace(ctx, p.ID))
	assert.Equal(t, 0, h.stagedFiles())
	for _, table := range []string{models.TablePlaces, models.TablePlacePhotos, models.TableNotes, models.TableNotePhotos} {
		assert.Equal(t, 0, h.count(t, table), table)
	}
}

func TestJournal_EvictSynced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	p := &models.Place{Title: "P"}
	require.NoError(t, h.journal.CreatePlace(ctx, p, []models.Capture{
		{URI: h.capture(t, "a.jpg")},
		{URI: h.capture(t, "b.jpg")},
	}))

	_, err := h.engine.Run(ctx, 0)
	require.NoError(t, err)

	n, err := h.journal.EvictSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, h.stagedFiles())

	pp, err := h.journal.PlacePhotos(ctx, p.ID)
	require.NoError(t, err)
	for _, ph := range pp {
		assert.True(t, ph.CloudOnly())
		assert.True(t, ph.Synched)
	}

	n, err = h.journal.EvictSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestJournal_FavoritesAndVisits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	db := h.st.DB()
	uid := storetest.SeedUser(t, db, "f@example.com")
	pid := storetest.SeedPlace(t, db, uid, "P")

	on, err := h.journal.ToggleFavorite(ctx, uid, pid)
	require.NoError(t, err)
	assert.True(t, on)
	favs, err := h.journal.Favorites(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	on, err = h.journal.ToggleFavorite(ctx, uid, pid)
	require.NoError(t, err)
	assert.False(t, on)
	favs, err = h.journal.Favorites(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, favs)

	v, err := h.journal.PlanVisit(ctx, uid, pid, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, h.journal.CompleteVisit(ctx, v.ID, true))

	vs, err := h.journal.Visits(ctx, uid)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.True(t, vs[0].IsCompleted)
	assert.False(t, vs[0].Synched)
}
