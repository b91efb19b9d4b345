package services

import (
	"context"
	"fmt"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/favorites"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/notes"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/photos"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/places"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/visits"
	"github.com/franckludovic/travelbuddy/internal/client/store"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
	"github.com/franckludovic/travelbuddy/internal/logging"
)

// MediaStager copies captures into the app's staging area.
type MediaStager interface {
	Stage(ctx context.Context, uri, table string, recordID int64, imageType string) (string, error)
	Delete(path string) (existed bool, err error)
}

// Journal implements the user-facing capture flows on top of the local store.
// Everything here works offline; rows it writes are picked up by the next
// sync pass.
type Journal struct {
	store  *store.Store
	media  MediaStager
	logger logging.Logger
	now    func() time.Time
}

func NewJournal(st *store.Store, media MediaStager, logger logging.Logger) *Journal {
	return &Journal{store: st, media: media, logger: logger, now: time.Now}
}

// WithClock replaces the time source of created rows.
func (j *Journal) WithClock(now func() time.Time) *Journal {
	j.now = now
	return j
}

func (j *Journal) places(db dbx.DBTX) *places.SQLiteRepository {
	return places.NewSQLiteRepository(db).WithClock(j.now)
}

func (j *Journal) placePhotos(db dbx.DBTX) *photos.SQLiteRepository {
	return photos.NewPlacePhotos(db).WithClock(j.now)
}

func (j *Journal) notes(db dbx.DBTX) *notes.SQLiteRepository {
	return notes.NewSQLiteRepository(db).WithClock(j.now)
}

func (j *Journal) notePhotos(db dbx.DBTX) *photos.SQLiteRepository {
	return photos.NewNotePhotos(db).WithClock(j.now)
}

// CreatePlace inserts p, stages every capture into the place's directory and
// records one photo row per capture, all in one transaction. When p has no
// coordinates the first capture's are used. Staged files are removed again
// if anything fails.
func (j *Journal) CreatePlace(ctx context.Context, p *models.Place, captures []models.Capture) error {
	if p.Latitude == 0 && p.Longitude == 0 && len(captures) > 0 {
		p.Latitude, p.Longitude = captures[0].Latitude, captures[0].Longitude
	}

	var staged []string
	err := j.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := j.places(tx).Create(ctx, p); err != nil {
			return err
		}
		var err error
		staged, err = j.stageAll(ctx, j.placePhotos(tx), models.TablePlaces, p.ID, captures)
		return err
	})
	if err != nil {
		j.discard(ctx, staged)
		p.ID = 0
		return fmt.Errorf("create place: %w", err)
	}
	j.logger.Debug(ctx, "place created", "place_id", p.ID, "photos", len(staged))
	return nil
}

// AddNote is CreatePlace for notes.
func (j *Journal) AddNote(ctx context.Context, n *models.Note, captures []models.Capture) error {
	if n.Latitude == nil && len(captures) > 0 {
		lat, lon := captures[0].Latitude, captures[0].Longitude
		n.Latitude, n.Longitude = &lat, &lon
	}

	var staged []string
	err := j.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := j.notes(tx).Create(ctx, n); err != nil {
			return err
		}
		var err error
		staged, err = j.stageAll(ctx, j.notePhotos(tx), models.TableNotes, n.ID, captures)
		return err
	})
	if err != nil {
		j.discard(ctx, staged)
		n.ID = 0
		return fmt.Errorf("add note: %w", err)
	}
	return nil
}

// AddPlacePhoto stages one more capture for an existing place.
func (j *Journal) AddPlacePhoto(ctx context.Context, placeID int64, c models.Capture) (*models.Photo, error) {
	return j.addPhoto(ctx, j.placePhotos, models.TablePlaces, placeID, c)
}

// AddNotePhoto stages one more capture for an existing note.
func (j *Journal) AddNotePhoto(ctx context.Context, noteID int64, c models.Capture) (*models.Photo, error) {
	return j.addPhoto(ctx, j.notePhotos, models.TableNotes, noteID, c)
}

func (j *Journal) addPhoto(ctx context.Context, repo func(dbx.DBTX) *photos.SQLiteRepository, table string, ownerID int64, c models.Capture) (*models.Photo, error) {
	var photo *models.Photo
	var staged []string
	err := j.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		r := repo(tx)
		existing, err := r.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		path, err := j.media.Stage(ctx, c.URI, table, ownerID, "image")
		if err != nil {
			return err
		}
		staged = append(staged, path)
		photo = &models.Photo{OwnerID: ownerID, LocalPath: path, DisplayOrder: len(existing)}
		_, err = r.Create(ctx, photo)
		return err
	})
	if err != nil {
		j.discard(ctx, staged)
		return nil, err
	}
	return photo, nil
}

func (j *Journal) stageAll(ctx context.Context, repo *photos.SQLiteRepository, table string, ownerID int64, captures []models.Capture) ([]string, error) {
	staged := make([]string, 0, len(captures))
	for i, c := range captures {
		kind := "image"
		if i == 0 {
			kind = "main"
		}
		path, err := j.media.Stage(ctx, c.URI, table, ownerID, kind)
		if err != nil {
			return staged, err
		}
		staged = append(staged, path)

		photo := &models.Photo{OwnerID: ownerID, LocalPath: path, DisplayOrder: i}
		if !c.Timestamp.IsZero() {
			photo.CreatedAt = c.Timestamp
		}
		if _, err := repo.Create(ctx, photo); err != nil {
			return staged, err
		}
	}
	return staged, nil
}

func (j *Journal) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if _, err := j.media.Delete(p); err != nil {
			j.logger.Warn(ctx, "staged file not removed", "path", p, "error", err)
		}
	}
}

// DeletePlacePhoto removes the row, then its staged file. A file that cannot
// be removed is logged and left behind.
func (j *Journal) DeletePlacePhoto(ctx context.Context, photoID int64) error {
	return j.deletePhoto(ctx, j.placePhotos(j.store.DB()), photoID)
}

func (j *Journal) DeleteNotePhoto(ctx context.Context, photoID int64) error {
	return j.deletePhoto(ctx, j.notePhotos(j.store.DB()), photoID)
}

func (j *Journal) deletePhoto(ctx context.Context, repo *photos.SQLiteRepository, photoID int64) error {
	p, err := repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if p == nil {
		return &common.NotFoundError{Table: repo.Table(), ID: photoID}
	}
	if err := repo.Delete(ctx, photoID); err != nil {
		return err
	}
	j.discard(ctx, []string{p.LocalPath})
	return nil
}

// DeletePlace removes the place with its photos, notes and note photos, then
// the staged files of every removed photo.
func (j *Journal) DeletePlace(ctx context.Context, placeID int64) error {
	var paths []string
	err := j.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		pp, err := j.placePhotos(tx).ListByOwner(ctx, placeID)
		if err != nil {
			return err
		}
		for _, p := range pp {
			paths = append(paths, p.LocalPath)
		}
		ns, err := j.notes(tx).ListByPlace(ctx, placeID)
		if err != nil {
			return err
		}
		for _, n := range ns {
			np, err := j.notePhotos(tx).ListByOwner(ctx, n.ID)
			if err != nil {
				return err
			}
			for _, p := range np {
				paths = append(paths, p.LocalPath)
			}
		}
		return j.places(tx).Delete(ctx, placeID)
	})
	if err != nil {
		return err
	}
	j.discard(ctx, paths)
	return nil
}

// EvictSynced deletes the staged copy of every photo that is already in the
// cloud and clears its local_path. It returns the number of evicted files.
func (j *Journal) EvictSynced(ctx context.Context) (int, error) {
	evicted := 0
	for _, repo := range []*photos.SQLiteRepository{j.placePhotos(j.store.DB()), j.notePhotos(j.store.DB())} {
		rows, err := repo.ListEvictable(ctx)
		if err != nil {
			return evicted, err
		}
		for _, p := range rows {
			if _, err := j.media.Delete(p.LocalPath); err != nil {
				j.logger.Warn(ctx, "evict failed", "table", repo.Table(), "id", p.ID, "error", err)
				continue
			}
			if err := repo.ClearLocalPath(ctx, p.ID); err != nil {
				return evicted, err
			}
			evicted++
		}
	}
	return evicted, nil
}

func (j *Journal) Place(ctx context.Context, id int64) (*models.Place, error) {
	return j.places(j.store.DB()).GetByID(ctx, id)
}

func (j *Journal) Places(ctx context.Context, userID int64) ([]models.Place, error) {
	return j.places(j.store.DB()).ListByUser(ctx, userID)
}

func (j *Journal) UpdatePlace(ctx context.Context, id int64, p models.PlacePatch) error {
	return j.places(j.store.DB()).Update(ctx, id, p)
}

func (j *Journal) PlacePhotos(ctx context.Context, placeID int64) ([]models.Photo, error) {
	return j.placePhotos(j.store.DB()).ListByOwner(ctx, placeID)
}

func (j *Journal) Notes(ctx context.Context, placeID int64) ([]models.Note, error) {
	return j.notes(j.store.DB()).ListByPlace(ctx, placeID)
}

// ToggleFavorite adds the favorite when absent and removes it otherwise. It
// reports the resulting state.
func (j *Journal) ToggleFavorite(ctx context.Context, userID, placeID int64) (bool, error) {
	repo := favorites.NewSQLiteRepository(j.store.DB()).WithClock(j.now)
	on, err := repo.IsFavorite(ctx, userID, placeID)
	if err != nil {
		return false, err
	}
	if on {
		return false, repo.Remove(ctx, userID, placeID)
	}
	_, err = repo.Add(ctx, userID, placeID)
	return err == nil, err
}

func (j *Journal) Favorites(ctx context.Context, userID int64) ([]models.Favorite, error) {
	return favorites.NewSQLiteRepository(j.store.DB()).ListByUser(ctx, userID)
}

// PlanVisit schedules a visit; a zero date leaves it unscheduled.
func (j *Journal) PlanVisit(ctx context.Context, userID, placeID int64, date time.Time) (*models.PlannedVisit, error) {
	v := &models.PlannedVisit{UserID: userID, PlaceID: placeID, PlannedDate: date}
	if _, err := visits.NewSQLiteRepository(j.store.DB()).WithClock(j.now).Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (j *Journal) CompleteVisit(ctx context.Context, id int64, done bool) error {
	return visits.NewSQLiteRepository(j.store.DB()).WithClock(j.now).SetCompleted(ctx, id, done)
}

func (j *Journal) Visits(ctx context.Context, userID int64) ([]models.PlannedVisit, error) {
	return visits.NewSQLiteRepository(j.store.DB()).ListByUser(ctx, userID)
}
