package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/franckludovic/travelbuddy/internal/client/models"
	"github.com/franckludovic/travelbuddy/internal/client/objectstore"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/favorites"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/notes"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/photos"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/places"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/synclogs"
	"github.com/franckludovic/travelbuddy/internal/client/repositories/visits"
	"github.com/franckludovic/travelbuddy/internal/common"
	"github.com/franckludovic/travelbuddy/internal/dbx"
	"github.com/franckludovic/travelbuddy/internal/logging"
	"golang.org/x/sync/singleflight"
)

// SyncStatus is what a sync indicator shows.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusSuccess SyncStatus = "success"
	StatusError   SyncStatus = "error"
	StatusOffline SyncStatus = "offline"
)

// RowPusher sends a full local row to the backend's sync endpoint.
type RowPusher interface {
	SyncRow(ctx context.Context, table string, row any) (*int64, error)
}

// Uploader stores a media asset at a deterministic key and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
}

// MediaOpener reads staged assets.
type MediaOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// TableResult counts the outcome of one table within a pass. Changed rows
// were edited or deleted locally while being pushed; they stay pending.
type TableResult struct {
	Table   string
	Pending int
	Synced  int
	Failed  int
	Changed int
}

// PassResult is the outcome of one sync pass.
type PassResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Tables     []TableResult
}

func (r PassResult) Synced() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Synced
	}
	return n
}

func (r PassResult) Failed() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Failed
	}
	return n
}

// SyncEngine reconciles unsynched local rows with the backend.
//
// A pass walks models.SyncOrder. For each unsynched row it uploads a pending
// photo (recording the URL right away so a retry never uploads twice), pushes
// the row, and only then sets synched = 1 together with the returned remote
// id. Both writes are conditional on the row version that was read, so an
// edit made during the push is never marked synched. A failing row is logged
// and left unsynched; the pass continues.
//
// Concurrent callers share one pass. The pass is detached from any single
// caller's context and is cancelled only when every caller has gone.
type SyncEngine struct {
	db       dbx.DBTX
	pusher   RowPusher
	uploader Uploader
	media    MediaOpener
	logger   logging.Logger
	now      func() time.Time

	places      *places.SQLiteRepository
	placePhotos *photos.SQLiteRepository
	favorites   *favorites.SQLiteRepository
	notes       *notes.SQLiteRepository
	notePhotos  *photos.SQLiteRepository
	visits      *visits.SQLiteRepository
	logs        *synclogs.SQLiteRepository

	group   singleflight.Group
	running atomic.Bool

	flightMu sync.Mutex
	flight   *flight

	mu     sync.RWMutex
	status SyncStatus
	last   *PassResult
}

// NewSyncEngine builds an engine over db. uploader may be nil, in which case
// photos are pushed without a cloud URL.
func NewSyncEngine(db dbx.DBTX, pusher RowPusher, uploader Uploader, media MediaOpener, logger logging.Logger) *SyncEngine {
	return &SyncEngine{
		db:          db,
		pusher:      pusher,
		uploader:    uploader,
		media:       media,
		logger:      logger,
		now:         time.Now,
		places:      places.NewSQLiteRepository(db),
		placePhotos: photos.NewPlacePhotos(db),
		favorites:   favorites.NewSQLiteRepository(db),
		notes:       notes.NewSQLiteRepository(db),
		notePhotos:  photos.NewNotePhotos(db),
		visits:      visits.NewSQLiteRepository(db),
		logs:        synclogs.NewSQLiteRepository(db),
		status:      StatusIdle,
	}
}

// WithClock replaces the time source of pass timestamps.
func (e *SyncEngine) WithClock(now func() time.Time) *SyncEngine {
	e.now = now
	return e
}

// Status is the current indicator state.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// LastResult is the outcome of the most recent completed pass, if any.
func (e *SyncEngine) LastResult() (PassResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return PassResult{}, false
	}
	return *e.last, true
}

// Running reports whether a pass is in flight.
func (e *SyncEngine) Running() bool { return e.running.Load() }

// MarkOffline records that a pass was skipped for lack of connectivity.
func (e *SyncEngine) MarkOffline() {
	e.setStatus(StatusOffline)
}

func (e *SyncEngine) setStatus(s SyncStatus) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// flight is the lifetime of a shared pass: its context is cancelled when the
// last waiting caller leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (e *SyncEngine) join(ctx context.Context) *flight {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	if e.flight == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		e.flight = &flight{ctx: fctx, cancel: cancel}
	}
	e.flight.waiters++
	return e.flight
}

func (e *SyncEngine) leave(f *flight) {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if e.flight == f {
		e.flight = nil
	}
}

// Run performs a pass for userID, or joins the pass already in flight and
// returns its result. It fails only when a table scan itself fails or ctx
// ends first; in the latter case the pass goes on for the other callers.
func (e *SyncEngine) Run(ctx context.Context, userID int64) (PassResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return PassResult{}, err
		}
		f := e.join(ctx)
		ch := e.group.DoChan("pass", func() (any, error) {
			return e.pass(f.ctx, userID)
		})

		select {
		case r := <-ch:
			e.leave(f)
			// A pass abandoned by its callers was joined just before it
			// stopped; run a fresh one.
			if r.Shared && ctx.Err() == nil && errors.Is(r.Err, context.Canceled) {
				continue
			}
			res, _ := r.Val.(PassResult)
			return res, r.Err
		case <-ctx.Done():
			e.leave(f)
			return PassResult{}, ctx.Err()
		}
	}
}

// TryRun is Run without joining: it returns common.ErrSyncInProgress when a
// pass is already in flight.
func (e *SyncEngine) TryRun(ctx context.Context, userID int64) (PassResult, error) {
	if e.running.Load() {
		return PassResult{}, common.ErrSyncInProgress
	}
	return e.Run(ctx, userID)
}

type tableStep struct {
	table string
	run   func(ctx context.Context) (TableResult, error)
}

func (e *SyncEngine) steps() []tableStep {
	return []tableStep{
		{models.TablePlaces, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.Place]{
				table:   models.TablePlaces,
				list:    e.places.ListUnsynched,
				id:      func(p *models.Place) int64 { return p.ID },
				version: func(p *models.Place) int64 { return p.Version },
				payload: func(p *models.Place) any { return p },
				mark:    e.places.MarkSynched,
			})
		}},
		{models.TablePlacePhotos, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.Photo]{
				table:   models.TablePlacePhotos,
				list:    e.placePhotos.ListUnsynched,
				id:      func(p *models.Photo) int64 { return p.ID },
				version: func(p *models.Photo) int64 { return p.Version },
				prepare: e.uploadPhoto(e.placePhotos, objectstore.PlacePhotoKey),
				payload: func(p *models.Photo) any { return models.PlacePhoto{Photo: *p, PlaceID: p.OwnerID} },
				mark:    e.placePhotos.MarkSynched,
			})
		}},
		{models.TableFavorites, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.Favorite]{
				table:   models.TableFavorites,
				list:    e.favorites.ListUnsynched,
				id:      func(f *models.Favorite) int64 { return f.ID },
				version: func(f *models.Favorite) int64 { return f.Version },
				payload: func(f *models.Favorite) any { return f },
				mark:    e.favorites.MarkSynched,
			})
		}},
		{models.TableNotes, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.Note]{
				table:   models.TableNotes,
				list:    e.notes.ListUnsynched,
				id:      func(n *models.Note) int64 { return n.ID },
				version: func(n *models.Note) int64 { return n.Version },
				payload: func(n *models.Note) any { return n },
				mark:    e.notes.MarkSynched,
			})
		}},
		{models.TableNotePhotos, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.Photo]{
				table:   models.TableNotePhotos,
				list:    e.notePhotos.ListUnsynched,
				id:      func(p *models.Photo) int64 { return p.ID },
				version: func(p *models.Photo) int64 { return p.Version },
				prepare: e.uploadPhoto(e.notePhotos, objectstore.NotePhotoKey),
				payload: func(p *models.Photo) any { return models.NotePhoto{Photo: *p, NoteID: p.OwnerID} },
				mark:    e.notePhotos.MarkSynched,
			})
		}},
		{models.TablePlannedVisits, func(ctx context.Context) (TableResult, error) {
			return syncTable(ctx, e, tableSync[models.PlannedVisit]{
				table:   models.TablePlannedVisits,
				list:    e.visits.ListUnsynched,
				id:      func(v *models.PlannedVisit) int64 { return v.ID },
				version: func(v *models.PlannedVisit) int64 { return v.Version },
				payload: func(v *models.PlannedVisit) any { return v },
				mark:    e.visits.MarkSynched,
			})
		}},
	}
}

func (e *SyncEngine) pass(ctx context.Context, userID int64) (PassResult, error) {
	e.running.Store(true)
	defer e.running.Store(false)
	e.setStatus(StatusSyncing)

	res := PassResult{StartedAt: e.now()}
	e.logger.Info(ctx, "sync pass started")

	var passErr error
	for _, step := range e.steps() {
		tr, err := step.run(ctx)
		res.Tables = append(res.Tables, tr)
		if err != nil {
			passErr = fmt.Errorf("sync %s: %w", step.table, err)
			break
		}
	}
	res.FinishedAt = e.now()

	status := StatusSuccess
	if passErr != nil || res.Failed() > 0 {
		status = StatusError
	}

	e.mu.Lock()
	e.status = status
	e.last = &res
	e.mu.Unlock()

	e.writeLog(ctx, userID, res, passErr)

	if passErr != nil {
		e.logger.Error(ctx, "sync pass aborted", "error", passErr)
		return res, passErr
	}
	e.logger.Info(ctx, "sync pass finished", "synced", res.Synced(), "failed", res.Failed(),
		"duration", res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

func (e *SyncEngine) writeLog(ctx context.Context, userID int64, res PassResult, passErr error) {
	if userID == 0 {
		return
	}
	entry := &models.SyncLog{
		UserID:       userID,
		LastSyncTime: res.FinishedAt,
		Status:       models.SyncLogSuccess,
		Message:      fmt.Sprintf("synced %d, failed %d", res.Synced(), res.Failed()),
	}
	switch {
	case passErr != nil:
		entry.Status = models.SyncLogError
		entry.Message = passErr.Error()
	case res.Failed() > 0:
		entry.Status = models.SyncLogPartial
	}
	if _, err := e.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn(ctx, "sync log not written", "error", err)
	}
}

// uploadPhoto uploads a pending asset and records its URL before the row is
// pushed. Rows that already have a URL are left alone.
func (e *SyncEngine) uploadPhoto(repo *photos.SQLiteRepository, key func(ownerID, photoID int64, ext string) string) func(context.Context, *models.Photo) error {
	return func(ctx context.Context, p *models.Photo) error {
		if e.uploader == nil || !p.PendingUpload() {
			return nil
		}
		f, err := e.media.Open(p.LocalPath)
		if err != nil {
			return err
		}
		defer f.Close()

		url, err := e.uploader.Upload(ctx, key(p.OwnerID, p.ID, filepath.Ext(p.LocalPath)), f)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		if err := repo.SetPhotoURL(ctx, p.ID, p.Version, url); err != nil {
			return err
		}
		p.PhotoURL = url
		return nil
	}
}

type tableSync[T any] struct {
	table   string
	list    func(ctx context.Context) ([]T, error)
	id      func(*T) int64
	version func(*T) int64
	prepare func(ctx context.Context, row *T) error
	payload func(*T) any
	mark    func(ctx context.Context, id, version int64, remoteID *int64) error
}

func syncTable[T any](ctx context.Context, e *SyncEngine, t tableSync[T]) (TableResult, error) {
	res := TableResult{Table: t.table}

	rows, err := t.list(ctx)
	if err != nil {
		return res, err
	}
	res.Pending = len(rows)

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row := &rows[i]
		err := syncRow(ctx, e.pusher, t, row)
		if errors.Is(err, common.ErrRowChanged) || errors.Is(err, common.ErrNotFound) {
			res.Changed++
			e.logger.Debug(ctx, "row changed during sync", "table", t.table, "id", t.id(row))
			continue
		}
		if err != nil {
			res.Failed++
			e.logger.Warn(ctx, "row sync failed", "table", t.table, "id", t.id(row), "error", err)
			continue
		}
		res.Synced++
	}
	if res.Pending > 0 {
		e.logger.Debug(ctx, "table synced", "table", t.table, "synced", res.Synced, "failed", res.Failed)
	}
	return res, nil
}

func syncRow[T any](ctx context.Context, pusher RowPusher, t tableSync[T], row *T) error {
	if t.prepare != nil {
		if err := t.prepare(ctx, row); err != nil {
			return err
		}
	}
	remoteID, err := pusher.SyncRow(ctx, t.table, t.payload(row))
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return t.mark(ctx, t.id(row), t.version(row), remoteID)
}
