// Package models defines the record types persisted by the local store and
// pushed to the backend by the sync engine. Each table has its own explicit
// type; patch types carry pointer fields so that only the fields a caller
// sets are written.
package models

import "time"

// Table names. The sync engine processes the syncable ones in SyncOrder.
const (
	TableUsers         = "users"
	TablePlaces        = "places"
	TablePlacePhotos   = "place_photos"
	TableFavorites     = "favorites"
	TableNotes         = "notes"
	TableNotePhotos    = "note_photos"
	TablePlannedVisits = "planned_visits"
	TableSyncLogs      = "sync_logs"
)

// SyncOrder is the fixed table sequence of a sync pass.
var SyncOrder = []string{
	TablePlaces,
	TablePlacePhotos,
	TableFavorites,
	TableNotes,
	TableNotePhotos,
	TablePlannedVisits,
}

// User is a local account. PasswordHash is only set for offline signups.
type User struct {
	ID           int64     `json:"user_id"`
	FirebaseUID  string    `json:"firebase_uid,omitempty"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

type UserPatch struct {
	FirebaseUID  *string
	FullName     *string
	Email        *string
	Role         *string
	PasswordHash *string
}

// Place is a captured location. UserID becomes nil when the owner is deleted.
type Place struct {
	ID          int64     `json:"place_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	UserID      *int64    `json:"user_id"`
	Synched     bool      `json:"synched"`
	RemoteID    *int64    `json:"remote_id,omitempty"`
	Version     int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type PlacePatch struct {
	Title       *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	UserID      *int64
}

// Photo is a row of place_photos or note_photos. OwnerID is place_id or
// note_id respectively.
//
// Version counts local edits of a row; the sync engine only marks a row
// synched at the version it pushed.
//
// LocalPath set and PhotoURL empty means the asset still has to be uploaded.
// PhotoURL set and LocalPath empty means the asset lives only in the cloud.
type Photo struct {
	ID           int64     `json:"photo_id"`
	OwnerID      int64     `json:"-"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	LocalPath    string    `json:"local_path,omitempty"`
	DisplayOrder int       `json:"display_order"`
	Synched      bool      `json:"synched"`
	RemoteID     *int64    `json:"remote_id,omitempty"`
	Version      int64     `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// PendingUpload reports whether the staged asset has not reached the cloud yet.
func (p *Photo) PendingUpload() bool {
	return p.LocalPath != "" && p.PhotoURL == ""
}

// CloudOnly reports whether the local asset has been evicted.
func (p *Photo) CloudOnly() bool {
	return p.PhotoURL != "" && p.LocalPath == ""
}

// PlacePhoto is the wire shape of a place_photos row.
type PlacePhoto struct {
	Photo
	PlaceID int64 `json:"place_id"`
}

// NotePhoto is the wire shape of a note_photos row.
type NotePhoto struct {
	Photo
	NoteID int64 `json:"note_id"`
}

type PhotoPatch struct {
	PhotoURL     *string
	LocalPath    *string
	DisplayOrder *int
}

// Favorite joins a user and a place.
type Favorite struct {
	ID        int64     `json:"fav_id"`
	UserID    int64     `json:"user_id"`
	PlaceID   int64     `json:"place_id"`
	Synched   bool      `json:"synched"`
	RemoteID  *int64    `json:"remote_id,omitempty"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Note is a journal entry attached to a place.
type Note struct {
	ID        int64     `json:"note_id"`
	UserID    int64     `json:"user_id"`
	PlaceID   int64     `json:"place_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Synched   bool      `json:"synched"`
	RemoteID  *int64    `json:"remote_id,omitempty"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

type NotePatch struct {
	Title     *string
	Content   *string
	Latitude  *float64
	Longitude *float64
}

// PlannedVisit is a visit the user intends to make.
type PlannedVisit struct {
	ID          int64     `json:"planned_visit_id"`
	UserID      int64     `json:"user_id"`
	PlaceID     int64     `json:"place_id"`
	PlannedDate time.Time `json:"planned_date,omitzero"`
	IsCompleted bool      `json:"is_completed"`
	Synched     bool      `json:"synched"`
	RemoteID    *int64    `json:"remote_id,omitempty"`
	Version     int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type PlannedVisitPatch struct {
	PlannedDate *time.Time
	IsCompleted *bool
}

// Sync log statuses.
const (
	SyncLogSuccess = "success"
	SyncLogPartial = "partial"
	SyncLogError   = "error"
)

// SyncLog records one sync pass.
type SyncLog struct {
	ID           int64
	UserID       int64
	LastSyncTime time.Time
	Status       string
	Message      string
	CreatedAt    time.Time
}

type SyncLogPatch struct {
	LastSyncTime *time.Time
	Status       *string
	Message      *string
}
