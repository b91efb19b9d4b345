package photos

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

// Repository describes CRUD, upload and sync-state operations on a photo table.
type Repository interface {
	// Table is the backing table name.
	Table() string

	// Create inserts p for p.OwnerID with synched = 0.
	Create(ctx context.Context, p *models.Photo) (int64, error)

	// GetByID returns nil, nil when the photo does not exist.
	GetByID(ctx context.Context, id int64) (*models.Photo, error)

	// ListByOwner returns the owner's photos by display order.
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Photo, error)

	// Update writes only the fields set in p and marks the row unsynched.
	Update(ctx context.Context, id int64, p models.PhotoPatch) error

	Delete(ctx context.Context, id int64) error

	ListUnsynched(ctx context.Context) ([]models.Photo, error)
	MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error

	// SetPhotoURL records the uploaded asset's URL without changing synched.
	// It writes nothing and returns common.ErrRowChanged when the row is no
	// longer at version.
	SetPhotoURL(ctx context.Context, id, version int64, url string) error

	// ListEvictable returns synched rows that have a URL and still a local asset.
	ListEvictable(ctx context.Context) ([]models.Photo, error)

	// ClearLocalPath forgets the local asset of a row.
	ClearLocalPath(ctx context.Context, id int64) error
}
