package places

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

// Repository describes CRUD and sync-state operations on the places table.
type Repository interface {
	Create(ctx context.Context, p *models.Place) (int64, error)

	// GetByID returns nil, nil when the place does not exist.
	GetByID(ctx context.Context, id int64) (*models.Place, error)

	// ListByUser returns the user's places, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.Place, error)

	// Update writes only the fields set in p and marks the row unsynched.
	Update(ctx context.Context, id int64, p models.PlacePatch) error

	Delete(ctx context.Context, id int64) error

	// ListUnsynched returns rows with synched = 0 in creation order.
	ListUnsynched(ctx context.Context) ([]models.Place, error)

	// MarkSynched sets synched = 1 if the row is still at version and records
	// the backend id when known. A row edited since it was read yields
	// common.ErrRowChanged.
	MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error
}
