package visits

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.PlannedVisit) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PlannedVisit, error)

	// ListByUser orders by planned date, undated visits last.
	ListByUser(ctx context.Context, userID int64) ([]models.PlannedVisit, error)
	ListByPlace(ctx context.Context, placeID int64) ([]models.PlannedVisit, error)

	Update(ctx context.Context, id int64, p models.PlannedVisitPatch) error

	// SetCompleted toggles is_completed; it is a local edit like Update.
	SetCompleted(ctx context.Context, id int64, completed bool) error

	Delete(ctx context.Context, id int64) error

	ListUnsynched(ctx context.Context) ([]models.PlannedVisit, error)
	MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error
}
