package synclogs

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, l *models.SyncLog) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SyncLog, error)

	// ListByUser returns the user's log, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.SyncLog, error)

	// Last returns the most recent entry or nil, nil.
	Last(ctx context.Context, userID int64) (*models.SyncLog, error)

	Update(ctx context.Context, id int64, p models.SyncLogPatch) error
	Delete(ctx context.Context, id int64) error
}
