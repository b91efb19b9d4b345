package notes

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Note) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	ListByPlace(ctx context.Context, placeID int64) ([]models.Note, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Note, error)
	Update(ctx context.Context, id int64, p models.NotePatch) error
	Delete(ctx context.Context, id int64) error

	ListUnsynched(ctx context.Context) ([]models.Note, error)
	MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error
}
