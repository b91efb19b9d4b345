package favorites

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

type Repository interface {
	// Add favorites placeID for userID and returns the row id.
	Add(ctx context.Context, userID, placeID int64) (int64, error)

	// Remove deletes the pair; NotFoundError when it was not a favorite.
	Remove(ctx context.Context, userID, placeID int64) error

	GetByID(ctx context.Context, id int64) (*models.Favorite, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error)
	IsFavorite(ctx context.Context, userID, placeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error

	ListUnsynched(ctx context.Context) ([]models.Favorite, error)
	MarkSynched(ctx context.Context, id, version int64, remoteID *int64) error
}
