package users

import (
	"context"

	"github.com/franckludovic/travelbuddy/internal/client/models"
)

// Repository describes CRUD operations on the users table.
type Repository interface {
	// Create inserts u and returns its local id. A duplicate email yields
	// common.ErrEmailTaken.
	Create(ctx context.Context, u *models.User) (int64, error)

	// GetByID returns nil, nil when no user has the id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update writes only the fields set in p.
	Update(ctx context.Context, id int64, p models.UserPatch) error

	// Delete removes the user; owned rows cascade or are detached per schema.
	Delete(ctx context.Context, id int64) error
}
