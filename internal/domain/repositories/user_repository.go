package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts the user and, when set, its profile in one transaction
	Create(ctx context.Context, user *entities.User) error

	// FindByID finds a user by ID, profile preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail finds a user by email, profile preloaded
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// UpdateLastSignIn stamps last_sign_in_at
	UpdateLastSignIn(ctx context.Context, userID uuid.UUID) error
}
