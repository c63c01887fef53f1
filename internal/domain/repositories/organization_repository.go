package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *entities.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Organization, error)
}

// SalesRepRepository covers sales reps and their user_auth credentials
type SalesRepRepository interface {
	Create(ctx context.Context, rep *entities.SalesRep) error
	// CreateWithAuth inserts the rep and its credentials atomically
	CreateWithAuth(ctx context.Context, rep *entities.SalesRep, auth *entities.UserAuth) error
	FindByID(ctx context.Context, id int64) (*entities.SalesRep, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.SalesRep, error)

	FindAuthByEmail(ctx context.Context, email string) (*entities.UserAuth, error)
	UpdateLastLogin(ctx context.Context, authID int64) error
}
