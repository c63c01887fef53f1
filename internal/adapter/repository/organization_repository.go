package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// OrganizationRepository implements organization persistence using GORM
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *entities.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Organization, error) {
	var org entities.Organization
	if err := r.db.WithContext(ctx).Where("organization_id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return &org, nil
}

// SalesRepRepository implements sales rep and user_auth persistence using GORM
type SalesRepRepository struct {
	db *gorm.DB
}

func NewSalesRepRepository(db *gorm.DB) *SalesRepRepository {
	return &SalesRepRepository{db: db}
}

func (r *SalesRepRepository) Create(ctx context.Context, rep *entities.SalesRep) error {
	if err := r.db.WithContext(ctx).Create(rep).Error; err != nil {
		return fmt.Errorf("failed to create sales rep: %w", err)
	}
	return nil
}

// CreateWithAuth inserts the rep, then its credentials pointing at the new id
func (r *SalesRepRepository) CreateWithAuth(ctx context.Context, rep *entities.SalesRep, auth *entities.UserAuth) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		auth.SalesRepID = &rep.SalesRepID
		return tx.Create(auth).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return entities.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create sales rep: %w", err)
	}
	return nil
}

func (r *SalesRepRepository) FindByID(ctx context.Context, id int64) (*entities.SalesRep, error) {
	var rep entities.SalesRep
	if err := r.db.WithContext(ctx).Where("sales_rep_id = ?", id).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrSalesRepNotFound
		}
		return nil, fmt.Errorf("failed to find sales rep: %w", err)
	}
	return &rep, nil
}

func (r *SalesRepRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.SalesRep, error) {
	var reps []*entities.SalesRep
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("sales_rep_id ASC").
		Find(&reps).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales reps: %w", err)
	}
	return reps, nil
}

// FindAuthByEmail returns active credentials only
func (r *SalesRepRepository) FindAuthByEmail(ctx context.Context, email string) (*entities.UserAuth, error) {
	var auth entities.UserAuth
	if err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&auth).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrSalesRepNotFound
		}
		return nil, fmt.Errorf("failed to find sales rep credentials: %w", err)
	}
	return &auth, nil
}

func (r *SalesRepRepository) UpdateLastLogin(ctx context.Context, authID int64) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.UserAuth{}).
		Where("id = ?", authID).
		Update("last_login_at", time.Now()).Error; err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
