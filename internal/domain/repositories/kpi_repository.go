package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// KPIRepository stores monthly sales figures and aggregates them per organization
type KPIRepository interface {
	CreateProductSales(ctx context.Context, row *entities.ProductSales) error
	CreateRepPerformance(ctx context.Context, row *entities.RepPerformance) error

	// ProductTotals groups by product, most units sold first
	ProductTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.ProductTotals, error)
	// RepTotals groups by rep, highest revenue first
	RepTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.RepTotals, error)
	// MonthTotals returns one row per month, oldest first
	MonthTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.MonthTotals, error)
}
