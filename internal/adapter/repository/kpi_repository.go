package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// KPIRepository implements KPI persistence and aggregation using GORM
type KPIRepository struct {
	db *gorm.DB
}

func NewKPIRepository(db *gorm.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

func (r *KPIRepository) CreateProductSales(ctx context.Context, row *entities.ProductSales) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return entities.ErrKPIRecordExists
		}
		return fmt.Errorf("failed to create product sales: %w", err)
	}
	return nil
}

func (r *KPIRepository) CreateRepPerformance(ctx context.Context, row *entities.RepPerformance) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return entities.ErrKPIRecordExists
		}
		return fmt.Errorf("failed to create rep performance: %w", err)
	}
	return nil
}

func (r *KPIRepository) ProductTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.ProductTotals, error) {
	var rows []entities.ProductTotals
	err := r.scoped(ctx, &entities.ProductSales{}, orgID, rng).
		Select(`product_name,
			SUM(units_sold) AS units_sold,
			SUM(revenue) AS revenue,
			AVG(churn_rate) AS avg_churn_rate,
			AVG(rating) AS avg_rating,
			SUM(feedback_count) AS feedback_count`).
		Group("product_name").
		Order("units_sold DESC, product_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product sales: %w", err)
	}
	return rows, nil
}

func (r *KPIRepository) RepTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.RepTotals, error) {
	var rows []entities.RepTotals
	err := r.scoped(ctx, &entities.RepPerformance{}, orgID, rng).
		Select(`rep_name,
			SUM(revenue) AS revenue,
			AVG(conversion_rate) AS conversion_rate,
			SUM(total_calls) AS calls_made,
			SUM(successful_calls) AS deals_closed,
			AVG(customer_satisfaction) AS avg_satisfaction`).
		Group("rep_name").
		Order("revenue DESC, rep_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rep performance: %w", err)
	}
	return rows, nil
}

// MonthTotals merges the monthly product and rep sums on month
func (r *KPIRepository) MonthTotals(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]entities.MonthTotals, error) {
	var products, reps []entities.MonthTotals
	err := r.scoped(ctx, &entities.ProductSales{}, orgID, rng).
		Select("month, SUM(revenue) AS product_revenue, COALESCE(AVG(churn_rate), 0) AS avg_churn_rate").
		Group("month").
		Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly product revenue: %w", err)
	}
	err = r.scoped(ctx, &entities.RepPerformance{}, orgID, rng).
		Select("month, SUM(revenue) AS rep_revenue").
		Group("month").
		Scan(&reps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly rep revenue: %w", err)
	}
	return mergeMonths(products, reps), nil
}

func (r *KPIRepository) scoped(ctx context.Context, model interface{}, orgID uuid.UUID, rng entities.MonthRange) *gorm.DB {
	q := r.db.WithContext(ctx).Model(model).Where("organization_id = ?", orgID)
	if rng.From != nil {
		q = q.Where("month >= ?", *rng.From)
	}
	if rng.To != nil {
		q = q.Where("month <= ?", *rng.To)
	}
	return q
}

func mergeMonths(products, reps []entities.MonthTotals) []entities.MonthTotals {
	byMonth := make(map[string]*entities.MonthTotals, len(products)+len(reps))
	for i := range products {
		m := products[i]
		byMonth[m.Month.Format("2006-01")] = &m
	}
	for _, rep := range reps {
		key := rep.Month.Format("2006-01")
		if m, ok := byMonth[key]; ok {
			m.RepRevenue = rep.RepRevenue
			continue
		}
		m := rep
		byMonth[key] = &m
	}

	out := make([]entities.MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}
