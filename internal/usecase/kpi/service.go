package kpi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

// Service records monthly sales figures and builds the KPI dashboard
type Service struct {
	kpis   repositories.KPIRepository
	reps   repositories.SalesRepRepository
	logger *zap.Logger
}

func NewService(kpis repositories.KPIRepository, reps repositories.SalesRepRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{kpis: kpis, reps: reps, logger: logger}
}

// ParseMonth accepts YYYY-MM or YYYY-MM-DD and returns the first day of that month
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{monthLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: month %q must be YYYY-MM", usecaseErrors.ErrInvalidInput, s)
}

// ParseRange builds a month range from optional from/to strings
func ParseRange(from, to string) (entities.MonthRange, error) {
	var rng entities.MonthRange
	if from != "" {
		t, err := ParseMonth(from)
		if err != nil {
			return rng, err
		}
		rng.From = &t
	}
	if to != "" {
		t, err := ParseMonth(to)
		if err != nil {
			return rng, err
		}
		rng.To = &t
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, fmt.Errorf("%w: from is after to", usecaseErrors.ErrInvalidInput)
	}
	return rng, nil
}

// Dashboard runs the three aggregates concurrently and derives the KPIs
func (s *Service) Dashboard(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) (*Dashboard, error) {
	var (
		products []entities.ProductTotals
		reps     []entities.RepTotals
		months   []entities.MonthTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.kpis.ProductTotals(gctx, orgID, rng)
		return err
	})
	g.Go(func() (err error) {
		reps, err = s.kpis.RepTotals(gctx, orgID, rng)
		return err
	})
	g.Go(func() (err error) {
		months, err = s.kpis.MonthTotals(gctx, orgID, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := BuildDashboard(products, reps, months)
	s.logger.Debug("📊 KPI dashboard built",
		zap.String("organization_id", orgID.String()),
		zap.Int("products", len(d.Products)),
		zap.Int("reps", len(d.Leaderboard)),
	)
	return d, nil
}

// ProductSalesInput is one product's figures for one month
type ProductSalesInput struct {
	ProductName   string
	Month         string
	UnitsSold     int64
	Revenue       float64
	ChurnRate     *float64
	Rating        *float64
	FeedbackCount int64
}

func (s *Service) RecordProductSales(ctx context.Context, orgID uuid.UUID, in ProductSalesInput) (*entities.ProductSales, error) {
	month, err := ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, fmt.Errorf("%w: product_name is required", usecaseErrors.ErrInvalidInput)
	}
	if in.UnitsSold < 0 || in.Revenue < 0 || in.FeedbackCount < 0 {
		return nil, fmt.Errorf("%w: sales figures cannot be negative", usecaseErrors.ErrInvalidInput)
	}

	row := &entities.ProductSales{
		OrganizationID: orgID,
		ProductName:    name,
		Month:          month,
		UnitsSold:      in.UnitsSold,
		Revenue:        in.Revenue,
		ChurnRate:      in.ChurnRate,
		Rating:         in.Rating,
		FeedbackCount:  in.FeedbackCount,
	}
	if err := s.kpis.CreateProductSales(ctx, row); err != nil {
		return nil, wrapExists(err)
	}
	s.logger.Info("📈 Product sales recorded", zap.String("product", name), zap.String("month", month.Format(monthLayout)))
	return row, nil
}

// RepPerformanceInput is one rep's figures for one month. RepName defaults to
// the rep's name when SalesRepID is set.
type RepPerformanceInput struct {
	SalesRepID           *int64
	RepName              string
	Month                string
	Revenue              float64
	ConversionRate       *float64
	TotalCalls           int64
	SuccessfulCalls      int64
	CustomerSatisfaction *float64
}

func (s *Service) RecordRepPerformance(ctx context.Context, orgID uuid.UUID, in RepPerformanceInput) (*entities.RepPerformance, error) {
	month, err := ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	if in.TotalCalls < 0 || in.SuccessfulCalls < 0 || in.Revenue < 0 {
		return nil, fmt.Errorf("%w: performance figures cannot be negative", usecaseErrors.ErrInvalidInput)
	}
	if in.SuccessfulCalls > in.TotalCalls {
		return nil, fmt.Errorf("%w: successful_calls exceeds total_calls", usecaseErrors.ErrInvalidInput)
	}

	name := strings.TrimSpace(in.RepName)
	if in.SalesRepID != nil {
		rep, err := s.reps.FindByID(ctx, *in.SalesRepID)
		if err != nil {
			return nil, err
		}
		if rep.OrganizationID != orgID {
			return nil, usecaseErrors.ErrForeignOrganization
		}
		if name == "" {
			name = rep.FullName()
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: rep_name or sales_rep_id is required", usecaseErrors.ErrInvalidInput)
	}

	row := &entities.RepPerformance{
		OrganizationID:       orgID,
		SalesRepID:           in.SalesRepID,
		RepName:              name,
		Month:                month,
		Revenue:              in.Revenue,
		ConversionRate:       in.ConversionRate,
		TotalCalls:           in.TotalCalls,
		SuccessfulCalls:      in.SuccessfulCalls,
		CustomerSatisfaction: in.CustomerSatisfaction,
	}
	if err := s.kpis.CreateRepPerformance(ctx, row); err != nil {
		return nil, wrapExists(err)
	}
	s.logger.Info("🏆 Rep performance recorded", zap.String("rep", name), zap.String("month", month.Format(monthLayout)))
	return row, nil
}

func wrapExists(err error) error {
	if errors.Is(err, entities.ErrKPIRecordExists) {
		return fmt.Errorf("%w: %v", usecaseErrors.ErrAlreadyExists, err)
	}
	return err
}
