package handler

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	kpiDTO "github.com/johnquangdev/call-insights/internal/adapter/dto/kpi"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/internal/usecase/kpi"
)

// KPIService is the subset of the KPI use cases the HTTP layer calls
type KPIService interface {
	Dashboard(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) (*kpi.Dashboard, error)
	ExportDashboard(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]byte, error)
	RecordProductSales(ctx context.Context, orgID uuid.UUID, in kpi.ProductSalesInput) (*entities.ProductSales, error)
	RecordRepPerformance(ctx context.Context, orgID uuid.UUID, in kpi.RepPerformanceInput) (*entities.RepPerformance, error)
}

// KPI serves the sales KPI dashboard to managers
type KPI struct {
	svc    KPIService
	logger *zap.Logger
}

func NewKPI(svc KPIService, logger *zap.Logger) *KPI {
	return &KPI{svc: svc, logger: logger}
}

// Dashboard
// @Summary      Sales KPI dashboard
// @Description  Product revenue and share, rep leaderboard and monthly revenue trend of the caller's organization
// @Tags         KPI
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "first month, YYYY-MM"
// @Param        to    query     string  false  "last month, YYYY-MM"
// @Success      200   {object}  kpi.Dashboard
// @Failure      403   {object}  map[string]interface{}
// @Router       /kpi [get]
func (h *KPI) Dashboard(c echo.Context) error {
	orgID, rng, err := h.scope(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	d, err := h.svc.Dashboard(c.Request().Context(), orgID, rng)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("kpi dashboard", err))
	}
	return c.JSON(http.StatusOK, d)
}

// ExportDashboard downloads the dashboard as a spreadsheet
// @Summary      Export sales KPIs
// @Tags         KPI
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        from  query  string  false  "first month, YYYY-MM"
// @Param        to    query  string  false  "last month, YYYY-MM"
// @Success      200
// @Router       /kpi/export [get]
func (h *KPI) ExportDashboard(c echo.Context) error {
	orgID, rng, err := h.scope(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	data, err := h.svc.ExportDashboard(c.Request().Context(), orgID, rng)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrReportExportFailed("xlsx", err))
	}

	filename := fmt.Sprintf("sales-kpi-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// RecordProductSales
// @Summary      Record monthly product sales
// @Tags         KPI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      kpiDTO.ProductSalesRequest  true  "Product sales"
// @Success      201      {object}  entities.ProductSales
// @Failure      409      {object}  map[string]interface{}
// @Router       /kpi/products [post]
func (h *KPI) RecordProductSales(c echo.Context) error {
	orgID, err := organizationOf(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req kpiDTO.ProductSalesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	row, err := h.svc.RecordProductSales(c.Request().Context(), orgID, kpi.ProductSalesInput{
		ProductName:   req.ProductName,
		Month:         req.Month,
		UnitsSold:     req.UnitsSold,
		Revenue:       req.Revenue,
		ChurnRate:     req.ChurnRate,
		Rating:        req.Rating,
		FeedbackCount: req.FeedbackCount,
	})
	if err != nil {
		return HandleError(h.logger, c, recordError(err))
	}
	return c.JSON(http.StatusCreated, row)
}

// RecordRepPerformance
// @Summary      Record monthly sales rep performance
// @Tags         KPI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      kpiDTO.RepPerformanceRequest  true  "Rep performance"
// @Success      201      {object}  entities.RepPerformance
// @Failure      409      {object}  map[string]interface{}
// @Router       /kpi/reps [post]
func (h *KPI) RecordRepPerformance(c echo.Context) error {
	orgID, err := organizationOf(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req kpiDTO.RepPerformanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	row, err := h.svc.RecordRepPerformance(c.Request().Context(), orgID, kpi.RepPerformanceInput{
		SalesRepID:           req.SalesRepID,
		RepName:              req.RepName,
		Month:                req.Month,
		Revenue:              req.Revenue,
		ConversionRate:       req.ConversionRate,
		TotalCalls:           req.TotalCalls,
		SuccessfulCalls:      req.SuccessfulCalls,
		CustomerSatisfaction: req.CustomerSatisfaction,
	})
	if err != nil {
		return HandleError(h.logger, c, recordError(err))
	}
	return c.JSON(http.StatusCreated, row)
}

// scope reads the caller's organization and the month range
func (h *KPI) scope(c echo.Context) (uuid.UUID, entities.MonthRange, error) {
	orgID, err := organizationOf(c)
	if err != nil {
		return uuid.Nil, entities.MonthRange{}, err
	}
	var q kpiDTO.DashboardQuery
	if err := bindAndValidate(c, &q); err != nil {
		return uuid.Nil, entities.MonthRange{}, err
	}
	rng, err := kpi.ParseRange(q.From, q.To)
	if err != nil {
		return uuid.Nil, entities.MonthRange{}, err
	}
	return orgID, rng, nil
}

func organizationOf(c echo.Context) (uuid.UUID, error) {
	p, err := principal(c)
	if err != nil {
		return uuid.Nil, err
	}
	if p.OrganizationID == nil {
		return uuid.Nil, errors.ErrOrganizationRequired()
	}
	return *p.OrganizationID, nil
}

// recordError keeps client mistakes as they are and reports the rest as a failed write
func recordError(err error) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyExists):
		return errors.ErrAlreadyExists("KPI record for this month")
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput),
		stdErrors.Is(err, usecaseErrors.ErrForeignOrganization),
		stdErrors.Is(err, entities.ErrSalesRepNotFound):
		return err
	}
	return errors.ErrDBQueryFailed("kpi record", err)
}
