package kpi

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

const (
	productsSheet    = "Products"
	leaderboardSheet = "Leaderboard"
	monthlySheet     = "Monthly"
)

// ExportDashboard renders the dashboard as an xlsx workbook
func (s *Service) ExportDashboard(ctx context.Context, orgID uuid.UUID, rng entities.MonthRange) ([]byte, error) {
	d, err := s.Dashboard(ctx, orgID, rng)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(d)
}

// WriteWorkbook puts products, leaderboard and monthly trend on their own sheets
func WriteWorkbook(d *Dashboard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{leaderboardSheet, monthlySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	products := [][]interface{}{{"Product", "Units Sold", "Revenue", "Revenue %", "Revenue / Unit", "Avg Churn %", "Avg Rating", "Customers"}}
	for _, p := range d.Products {
		products = append(products, []interface{}{
			p.ProductName, p.UnitsSold, p.Revenue, p.RevenueShare,
			cellValue(p.RevenuePerUnit), cellValue(p.AvgChurnRate), cellValue(p.AvgRating), p.CustomerCount,
		})
	}
	products = append(products, []interface{}{"Total", nil, d.TotalRevenue, nil, nil, nil, cellValue(d.AvgCustomerRating), nil})

	leaderboard := [][]interface{}{{"Sales Rep", "Revenue", "Calls", "Deals Closed", "Success %", "Revenue / Call", "Avg Satisfaction", "Call Effectiveness", "Conversion %"}}
	for _, r := range d.Leaderboard {
		leaderboard = append(leaderboard, []interface{}{
			r.RepName, r.Revenue, r.CallsMade, r.DealsClosed, cellValue(r.SuccessRate),
			cellValue(r.RevenuePerCall), cellValue(r.AvgSatisfaction), cellValue(r.CallEffectiveness), cellValue(r.ConversionRate),
		})
	}

	monthly := [][]interface{}{{"Month", "Product Revenue", "Growth %", "Avg Churn %", "Rep Revenue"}}
	for _, m := range d.Monthly {
		monthly = append(monthly, []interface{}{m.Month, m.Revenue, cellValue(m.Growth), m.AvgChurnRate, m.RepRevenue})
	}

	for sheet, rows := range map[string][][]interface{}{
		productsSheet:    products,
		leaderboardSheet: leaderboard,
		monthlySheet:     monthly,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

// cellValue leaves the cell empty for a missing figure
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
