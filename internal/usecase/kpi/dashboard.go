package kpi

import (
	"math"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

const monthLayout = "2006-01"

// ProductKPI is one product line of the dashboard
type ProductKPI struct {
	ProductName    string   `json:"product_name"`
	UnitsSold      int64    `json:"units_sold"`
	Revenue        float64  `json:"total_revenue"`
	AvgChurnRate   *float64 `json:"avg_churn_rate"`
	AvgRating      *float64 `json:"avg_customer_rating"`
	CustomerCount  int64    `json:"customer_count"`
	RevenuePerUnit *float64 `json:"revenue_per_unit"`
	RevenueShare   float64  `json:"revenue_percentage"`
}

// RepKPI is one leaderboard row
type RepKPI struct {
	RepName           string   `json:"rep_name"`
	Revenue           float64  `json:"revenue_generated"`
	ConversionRate    *float64 `json:"conversion_rate"`
	CallsMade         int64    `json:"calls_made"`
	DealsClosed       int64    `json:"deals_closed"`
	AvgSatisfaction   *float64 `json:"avg_satisfaction_score"`
	SuccessRate       *float64 `json:"success_rate"`
	RevenuePerCall    *float64 `json:"revenue_per_call"`
	CallEffectiveness *float64 `json:"call_effectiveness_score"`
}

// MonthKPI is one month of the revenue trend
type MonthKPI struct {
	Month        string   `json:"month"`
	Revenue      float64  `json:"monthly_revenue"`
	Growth       *float64 `json:"revenue_growth_percentage"`
	AvgChurnRate float64  `json:"avg_churn_rate"`
	RepRevenue   float64  `json:"rep_revenue"`
}

// Dashboard is the KPI view of one organization
type Dashboard struct {
	TotalRevenue      float64      `json:"total_revenue"`
	AvgCustomerRating *float64     `json:"avg_customer_rating"`
	Products          []ProductKPI `json:"products"`
	Leaderboard       []RepKPI     `json:"leaderboard"`
	Monthly           []MonthKPI   `json:"monthly"`
}

// BuildDashboard derives the dashboard figures from the aggregated rows.
// Ratios with a zero denominator are nil. Input order is kept.
func BuildDashboard(products []entities.ProductTotals, reps []entities.RepTotals, months []entities.MonthTotals) *Dashboard {
	d := &Dashboard{
		Products:    make([]ProductKPI, 0, len(products)),
		Leaderboard: make([]RepKPI, 0, len(reps)),
		Monthly:     make([]MonthKPI, 0, len(months)),
	}

	var ratingSum float64
	var rated int
	for _, p := range products {
		d.TotalRevenue += p.Revenue
		if p.AvgRating != nil {
			ratingSum += *p.AvgRating
			rated++
		}
	}
	if rated > 0 {
		d.AvgCustomerRating = round2(ratingSum / float64(rated))
	}

	for _, p := range products {
		row := ProductKPI{
			ProductName:    p.ProductName,
			UnitsSold:      p.UnitsSold,
			Revenue:        p.Revenue,
			AvgChurnRate:   p.AvgChurnRate,
			AvgRating:      p.AvgRating,
			CustomerCount:  p.FeedbackCount,
			RevenuePerUnit: ratio(p.Revenue, float64(p.UnitsSold), 1),
		}
		if share := ratio(p.Revenue, d.TotalRevenue, 100); share != nil {
			row.RevenueShare = *share
		}
		d.Products = append(d.Products, row)
	}

	for _, r := range reps {
		row := RepKPI{
			RepName:         r.RepName,
			Revenue:         r.Revenue,
			ConversionRate:  r.ConversionRate,
			CallsMade:       r.CallsMade,
			DealsClosed:     r.DealsClosed,
			AvgSatisfaction: r.AvgSatisfaction,
			SuccessRate:     ratio(float64(r.DealsClosed), float64(r.CallsMade), 100),
			RevenuePerCall:  ratio(r.Revenue, float64(r.CallsMade), 1),
		}
		if row.RevenuePerCall != nil && r.AvgSatisfaction != nil {
			row.CallEffectiveness = round2(*row.RevenuePerCall * *r.AvgSatisfaction)
		}
		d.Leaderboard = append(d.Leaderboard, row)
	}

	for i, m := range months {
		row := MonthKPI{
			Month:        m.Month.Format(monthLayout),
			Revenue:      m.ProductRevenue,
			AvgChurnRate: m.AvgChurnRate,
			RepRevenue:   m.RepRevenue,
		}
		if i > 0 {
			prev := months[i-1].ProductRevenue
			row.Growth = ratio(m.ProductRevenue-prev, prev, 100)
		}
		d.Monthly = append(d.Monthly, row)
	}
	return d
}

// ratio returns num/den*scale rounded to cents, or nil when den is zero
func ratio(num, den, scale float64) *float64 {
	if den == 0 {
		return nil
	}
	return round2(num / den * scale)
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
