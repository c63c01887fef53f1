package kpi

// DashboardQuery bounds the dashboard by month, YYYY-MM, both optional
type DashboardQuery struct {
	From string `query:"from" validate:"omitempty,max=10"`
	To   string `query:"to" validate:"omitempty,max=10"`
}

// ProductSalesRequest records one product's sales for a month
type ProductSalesRequest struct {
	ProductName   string   `json:"product_name" validate:"required,max=255"`
	Month         string   `json:"month" validate:"required,max=10"`
	UnitsSold     int64    `json:"units_sold" validate:"gte=0"`
	Revenue       float64  `json:"total_revenue" validate:"gte=0"`
	ChurnRate     *float64 `json:"churn_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	FeedbackCount int64    `json:"customer_feedback_count" validate:"gte=0"`
}

// RepPerformanceRequest records one sales rep's results for a month
type RepPerformanceRequest struct {
	SalesRepID           *int64   `json:"sales_rep_id,omitempty" validate:"omitempty,gt=0"`
	RepName              string   `json:"sales_rep_name,omitempty" validate:"omitempty,max=255"`
	Month                string   `json:"month" validate:"required,max=10"`
	Revenue              float64  `json:"revenue_generated" validate:"gte=0"`
	ConversionRate       *float64 `json:"conversion_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TotalCalls           int64    `json:"total_calls" validate:"gte=0"`
	SuccessfulCalls      int64    `json:"successful_calls" validate:"gte=0,ltefield=TotalCalls"`
	CustomerSatisfaction *float64 `json:"customer_satisfaction,omitempty" validate:"omitempty,gte=0,lte=5"`
}
