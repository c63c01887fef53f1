package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrKPIRecordExists is returned when a product or rep already has a row for the month
var ErrKPIRecordExists = errors.New("kpi record already exists for this month")

// ProductSales is one product's sales for one month
type ProductSales struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	ProductName    string    `json:"product_name" gorm:"type:varchar(255);not null"`
	Month          time.Time `json:"month" gorm:"type:date;not null"`
	UnitsSold      int64     `json:"units_sold" gorm:"not null;default:0"`
	Revenue        float64   `json:"revenue" gorm:"not null;default:0"`
	ChurnRate      *float64  `json:"churn_rate,omitempty"`
	Rating         *float64  `json:"rating,omitempty"`
	FeedbackCount  int64     `json:"feedback_count" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ProductSales) TableName() string {
	return "product_sales"
}

// RepPerformance is one sales rep's results for one month
type RepPerformance struct {
	ID                   int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrganizationID       uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	SalesRepID           *int64    `json:"sales_rep_id,omitempty"`
	RepName              string    `json:"rep_name" gorm:"type:varchar(255);not null"`
	Month                time.Time `json:"month" gorm:"type:date;not null"`
	Revenue              float64   `json:"revenue" gorm:"not null;default:0"`
	ConversionRate       *float64  `json:"conversion_rate,omitempty"`
	TotalCalls           int64     `json:"total_calls" gorm:"not null;default:0"`
	SuccessfulCalls      int64     `json:"successful_calls" gorm:"not null;default:0"`
	CustomerSatisfaction *float64  `json:"customer_satisfaction,omitempty"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (RepPerformance) TableName() string {
	return "rep_performance"
}

// MonthRange bounds KPI queries by month, both ends inclusive. Nil ends are open.
type MonthRange struct {
	From *time.Time
	To   *time.Time
}

// ProductTotals is product_sales summed per product. Averages are nil when
// no month of the product carries the figure.
type ProductTotals struct {
	ProductName   string
	UnitsSold     int64
	Revenue       float64
	AvgChurnRate  *float64
	AvgRating     *float64
	FeedbackCount int64
}

// RepTotals is rep_performance summed per rep
type RepTotals struct {
	RepName         string
	Revenue         float64
	ConversionRate  *float64
	CallsMade       int64
	DealsClosed     int64
	AvgSatisfaction *float64
}

// MonthTotals is one month of product revenue and churn, plus rep revenue
type MonthTotals struct {
	Month          time.Time
	ProductRevenue float64
	AvgChurnRate   float64
	RepRevenue     float64
}
