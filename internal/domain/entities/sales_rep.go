package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SalesRep is a member of an organization whose calls are analyzed
type SalesRep struct {
	SalesRepID     int64      `json:"sales_rep_id" gorm:"column:sales_rep_id;primaryKey;autoIncrement"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	UserID         *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	FirstName      string     `json:"sales_rep_first_name" gorm:"column:sales_rep_first_name;type:varchar(255);not null"`
	LastName       string     `json:"sales_rep_last_name" gorm:"column:sales_rep_last_name;type:varchar(255)"`
	Email          string     `json:"email" gorm:"type:varchar(255);not null"`
	PhoneNumber    string     `json:"phone_number,omitempty" gorm:"type:varchar(50)"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (s *SalesRep) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// UserAuth holds the login of a sales rep, separate from dashboard users
type UserAuth struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;type:text;not null"`
	FullName     string     `json:"full_name" gorm:"type:varchar(255)"`
	Role         UserRole   `json:"role" gorm:"type:varchar(50);not null;default:'sales_rep'"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	SalesRepID   *int64     `json:"sales_rep_id,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamptz"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (UserAuth) TableName() string {
	return "user_auth"
}
