package entities

import (
	"time"

	"github.com/google/uuid"
)

// Organization groups managers, sales reps and their calls
type Organization struct {
	OrganizationID uuid.UUID `json:"organization_id" gorm:"column:organization_id;type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func NewOrganization(name string) *Organization {
	return &Organization{OrganizationID: uuid.New(), Name: name}
}

// DefaultOrganizationName names the organization auto-created for a new manager
func DefaultOrganizationName(firstName string) string {
	if firstName == "" {
		firstName = "New"
	}
	return firstName + "'s Organization"
}
