package auth

// RegisterRequest represents a new dashboard account
type RegisterRequest struct {
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required,min=6"`
	FirstName        string  `json:"first_name" validate:"omitempty,max=255"`
	LastName         string  `json:"last_name" validate:"omitempty,max=255"`
	Role             string  `json:"role" validate:"required,role"`
	OrganizationID   *string `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	OrganizationName string  `json:"organization_name,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest is used by both user and sales rep login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateOrganizationRequest represents a new organization
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// CreateSalesRepRequest represents a sales rep added by a manager
type CreateSalesRepRequest struct {
	FirstName      string  `json:"sales_rep_first_name" validate:"required,max=255"`
	LastName       string  `json:"sales_rep_last_name" validate:"omitempty,max=255"`
	Email          string  `json:"email" validate:"required,email"`
	PhoneNumber    string  `json:"phone_number,omitempty" validate:"omitempty,max=50"`
	Password       string  `json:"password" validate:"required,min=6"`
	OrganizationID *string `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	UserID         *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}
