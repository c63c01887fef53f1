package auth

import "time"

// RegisterResponse is returned with 201 after registration
type RegisterResponse struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// TokenResponse represents a bearer access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// SalesRepData identifies the rep a sales rep token was issued for
type SalesRepData struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SalesRepTokenResponse is the sales rep login response
type SalesRepTokenResponse struct {
	TokenResponse
	UserData SalesRepData `json:"user_data"`
}

// MeResponse describes the caller. Dashboard users get profile fields,
// sales reps get id and full_name.
type MeResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Role           string     `json:"role"`
	AuthType       string     `json:"auth_type"`
	OrganizationID string     `json:"organization_id,omitempty"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
}

// OrganizationResponse represents an organization
type OrganizationResponse struct {
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}

// SalesRepResponse represents a sales rep
type SalesRepResponse struct {
	SalesRepID     int64     `json:"sales_rep_id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id,omitempty"`
	FirstName      string    `json:"sales_rep_first_name"`
	LastName       string    `json:"sales_rep_last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
