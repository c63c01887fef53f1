package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Auth types carried in the auth_type claim.
const (
	AuthTypeUser     = "user"
	AuthTypeSalesRep = "sales_rep"
)

// Claims represents JWT custom claims. Subject holds the user UUID for
// dashboard users and the numeric sales rep id for sales reps; ID (jti)
// is the session id used for logout.
type Claims struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	Role           string `json:"role"`
	AuthType       string `json:"auth_type"`
	OrganizationID string `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// IsSalesRep reports whether the token was issued through sales rep login
func (c *Claims) IsSalesRep() bool {
	return c.AuthType == AuthTypeSalesRep
}
