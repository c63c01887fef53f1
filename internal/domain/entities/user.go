package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account (manager or sales rep) that signs in with email and password
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;type:text;not null"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty" gorm:"type:timestamptz"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// UserRole defines user roles
type UserRole string

const (
	RoleManager  UserRole = "manager"
	RoleSalesRep UserRole = "sales_rep"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleManager, RoleSalesRep:
		return true
	}
	return false
}

// UserProfile holds the organization membership of a user
type UserProfile struct {
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;primary_key"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	Role           UserRole   `json:"role" gorm:"type:varchar(50);not null"`
	FirstName      string     `json:"first_name" gorm:"type:varchar(255)"`
	LastName       string     `json:"last_name" gorm:"type:varchar(255)"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullName joins first and last name, skipping blanks
func (p *UserProfile) FullName() string {
	return strings.TrimSpace(strings.Join([]string{p.FirstName, p.LastName}, " "))
}

// NewUser creates a user with a fresh id
func NewUser(email, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsManager reports whether the user's profile carries the manager role
func (u *User) IsManager() bool {
	return u.Profile != nil && u.Profile.Role == RoleManager
}

// OrganizationID returns the profile organization, if any
func (u *User) OrganizationID() *uuid.UUID {
	if u.Profile == nil {
		return nil
	}
	return u.Profile.OrganizationID
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Profile != nil && !u.Profile.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// PublicUser is the /me view of a user
type PublicUser struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Role           UserRole   `json:"role,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToPublic converts User to PublicUser
func (u *User) ToPublic() *PublicUser {
	pub := &PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		LastSignInAt: u.LastSignInAt,
		CreatedAt:    u.CreatedAt,
	}
	if u.Profile != nil {
		pub.FirstName = u.Profile.FirstName
		pub.LastName = u.Profile.LastName
		pub.Role = u.Profile.Role
		pub.OrganizationID = u.Profile.OrganizationID
	}
	return pub
}
