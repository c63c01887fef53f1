package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session records an issued access token so it can be revoked on logout.
// Subject is the user UUID or the sales rep id, depending on AuthType.
type Session struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Subject    string     `json:"subject" gorm:"type:varchar(64);not null;index"`
	AuthType   string     `json:"auth_type" gorm:"type:varchar(20);not null"`
	TokenHash  string     `json:"-" gorm:"column:token_hash;type:varchar(64);uniqueIndex;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"type:timestamptz;not null;index"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" gorm:"type:timestamptz"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" gorm:"type:timestamptz"`
	IPAddress  *string    `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent  *string    `json:"user_agent,omitempty" gorm:"type:text"`
}

// NewSession creates a new session. The token hash is filled in once the token is signed.
func NewSession(subject, authType string, expiresAt time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Subject:   subject,
		AuthType:  authType,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

// IsExpired checks if session is expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid checks if session is valid (not expired and not revoked)
func (s *Session) IsValid() bool {
	if s == nil {
		return false
	}
	return !s.IsExpired() && s.RevokedAt == nil
}

// Revoke revokes the session
func (s *Session) Revoke() {
	now := time.Now()
	s.RevokedAt = &now
}

// WithDeviceInfo adds device information
func (s *Session) WithDeviceInfo(ip, userAgent string) *Session {
	if ip != "" {
		s.IPAddress = &ip
	}
	if userAgent != "" {
		s.UserAgent = &userAgent
	}
	return s
}
