package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what gets signed into an access token
type Identity struct {
	SessionID      string
	Subject        string
	Email          string
	FullName       string
	Role           string
	OrganizationID string
}

// Manager handles JWT operations. User and sales rep tokens are signed
// with separate secrets so one kind can never validate as the other.
type Manager struct {
	userSecret     string
	salesRepSecret string
	accessExpiry   time.Duration
	issuer         string
}

// NewManager creates a new JWT manager. An empty salesRepSecret reuses userSecret.
func NewManager(userSecret, salesRepSecret string, accessExpiry time.Duration, issuer string) *Manager {
	if salesRepSecret == "" {
		salesRepSecret = userSecret
	}
	if issuer == "" {
		issuer = "call-insights"
	}
	return &Manager{
		userSecret:     userSecret,
		salesRepSecret: salesRepSecret,
		accessExpiry:   accessExpiry,
		issuer:         issuer,
	}
}

// GenerateUserToken signs an access token for a dashboard user
func (m *Manager) GenerateUserToken(id Identity) (string, time.Time, error) {
	return m.sign(id, AuthTypeUser, m.userSecret)
}

// GenerateSalesRepToken signs an access token for a sales rep
func (m *Manager) GenerateSalesRepToken(id Identity) (string, time.Time, error) {
	return m.sign(id, AuthTypeSalesRep, m.salesRepSecret)
}

func (m *Manager) sign(id Identity, authType, secret string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.accessExpiry)
	claims := &Claims{
		Email:          id.Email,
		FullName:       id.FullName,
		Role:           id.Role,
		AuthType:       authType,
		OrganizationID: id.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.SessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   id.Subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateUserToken validates and parses a dashboard user token
func (m *Manager) ValidateUserToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, AuthTypeUser, m.userSecret)
}

// ValidateSalesRepToken validates and parses a sales rep token
func (m *Manager) ValidateSalesRepToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, AuthTypeSalesRep, m.salesRepSecret)
}

func (m *Manager) validate(tokenString, authType, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.AuthType != authType {
		return nil, fmt.Errorf("token auth type %q, want %q", claims.AuthType, authType)
	}

	return claims, nil
}

// GetAccessExpiry returns access token expiry duration
func (m *Manager) GetAccessExpiry() time.Duration {
	return m.accessExpiry
}

// HashToken returns the SHA-256 hex digest of the provided token string.
// Sessions store this digest, never the token itself.
func (m *Manager) HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:]), nil
}
