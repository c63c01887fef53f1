package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/jwt"
)

const minPasswordLength = 6

// Principal is the authenticated caller of a request. User is set for
// dashboard users and nil for sales reps.
type Principal struct {
	SessionID      uuid.UUID
	AuthType       string
	Subject        string
	Email          string
	FullName       string
	Role           entities.UserRole
	OrganizationID *uuid.UUID
	User           *entities.User
}

// IsManager reports whether the caller may manage organizations and reps
func (p *Principal) IsManager() bool {
	return p != nil && p.AuthType == jwt.AuthTypeUser && p.Role == entities.RoleManager
}

// SessionMeta is recorded on the session row of a new token
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// Service handles email/password authentication, organizations and sales reps
type Service struct {
	users      repositories.UserRepository
	orgs       repositories.OrganizationRepository
	reps       repositories.SalesRepRepository
	sessions   repositories.SessionRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
	hashCost   int
}

// NewService creates a new auth service
func NewService(
	users repositories.UserRepository,
	orgs repositories.OrganizationRepository,
	reps repositories.SalesRepRepository,
	sessions repositories.SessionRepository,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:      users,
		orgs:       orgs,
		reps:       reps,
		sessions:   sessions,
		jwtManager: jwtManager,
		logger:     logger,
		hashCost:   bcrypt.DefaultCost,
	}
}

// RegisterInput is a new dashboard account
type RegisterInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Role             entities.UserRole
	OrganizationID   *uuid.UUID
	OrganizationName string
}

// RegisterOutput identifies the created account
type RegisterOutput struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           entities.UserRole
}

// Register creates a user with its profile. Sales reps must join an existing
// organization; a manager without one gets a new organization.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	if !in.Role.IsValid() {
		return nil, entities.ErrInvalidRole
	}
	if len(in.Password) < minPasswordLength {
		return nil, entities.ErrInvalidPassword
	}
	if in.Role == entities.RoleSalesRep && in.OrganizationID == nil {
		return nil, usecaseErrors.ErrOrganizationRequired
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.users.FindByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, entities.ErrUserAlreadyExists
	} else if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	var orgID uuid.UUID
	if in.OrganizationID != nil {
		if _, err := s.orgs.FindByID(ctx, *in.OrganizationID); err != nil {
			return nil, err
		}
		orgID = *in.OrganizationID
	} else {
		name := strings.TrimSpace(in.OrganizationName)
		if name == "" {
			name = entities.DefaultOrganizationName(in.FirstName)
		}
		org := entities.NewOrganization(name)
		if err := s.orgs.Create(ctx, org); err != nil {
			return nil, fmt.Errorf("failed to create organization: %w", err)
		}
		orgID = org.OrganizationID
		s.logger.Info("🏢 Organization created", zap.String("organization_id", orgID.String()), zap.String("name", name))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.NewUser(in.Email, string(hash))
	user.Profile = &entities.UserProfile{
		UserID:         user.ID,
		OrganizationID: &orgID,
		Role:           in.Role,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if in.Role == entities.RoleSalesRep {
		userID := user.ID
		rep := &entities.SalesRep{
			OrganizationID: orgID,
			UserID:         &userID,
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			Email:          user.Email,
		}
		if err := s.reps.Create(ctx, rep); err != nil {
			return nil, fmt.Errorf("failed to create sales rep record: %w", err)
		}
	}

	s.logger.Info("✅ User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(in.Role)),
	)
	return &RegisterOutput{UserID: user.ID, OrganizationID: orgID, Role: in.Role}, nil
}

// TokenOutput is a signed access token
type TokenOutput struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Login checks a dashboard user's password and issues an access token
func (s *Service) Login(ctx context.Context, email, password string, meta SessionMeta) (*TokenOutput, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, usecaseErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, usecaseErrors.ErrInvalidCredentials
	}

	identity := jwt.Identity{Email: user.Email}
	if user.Profile != nil {
		identity.FullName = user.Profile.FullName()
		identity.Role = string(user.Profile.Role)
		if user.Profile.OrganizationID != nil {
			identity.OrganizationID = user.Profile.OrganizationID.String()
		}
	}
	token, expiresAt, err := s.issue(ctx, user.ID.String(), jwt.AuthTypeUser, identity, meta)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastSignIn(ctx, user.ID); err != nil {
		s.logger.Warn("⚠️ Failed to update last sign in", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return &TokenOutput{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// SalesRepTokenOutput is a sales rep access token with the rep's identity
type SalesRepTokenOutput struct {
	TokenOutput
	ID       int64
	FullName string
	Email    string
	Role     entities.UserRole
}

// SalesRepLogin checks user_auth credentials and issues a sales rep token.
// The subject is the sales rep id, or the credential id when the login is
// not linked to a sales rep.
func (s *Service) SalesRepLogin(ctx context.Context, email, password string, meta SessionMeta) (*SalesRepTokenOutput, error) {
	cred, err := s.reps.FindAuthByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, entities.ErrSalesRepNotFound) {
			return nil, usecaseErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !cred.IsActive || bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, usecaseErrors.ErrInvalidCredentials
	}

	subjectID := cred.ID
	identity := jwt.Identity{Email: cred.Email, FullName: cred.FullName, Role: string(cred.Role)}
	if identity.Role == "" {
		identity.Role = string(entities.RoleSalesRep)
	}
	if cred.SalesRepID != nil {
		subjectID = *cred.SalesRepID
		if rep, err := s.reps.FindByID(ctx, *cred.SalesRepID); err == nil {
			identity.OrganizationID = rep.OrganizationID.String()
			if identity.FullName == "" {
				identity.FullName = rep.FullName()
			}
		}
	}

	token, expiresAt, err := s.issue(ctx, strconv.FormatInt(subjectID, 10), jwt.AuthTypeSalesRep, identity, meta)
	if err != nil {
		return nil, err
	}
	if err := s.reps.UpdateLastLogin(ctx, cred.ID); err != nil {
		s.logger.Warn("⚠️ Failed to update last login", zap.Int64("user_auth_id", cred.ID), zap.Error(err))
	}

	return &SalesRepTokenOutput{
		TokenOutput: TokenOutput{AccessToken: token, ExpiresAt: expiresAt},
		ID:          subjectID,
		FullName:    identity.FullName,
		Email:       cred.Email,
		Role:        entities.UserRole(identity.Role),
	}, nil
}

// issue signs a token bound to a new session row
func (s *Service) issue(ctx context.Context, subject, authType string, identity jwt.Identity, meta SessionMeta) (string, time.Time, error) {
	session := entities.NewSession(subject, authType, time.Now().Add(s.jwtManager.GetAccessExpiry())).
		WithDeviceInfo(meta.IPAddress, meta.UserAgent)

	identity.SessionID = session.ID.String()
	identity.Subject = subject

	var (
		token     string
		expiresAt time.Time
		err       error
	)
	if authType == jwt.AuthTypeSalesRep {
		token, expiresAt, err = s.jwtManager.GenerateSalesRepToken(identity)
	} else {
		token, expiresAt, err = s.jwtManager.GenerateUserToken(identity)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	session.ExpiresAt = expiresAt
	if session.TokenHash, err = s.jwtManager.HashToken(token); err != nil {
		return "", time.Time{}, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}
	return token, expiresAt, nil
}

// Authenticate resolves a bearer token of either kind. Sales rep tokens are
// tried first; the session behind the token must still be active.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, usecaseErrors.ErrUnauthorized
	}

	claims, repErr := s.jwtManager.ValidateSalesRepToken(token)
	if repErr != nil {
		var userErr error
		claims, userErr = s.jwtManager.ValidateUserToken(token)
		if userErr != nil {
			if errors.Is(repErr, gojwt.ErrTokenExpired) || errors.Is(userErr, gojwt.ErrTokenExpired) {
				return nil, entities.ErrSessionExpired
			}
			return nil, entities.ErrInvalidToken
		}
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return nil, entities.ErrInvalidToken
		}
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, usecaseErrors.ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, entities.ErrSessionExpired
	}
	if hash, _ := s.jwtManager.HashToken(token); hash != session.TokenHash {
		return nil, entities.ErrInvalidToken
	}

	p := &Principal{
		SessionID: sessionID,
		AuthType:  claims.AuthType,
		Subject:   claims.Subject,
		Email:     claims.Email,
		FullName:  claims.FullName,
		Role:      entities.UserRole(claims.Role),
	}
	if claims.OrganizationID != "" {
		if orgID, err := uuid.Parse(claims.OrganizationID); err == nil {
			p.OrganizationID = &orgID
		}
	}

	if claims.IsSalesRep() {
		if p.Role == "" {
			p.Role = entities.RoleSalesRep
		}
		return p, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrInvalidToken
		}
		return nil, err
	}
	p.User = user
	if user.Profile != nil {
		p.Role = user.Profile.Role
		p.OrganizationID = user.Profile.OrganizationID
		p.FullName = user.Profile.FullName()
	}
	return p, nil
}

// Logout revokes the session the caller's token belongs to
func (s *Service) Logout(ctx context.Context, p *Principal) error {
	if p == nil {
		return usecaseErrors.ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, p.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info("👋 Session revoked", zap.String("session_id", p.SessionID.String()), zap.String("auth_type", p.AuthType))
	return nil
}

// PurgeExpiredSessions deletes sessions that expired before now
func (s *Service) PurgeExpiredSessions(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

// CreateOrganization creates an organization on behalf of a manager
func (s *Service) CreateOrganization(ctx context.Context, p *Principal, name string) (*entities.Organization, error) {
	if !p.IsManager() {
		return nil, usecaseErrors.ErrManagerRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", usecaseErrors.ErrInvalidInput)
	}
	org := entities.NewOrganization(name)
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// GetOrganization returns the caller's own organization
func (s *Service) GetOrganization(ctx context.Context, p *Principal, id uuid.UUID) (*entities.Organization, error) {
	if p.OrganizationID == nil || *p.OrganizationID != id {
		return nil, usecaseErrors.ErrForeignOrganization
	}
	return s.orgs.FindByID(ctx, id)
}

// CreateSalesRepInput is a sales rep added by a manager, with login credentials
type CreateSalesRepInput struct {
	OrganizationID *uuid.UUID
	UserID         *uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Password       string
}

// CreateSalesRep adds a rep to the manager's own organization together with its user_auth login
func (s *Service) CreateSalesRep(ctx context.Context, p *Principal, in CreateSalesRepInput) (*entities.SalesRep, error) {
	if !p.IsManager() {
		return nil, usecaseErrors.ErrManagerRequired
	}
	if p.OrganizationID == nil {
		return nil, usecaseErrors.ErrOrganizationRequired
	}
	if in.OrganizationID != nil && *in.OrganizationID != *p.OrganizationID {
		return nil, usecaseErrors.ErrForeignOrganization
	}
	if len(in.Password) < minPasswordLength {
		return nil, entities.ErrInvalidPassword
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.reps.FindAuthByEmail(ctx, email); err == nil {
		return nil, entities.ErrUserAlreadyExists
	} else if !errors.Is(err, entities.ErrSalesRepNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rep := &entities.SalesRep{
		OrganizationID: *p.OrganizationID,
		UserID:         in.UserID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          email,
		PhoneNumber:    in.PhoneNumber,
	}
	cred := &entities.UserAuth{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     rep.FullName(),
		Role:         entities.RoleSalesRep,
		IsActive:     true,
	}
	if err := s.reps.CreateWithAuth(ctx, rep, cred); err != nil {
		return nil, err
	}

	s.logger.Info("✅ Sales rep created",
		zap.Int64("sales_rep_id", rep.SalesRepID),
		zap.String("organization_id", rep.OrganizationID.String()),
	)
	return rep, nil
}

// ListSalesReps returns the reps of the caller's organization
func (s *Service) ListSalesReps(ctx context.Context, p *Principal) ([]*entities.SalesRep, error) {
	if p.OrganizationID == nil {
		return []*entities.SalesRep{}, nil
	}
	return s.reps.ListByOrganization(ctx, *p.OrganizationID)
}
