package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	authDTO "github.com/johnquangdev/call-insights/internal/adapter/dto/auth"
	"github.com/johnquangdev/call-insights/internal/adapter/presenter"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

const tokenTypeBearer = "bearer"

// AuthService is the subset of the auth use cases the HTTP layer calls
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.RegisterOutput, error)
	Login(ctx context.Context, email, password string, meta auth.SessionMeta) (*auth.TokenOutput, error)
	SalesRepLogin(ctx context.Context, email, password string, meta auth.SessionMeta) (*auth.SalesRepTokenOutput, error)
	Logout(ctx context.Context, p *auth.Principal) error
	CreateOrganization(ctx context.Context, p *auth.Principal, name string) (*entities.Organization, error)
	GetOrganization(ctx context.Context, p *auth.Principal, id uuid.UUID) (*entities.Organization, error)
	CreateSalesRep(ctx context.Context, p *auth.Principal, in auth.CreateSalesRepInput) (*entities.SalesRep, error)
	ListSalesReps(ctx context.Context, p *auth.Principal) ([]*entities.SalesRep, error)
}

// Auth handles authentication, organization and sales rep HTTP requests
type Auth struct {
	authService AuthService
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService AuthService, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a dashboard account
// @Summary      Register
// @Description  Creates a manager or sales rep account. Managers without an organization get a new one.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.RegisterRequest   true  "Registration"
// @Success      201      {object}  authDTO.RegisterResponse
// @Failure      400      {object}  map[string]interface{}    "Validation failed or organization required"
// @Failure      409      {object}  map[string]interface{}    "User already exists"
// @Router       /auth/register [post]
func (h *Auth) Register(c echo.Context) error {
	var req authDTO.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	in := auth.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Role:             entities.UserRole(req.Role),
		OrganizationName: req.OrganizationName,
	}
	if req.OrganizationID != nil && *req.OrganizationID != "" {
		orgID, err := uuid.Parse(*req.OrganizationID)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("organization_id must be a UUID"))
		}
		in.OrganizationID = &orgID
	}

	out, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		if stdErrors.Is(err, entities.ErrUserAlreadyExists) {
			return HandleError(h.logger, c, errors.ErrUserAlreadyExists(req.Email))
		}
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, presenter.ToRegisterResponse(out))
}

// Login exchanges email and password for a user access token
// @Summary      Login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.LoginRequest  true  "Credentials"
// @Success      200      {object}  authDTO.TokenResponse
// @Failure      401      {object}  map[string]interface{}  "Invalid credentials"
// @Router       /auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req authDTO.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	out, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, authDTO.TokenResponse{
		AccessToken: out.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   expiresIn(out.ExpiresAt),
	})
}

// SalesRepLogin exchanges sales rep credentials for a sales rep token
// @Summary      Sales rep login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authDTO.LoginRequest  true  "Credentials"
// @Success      200      {object}  authDTO.SalesRepTokenResponse
// @Failure      401      {object}  map[string]interface{}  "Invalid credentials"
// @Router       /auth/sales-rep/login [post]
func (h *Auth) SalesRepLogin(c echo.Context) error {
	var req authDTO.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	out, err := h.authService.SalesRepLogin(c.Request().Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, authDTO.SalesRepTokenResponse{
		TokenResponse: authDTO.TokenResponse{
			AccessToken: out.AccessToken,
			TokenType:   tokenTypeBearer,
			ExpiresIn:   expiresIn(out.ExpiresAt),
		},
		UserData: authDTO.SalesRepData{
			ID:       out.ID,
			FullName: out.FullName,
			Email:    out.Email,
			Role:     string(out.Role),
		},
	})
}

// Logout revokes the session of the presented token
// POST /api/auth/logout
func (h *Auth) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := h.authService.Logout(c.Request().Context(), p); err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// Me returns the authenticated caller
// GET /api/auth/me
func (h *Auth) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, presenter.ToMeResponse(p))
}

// CreateOrganization
// POST /api/auth/organizations
func (h *Auth) CreateOrganization(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req authDTO.CreateOrganizationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	org, err := h.authService.CreateOrganization(c.Request().Context(), p, req.Name)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, presenter.ToOrganizationResponse(org))
}

// GetOrganization
// GET /api/auth/organizations/:id
func (h *Auth) GetOrganization(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("organization id must be a UUID"))
	}

	org, err := h.authService.GetOrganization(c.Request().Context(), p, id)
	if err != nil {
		if stdErrors.Is(err, entities.ErrOrganizationNotFound) {
			return HandleError(h.logger, c, errors.ErrOrganizationNotFound(id.String()))
		}
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, presenter.ToOrganizationResponse(org))
}

// CreateSalesRep adds a sales rep with login credentials to the manager's organization
// @Summary      Create sales rep
// @Tags         Sales Reps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      authDTO.CreateSalesRepRequest  true  "Sales rep"
// @Success      201      {object}  authDTO.SalesRepResponse
// @Failure      403      {object}  map[string]interface{}  "Not a manager or foreign organization"
// @Router       /auth/sales-reps [post]
func (h *Auth) CreateSalesRep(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req authDTO.CreateSalesRepRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	in := auth.CreateSalesRepInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	}
	if in.OrganizationID, err = parseOptionalUUID(req.OrganizationID); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("organization_id must be a UUID"))
	}
	if in.UserID, err = parseOptionalUUID(req.UserID); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("user_id must be a UUID"))
	}

	rep, err := h.authService.CreateSalesRep(c.Request().Context(), p, in)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrForeignOrganization) {
			return HandleError(h.logger, c, errors.ErrSalesRepForeignOrganization())
		}
		if stdErrors.Is(err, entities.ErrUserAlreadyExists) {
			return HandleError(h.logger, c, errors.ErrUserAlreadyExists(req.Email))
		}
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusCreated, presenter.ToSalesRepResponse(rep))
}

// ListSalesReps
// GET /api/auth/sales-reps
func (h *Auth) ListSalesReps(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	reps, err := h.authService.ListSalesReps(c.Request().Context(), p)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, presenter.ToSalesRepListResponse(reps))
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
