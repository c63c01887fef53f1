package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	authMiddleware "github.com/johnquangdev/call-insights/internal/infrastructure/http/middleware"
)

// RequireRole middleware: only allow dashboard users holding one of roles.
// Must run after EchoAuth.
func RequireRole(roles ...entities.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := authMiddleware.GetPrincipal(c)
			if !ok {
				return errors.ErrUnauthenticated()
			}
			if principal.User == nil {
				return errors.ErrManagerRequired()
			}
			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}
			return errors.ErrManagerRequired()
		}
	}
}

// RequireManager allows managers only
func RequireManager() echo.MiddlewareFunc {
	return RequireRole(entities.RoleManager)
}

// RequireOrganization rejects callers that are not attached to an organization
func RequireOrganization() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := authMiddleware.GetPrincipal(c)
			if !ok {
				return errors.ErrUnauthenticated()
			}
			if principal.OrganizationID == nil {
				return errors.ErrOrganizationRequired()
			}
			return next(c)
		}
	}
}
