package middleware

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

// PrincipalKey is the echo context key holding the *auth.Principal
const PrincipalKey = "principal"

// Authenticator resolves a bearer token into the calling principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// EchoAuth returns an Echo middleware that accepts a sales rep or a user
// token and sets the principal into the echo context
func EchoAuth(authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			principal, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				switch {
				case stdErrors.Is(err, entities.ErrSessionExpired):
					return errors.ErrTokenExpired()
				case stdErrors.Is(err, usecaseErrors.ErrSessionRevoked):
					return errors.ErrSessionRevoked()
				case stdErrors.Is(err, entities.ErrInvalidToken), stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
					return errors.ErrInvalidToken()
				}
				return errors.ErrInternal(err)
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// GetPrincipal returns the principal set by EchoAuth
func GetPrincipal(c echo.Context) (*auth.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*auth.Principal)
	return p, ok && p != nil
}

// ExtractToken reads the bearer token from the Authorization header,
// falling back to the access_token cookie
func ExtractToken(c echo.Context) string {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
