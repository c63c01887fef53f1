package handler

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	authMiddleware "github.com/johnquangdev/call-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
	"github.com/johnquangdev/call-insights/pkg/validator"
)

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// toAppError maps domain and usecase sentinels onto AppError. Handlers that
// need a more specific message build the AppError themselves.
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrInvalidCredentials):
		return errors.ErrInvalidCredentials()
	case stdErrors.Is(err, entities.ErrSessionExpired):
		return errors.ErrTokenExpired()
	case stdErrors.Is(err, usecaseErrors.ErrSessionRevoked):
		return errors.ErrSessionRevoked()
	case stdErrors.Is(err, entities.ErrInvalidToken):
		return errors.ErrInvalidToken()
	case stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
		return errors.ErrUnauthenticated()
	case stdErrors.Is(err, entities.ErrUserAlreadyExists):
		return errors.ErrUserAlreadyExists("")
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyExists):
		return errors.ErrAlreadyExists("Resource")
	case stdErrors.Is(err, entities.ErrUserNotFound):
		return errors.ErrUserNotFound()
	case stdErrors.Is(err, usecaseErrors.ErrOrganizationRequired):
		return errors.ErrOrganizationRequired()
	case stdErrors.Is(err, usecaseErrors.ErrManagerRequired):
		return errors.ErrManagerRequired()
	case stdErrors.Is(err, usecaseErrors.ErrForeignOrganization):
		return errors.ErrOrganizationAccessDenied()
	case stdErrors.Is(err, usecaseErrors.ErrForbidden):
		return errors.ErrPermissionDenied("call belongs to another organization")
	case stdErrors.Is(err, entities.ErrOrganizationNotFound):
		return errors.ErrOrganizationNotFound("")
	case stdErrors.Is(err, entities.ErrSalesRepNotFound):
		return errors.ErrNotFound("Sales rep")
	case stdErrors.Is(err, entities.ErrCallLogNotFound):
		return errors.ErrNotFound("Call log")
	case stdErrors.Is(err, entities.ErrTranscriptNotFound):
		return errors.ErrNotFound("Transcript")
	case stdErrors.Is(err, usecaseErrors.ErrNoTranscriptProvided):
		return errors.ErrNoTranscriptProvided()
	case stdErrors.Is(err, usecaseErrors.ErrInsightsNotFound):
		return errors.ErrNotFound("Insights")
	case stdErrors.Is(err, usecaseErrors.ErrQueueFull):
		return errors.ErrAIServiceUnavailable("insights queue")
	case stdErrors.Is(err, usecaseErrors.ErrTranscriberDisabled):
		return errors.ErrAIServiceUnavailable("transcription")
	case stdErrors.Is(err, entities.ErrInvalidRole),
		stdErrors.Is(err, entities.ErrInvalidEmail),
		stdErrors.Is(err, entities.ErrInvalidPassword),
		stdErrors.Is(err, usecaseErrors.ErrInvalidInput),
		stdErrors.Is(err, usecaseErrors.ErrInvalidTranscriptID):
		return errors.ErrInvalidArgument(err.Error())
	}
	return errors.ErrInternal(err)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}

	info := ""
	if appErr.Raw != nil && appErr.HTTPCode < http.StatusInternalServerError {
		info = appErr.Raw.Error()
	}
	return c.JSON(appErr.HTTPCode, errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	})
}

// ErrorHandler renders errors returned by handlers and middleware, including
// echo's own routing errors, in the same body shape
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if stdErrors.As(err, &he) {
			_ = c.JSON(he.Code, errs{
				Code:    he.Code,
				Message: fmt.Sprint(he.Message),
			})
			return
		}
		_ = HandleError(logger, c, err)
	}
}

// bindAndValidate binds the request body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		appErr := errors.ErrInvalidArgument("Validation failed")
		for field, rule := range validator.FieldErrors(err) {
			appErr = appErr.WithDetail(field, rule)
		}
		return appErr
	}
	return nil
}

// principal returns the authenticated caller or an unauthenticated error
func principal(c echo.Context) (*auth.Principal, error) {
	p, ok := authMiddleware.GetPrincipal(c)
	if !ok {
		return nil, errors.ErrUnauthenticated()
	}
	return p, nil
}

func sessionMeta(c echo.Context) auth.SessionMeta {
	return auth.SessionMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// expiresIn is the number of whole seconds until t
func expiresIn(t time.Time) int {
	if d := time.Until(t); d > 0 {
		return int(d.Seconds())
	}
	return 0
}
