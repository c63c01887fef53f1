package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/call-insights/docs"
	"github.com/johnquangdev/call-insights/pkg/config"
	rolemw "github.com/johnquangdev/call-insights/pkg/middleware"
	pkgvalidator "github.com/johnquangdev/call-insights/pkg/validator"
)

const apiVersion = "1.0.0"

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authHandler    *Auth
	insights       *Insights
	kpi            *KPI
	webhookHandler *WebhookHandler
	authMW         echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *Auth,
	insights *Insights,
	kpi *KPI,
	webhookHandler *WebhookHandler,
	authMW echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authHandler:    authHandler,
		insights:       insights,
		kpi:            kpi,
		webhookHandler: webhookHandler,
		authMW:         authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = pkgvalidator.New()
	}
	e.HTTPErrorHandler = ErrorHandler(rt.logger)

	e.GET("/", rt.welcome)
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	rt.setupAuthRoutes(api)
	rt.setupInsightsRoutes(api)
	rt.setupKPIRoutes(api)
	rt.setupWebhookRoutes(api)
}

// setupAuthRoutes configures authentication, organization and sales rep routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	if rt.authHandler == nil {
		authGroup.Any("/*", rt.notImplemented)
		return
	}

	authGroup.POST("/register", rt.authHandler.Register)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/sales-rep/login", rt.authHandler.SalesRepLogin)

	protected := authGroup.Group("", rt.authMW)
	protected.POST("/logout", rt.authHandler.Logout)
	protected.GET("/me", rt.authHandler.Me)
	protected.POST("/organizations", rt.authHandler.CreateOrganization, rolemw.RequireManager())
	protected.GET("/organizations/:id", rt.authHandler.GetOrganization)
	protected.POST("/sales-reps", rt.authHandler.CreateSalesRep, rolemw.RequireManager())
	protected.GET("/sales-reps", rt.authHandler.ListSalesReps)
}

// setupInsightsRoutes configures transcript, analysis and call insight routes
func (rt *Router) setupInsightsRoutes(g *echo.Group) {
	if rt.insights == nil {
		return
	}
	protected := g.Group("", rt.authMW)

	protected.GET("/transcripts", rt.insights.ListTranscripts)
	protected.GET("/transcripts/:id", rt.insights.GetTranscript)
	protected.POST("/analyze", rt.insights.Analyze)
	protected.GET("/output", rt.insights.Output)

	// static segment is matched before the :call_id param
	protected.GET("/call-insights/export", rt.insights.ExportInsights, rolemw.RequireOrganization())
	protected.GET("/call-insights/:call_id", rt.insights.GetCallInsights)
	protected.GET("/call-insights/:call_id/reports", rt.insights.ListArchivedReports)
	protected.POST("/process-insights/:call_id", rt.insights.ProcessCallInsights)
	protected.POST("/calls/transcribe", rt.insights.TranscribeCall)
}

// setupKPIRoutes configures the manager-only sales KPI dashboard
func (rt *Router) setupKPIRoutes(g *echo.Group) {
	if rt.kpi == nil {
		return
	}
	kpiGroup := g.Group("/kpi", rt.authMW, rolemw.RequireManager(), rolemw.RequireOrganization())

	kpiGroup.GET("", rt.kpi.Dashboard)
	kpiGroup.GET("/export", rt.kpi.ExportDashboard)
	kpiGroup.POST("/products", rt.kpi.RecordProductSales)
	kpiGroup.POST("/reps", rt.kpi.RecordRepPerformance)
}

// setupWebhookRoutes configures signed webhooks; they carry no bearer token
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	if rt.webhookHandler == nil {
		return
	}
	g.POST("/webhooks/calls", rt.webhookHandler.HandleCallWebhook)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

func (rt *Router) welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to the Call Insights API",
		"version": apiVersion,
		"docs":    "/swagger/index.html",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"time":        time.Now().Format(time.RFC3339),
		"environment": env,
		"version":     apiVersion,
	})
}
