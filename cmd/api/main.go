package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/adapter/handler"
	"github.com/johnquangdev/call-insights/internal/adapter/repository"
	"github.com/johnquangdev/call-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/call-insights/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/call-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	"github.com/johnquangdev/call-insights/internal/usecase/insights"
	"github.com/johnquangdev/call-insights/internal/usecase/kpi"
	pkgai "github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/call-insights/pkg/validator"
)

// @title           Call Insights API
// @version         1.0
// @description     Post-call analysis for sales calls: summaries, benchmark comparison, buyer intent and profanity checks.

// @contact.name   API Support

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	llm := pkgai.NewGroqClient(&cfg.Groq)
	analyzers := insights.DefaultAnalyzers(cfg, llm, insights.NewClassifier(cfg), logger)

	// The process runner re-executes this binary as `<bin> analyze <name>`
	if len(os.Args) > 2 && os.Args[1] == "analyze" {
		if err := insights.WriteAnalysis(context.Background(), analyzers, os.Args[2], insights.TranscriptPath(cfg.DefaultTranscriptFile()), os.Stdout, logger); err != nil {
			logger.Error("❌ Analyzer failed", zap.String("analyzer", os.Args[2]), zap.Error(err))
			os.Exit(1)
		}
		return
	}

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, pkgai.SignatureHeader},
		AllowCredentials: true,
	}))

	logger.Info("🔧 Initializing dependencies...")

	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, cfg.Database.Migrations); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	} else {
		logger.Info("🔄 Skipping migrations; run `insights migrate up` to apply them")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store := cache.New(ctx, cfg)
	defer store.Close()

	var archiver insights.Archiver
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			logger.Warn("⚠️ Object storage unavailable, archiving disabled", zap.Error(err))
		} else {
			archiver = minioClient
		}
	}

	var transcriber insights.Transcriber
	if cfg.Assembly.APIKey != "" {
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly)
	} else {
		logger.Warn("⚠️ ASSEMBLYAI_API_KEY not set, recording transcription disabled")
	}

	logger.Info("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	salesRepRepo := repository.NewSalesRepRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	callLogRepo := repository.NewCallLogRepository(db)
	kpiRepo := repository.NewKPIRepository(db)

	logger.Info("🤖 Initializing insights pipeline...",
		zap.String("runner", cfg.Insights.Runner),
		zap.String("model", llm.Model()),
		zap.String("intent_classifier", cfg.HuggingFace.Classifier),
	)
	runner, err := insights.NewRunner(cfg, analyzers, logger)
	if err != nil {
		logger.Fatal("Failed to create analyzer runner", zap.Error(err))
	}
	aggregator := insights.NewAggregator(runner, cfg.Insights.Parallel, logger)
	postCall := insights.NewPostCallAnalyzer(llm, cfg.Insights.MaxTranscriptChars)
	insightsService := insights.NewService(callLogRepo, aggregator, postCall, store, archiver, transcriber, cfg, logger)
	if err := insightsService.StartWorkerPool(ctx, cfg.Insights.Workers); err != nil {
		logger.Fatal("Failed to start insights workers", zap.Error(err))
	}

	logger.Info("🔑 Initializing auth...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.SalesRepSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	authService := auth.NewService(userRepo, orgRepo, salesRepRepo, sessionRepo, jwtManager, logger)
	go purgeSessions(ctx, authService, logger)
	kpiService := kpi.NewService(kpiRepo, salesRepRepo, logger)

	if cfg.Webhook.Secret == "" {
		logger.Warn("⚠️ WEBHOOK_SECRET not set, call webhooks will be rejected")
	}

	router := handler.NewRouter(
		cfg,
		logger,
		handler.NewAuth(authService, logger),
		handler.NewInsights(insightsService, logger),
		handler.NewKPI(kpiService, logger),
		handler.NewWebhookHandler(insightsService, cfg.Webhook.Secret, logger),
		httpmw.EchoAuth(authService),
	)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	if err := insightsService.StopWorkerPool(); err != nil {
		logger.Warn("⚠️ Failed to stop insights workers", zap.Error(err))
	}
	stop()

	logger.Info("✅ Server stopped gracefully")
}

func purgeSessions(ctx context.Context, svc *auth.Service, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.PurgeExpiredSessions(ctx); err != nil {
				logger.Warn("⚠️ Failed to purge expired sessions", zap.Error(err))
			}
		}
	}
}
