package main

import (
	"encoding/json"
	"fmt"
	"os"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/call-insights/internal/adapter/repository"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/infrastructure/database"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
	"github.com/johnquangdev/call-insights/internal/usecase/insights"
	pkgai "github.com/johnquangdev/call-insights/pkg/ai"
	"github.com/johnquangdev/call-insights/pkg/jwt"
)

func (a *app) analyzers() insights.Analyzers {
	return insights.DefaultAnalyzers(a.cfg, pkgai.NewGroqClient(&a.cfg.Groq), insights.NewClassifier(a.cfg), a.logger)
}

func (a *app) aggregator() (*insights.Aggregator, error) {
	runner, err := insights.NewRunner(a.cfg, a.analyzers(), a.logger)
	if err != nil {
		return nil, err
	}
	return insights.NewAggregator(runner, a.cfg.Insights.Parallel, a.logger), nil
}

func (a *app) withDB(fn func(db *gorm.DB) error) error {
	db, err := database.NewPostgresDB(a.cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)
	return fn(db)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Aggregate all analyzers over the default transcript file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg, err := a.aggregator()
			if err != nil {
				return err
			}
			result, err := agg.Aggregate(cmd.Context(), a.cfg.DefaultTranscriptFile())
			if err != nil {
				return err
			}
			return printJSON(result.Parse())
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "analyze <name>",
		Short:     "Run one analyzer and print its envelope",
		Args:      cobra.ExactArgs(1),
		ValidArgs: entities.AnalyzerNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return insights.WriteAnalysis(cmd.Context(), a.analyzers(), args[0], insights.TranscriptPath(a.cfg.DefaultTranscriptFile()), os.Stdout, a.logger)
		},
	}
}

func newProcessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "process <call_id>",
		Short: "Process a stored call and print its insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, err := a.aggregator()
			if err != nil {
				return err
			}
			return a.withDB(func(db *gorm.DB) error {
				callLogs := repository.NewCallLogRepository(db)
				var transcriber insights.Transcriber
				if a.cfg.Assembly.APIKey != "" {
					transcriber = pkgai.NewAssemblyAIClient(&a.cfg.Assembly)
				}
				postCall := insights.NewPostCallAnalyzer(pkgai.NewGroqClient(&a.cfg.Groq), a.cfg.Insights.MaxTranscriptChars)
				svc := insights.NewService(callLogs, agg, postCall, nil, nil, transcriber, a.cfg, a.logger)

				if err := svc.ProcessCall(cmd.Context(), args[0]); err != nil {
					return err
				}
				callLog, err := callLogs.FindByCallID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(append(callLog.Insights, '\n'))
				return err
			})
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply migrations, or roll back the latest one",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := migrate.Up
			if len(args) == 1 {
				switch args[0] {
				case "up":
				case "down":
					direction = migrate.Down
				default:
					return fmt.Errorf("unknown direction %q, want up or down", args[0])
				}
			}
			return a.withDB(func(db *gorm.DB) error {
				n, err := database.Migrate(db, a.cfg.Database.Migrations, direction)
				if err != nil {
					return err
				}
				a.logger.Info("✅ Migrations applied", zap.Int("count", n), zap.String("dir", a.cfg.Database.Migrations))
				return nil
			})
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		managerEmail string
		repEmail     string
		password     string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a test manager, organization and sales rep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDB(func(db *gorm.DB) error {
				ctx := cmd.Context()
				svc := auth.NewService(
					repository.NewUserRepository(db),
					repository.NewOrganizationRepository(db),
					repository.NewSalesRepRepository(db),
					repository.NewSessionRepository(db),
					jwt.NewManager(a.cfg.JWT.AccessSecret, a.cfg.JWT.SalesRepSecret, a.cfg.JWT.AccessExpiry, a.cfg.JWT.Issuer),
					a.logger,
				)

				reg, err := svc.Register(ctx, auth.RegisterInput{
					Email:            managerEmail,
					Password:         password,
					FirstName:        "Test",
					LastName:         "Manager",
					Role:             entities.RoleManager,
					OrganizationName: "Test Organization",
				})
				if err != nil {
					return fmt.Errorf("failed to register manager: %w", err)
				}

				meta := auth.SessionMeta{UserAgent: "insights-seed"}
				token, err := svc.Login(ctx, managerEmail, password, meta)
				if err != nil {
					return err
				}
				manager, err := svc.Authenticate(ctx, token.AccessToken)
				if err != nil {
					return err
				}

				rep, err := svc.CreateSalesRep(ctx, manager, auth.CreateSalesRepInput{
					FirstName: "Test",
					LastName:  "Rep",
					Email:     repEmail,
					Password:  password,
				})
				if err != nil {
					return fmt.Errorf("failed to create sales rep: %w", err)
				}
				if err := svc.Logout(ctx, manager); err != nil {
					a.logger.Warn("⚠️ Failed to revoke seed session", zap.Error(err))
				}

				return printJSON(map[string]interface{}{
					"organization_id": reg.OrganizationID,
					"manager_id":      reg.UserID,
					"manager_email":   managerEmail,
					"sales_rep_id":    rep.SalesRepID,
					"sales_rep_email": repEmail,
					"password":        password,
				})
			})
		},
	}
	cmd.Flags().StringVar(&managerEmail, "manager-email", "manager@test.local", "manager login")
	cmd.Flags().StringVar(&repEmail, "rep-email", "rep@test.local", "sales rep login")
	cmd.Flags().StringVar(&password, "password", "password123", "password for both accounts")
	return cmd
}
