package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/pkg/config"
)

// app carries what every subcommand needs once the root has loaded config
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "insights",
		Short:         "Run the call insights pipeline and its maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("runner", "", "analyzer runner: process or inprocess")
	flags.Bool("parallel", false, "run analyzers concurrently")
	flags.String("transcript", "", "transcript file used by run and analyze")
	flags.String("migrations", "", "sql-migrate directory")
	flags.Bool("debug", false, "development logger")
	for _, name := range []string{"runner", "parallel", "transcript", "migrations", "debug"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetEnvPrefix("INSIGHTS_CLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(
		newRunCmd(a),
		newAnalyzeCmd(a),
		newProcessCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
	)
	return root
}

// init loads the environment config and lets flags override it
func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v := viper.GetString("runner"); v != "" {
		cfg.Insights.Runner = v
	}
	if viper.GetBool("parallel") {
		cfg.Insights.Parallel = true
	}
	if v := viper.GetString("transcript"); v != "" {
		cfg.Insights.TranscriptFile = v
	}
	if v := viper.GetString("migrations"); v != "" {
		cfg.Database.Migrations = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries analyzer envelopes, so logs go to stderr
	zcfg := zap.NewProductionConfig()
	if viper.GetBool("debug") || cfg.Server.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
