// Package main provides the dcmodel command-line tool.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/dixon-coles/internal/config"
	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/logger"
	"github.com/yourusername/dixon-coles/internal/metrics"
	"github.com/yourusername/dixon-coles/internal/simulator"
	"github.com/yourusername/dixon-coles/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile   string
	logLevel     string
	printMetrics bool

	log *logrus.Logger
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&printMetrics, "print-metrics", false, "Print collected metrics in Prometheus text format on exit")

	rootCmd.AddCommand(priceCmd, synthCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "dcmodel",
	Short: "Dixon-Coles football model",
	Long:  `Fits Dixon-Coles team ratings, prices 1X2 markets and backtests fractional Kelly staking.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupDependencies()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if printMetrics || cfg.Metrics.Print {
			return metrics.WriteText(cmd.OutOrStdout())
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dcmodel %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return config.ValidateEnvironment(cfg)
}

func setupDependencies() {
	if cfg.IsProduction() {
		os.Setenv("ENVIRONMENT", "production")
	}
	log = logger.NewLogger(cfg.App.LogLevel)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Configuration loaded")
}

func newSimulator() *simulator.Simulator {
	return simulator.NewSimulator(simulator.Config{
		MaxGoals:     cfg.Simulator.MaxGoals,
		CacheEnabled: cfg.Simulator.CacheEnabled,
		CacheTTL:     cfg.CacheTTL(),
		CacheSize:    cfg.Simulator.CacheMaxSize,
	}, log)
}

func newStrategy(sim *simulator.Simulator, kellyFraction float64) (*strategy.ValueStrategy, error) {
	vs, err := strategy.NewValueStrategy(sim, kellyFraction, log)
	if err != nil {
		return nil, err
	}
	vs.MinEdgeThreshold = cfg.Staking.MinEdge
	vs.MinOdds = cfg.Staking.MinOdds
	vs.MaxOdds = cfg.Staking.MaxOdds
	return vs, nil
}

func solverOptions() dixoncoles.Options {
	return dixoncoles.Options{
		MaxIterations:       cfg.Solver.MaxIterations,
		Display:             cfg.Solver.Display,
		Method:              dixoncoles.Method(cfg.Solver.Method),
		AllowNonConvergence: cfg.Solver.AllowNonConvergence,
		GradientTolerance:   cfg.Solver.GradientTolerance,
		FunctionTolerance:   cfg.Solver.FunctionTolerance,
	}
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
