// Package config provides configuration management for the dcmodel tool.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Solver    SolverConfig    `mapstructure:"solver" validate:"required"`
	Simulator SimulatorConfig `mapstructure:"simulator" validate:"required"`
	Staking   StakingConfig   `mapstructure:"staking" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Synthetic SyntheticConfig `mapstructure:"synthetic" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SolverConfig represents parameter estimation settings
type SolverConfig struct {
	Method              string  `mapstructure:"method" validate:"required,method"`
	MaxIterations       int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	Decay               float64 `mapstructure:"decay" validate:"gte=0"`
	GradientTolerance   float64 `mapstructure:"gradient_tolerance" validate:"gte=0"`
	FunctionTolerance   float64 `mapstructure:"function_tolerance" validate:"gte=0"`
	Display             bool    `mapstructure:"display"`
	AllowNonConvergence bool    `mapstructure:"allow_non_convergence"`
	Seed                int64   `mapstructure:"seed"`
}

// SimulatorConfig represents score matrix settings
type SimulatorConfig struct {
	MaxGoals        int  `mapstructure:"max_goals" validate:"required,gte=1,lte=30"`
	CacheEnabled    bool `mapstructure:"cache_enabled"`
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int  `mapstructure:"cache_max_size" validate:"gte=0"`
}

// StakingConfig represents EV and Kelly settings
type StakingConfig struct {
	KellyFraction float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MinEdge       float64 `mapstructure:"min_edge" validate:"gte=0"`
	MinOdds       float64 `mapstructure:"min_odds" validate:"omitempty,gt=1"`
	MaxOdds       float64 `mapstructure:"max_odds" validate:"omitempty,gt=1"`
}

// BacktestConfig represents the rolling evaluation and replay settings
type BacktestConfig struct {
	CutoffStart          float64   `mapstructure:"cutoff_start" validate:"gte=0"`
	CutoffEnd            float64   `mapstructure:"cutoff_end" validate:"gte=0"`
	CutoffStep           float64   `mapstructure:"cutoff_step" validate:"required,gt=0"`
	WindowWidth          float64   `mapstructure:"window_width" validate:"gte=0"`
	DecayRates           []float64 `mapstructure:"decay_rates" validate:"required,min=1,dive,gte=0"`
	Concurrency          int       `mapstructure:"concurrency" validate:"required,gt=0"`
	InitialBankroll      float64   `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	MonteCarloIterations int       `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MaxDrawdownPercent   float64   `mapstructure:"max_drawdown_percent" validate:"gte=0,lte=1"`
}

// SyntheticConfig describes the generated league used by the synth command
type SyntheticConfig struct {
	Teams         int     `mapstructure:"teams" validate:"required,gte=2"`
	Seasons       int     `mapstructure:"seasons" validate:"required,gte=1"`
	AttackSpread  float64 `mapstructure:"attack_spread" validate:"gte=0"`
	DefenceSpread float64 `mapstructure:"defence_spread" validate:"gte=0"`
	Rho           float64 `mapstructure:"rho"`
	HomeAdvantage float64 `mapstructure:"home_advantage"`
	StartDate     string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	RoundGapDays  int     `mapstructure:"round_gap_days" validate:"required,gt=0"`
	Margin        float64 `mapstructure:"margin" validate:"gte=0,lt=1"`
	Seed          int64   `mapstructure:"seed"`
}

// MetricsConfig represents metrics output configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Print   bool `mapstructure:"print"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CacheTTL returns the simulator cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Simulator.CacheTTLSeconds) * time.Second
}

// ParsedStartDate parses the synthetic league start date
func (s SyntheticConfig) ParsedStartDate() (time.Time, error) {
	return time.Parse("2006-01-02", s.StartDate)
}

// RoundGap returns the spacing between synthetic rounds
func (s SyntheticConfig) RoundGap() time.Duration {
	return time.Duration(s.RoundGapDays) * 24 * time.Hour
}
