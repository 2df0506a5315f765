package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "DIXON_COLES"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dixon-coles")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("solver.method", "bfgs")
	v.SetDefault("solver.max_iterations", 100)
	v.SetDefault("solver.decay", 0.001)
	v.SetDefault("solver.gradient_tolerance", 1e-4)
	v.SetDefault("solver.function_tolerance", 1e-8)
	v.SetDefault("solver.display", false)
	v.SetDefault("solver.allow_non_convergence", false)
	v.SetDefault("solver.seed", 1)

	v.SetDefault("simulator.max_goals", 10)
	v.SetDefault("simulator.cache_enabled", true)
	v.SetDefault("simulator.cache_ttl_seconds", 600)
	v.SetDefault("simulator.cache_max_size", 10000)

	v.SetDefault("staking.kelly_fraction", 1.0)
	v.SetDefault("staking.min_edge", 0.0)

	v.SetDefault("backtest.cutoff_start", 99)
	v.SetDefault("backtest.cutoff_end", 0)
	v.SetDefault("backtest.cutoff_step", 3)
	v.SetDefault("backtest.window_width", 2)
	v.SetDefault("backtest.decay_rates", []float64{0, 0.001, 0.002, 0.005, 0.01})
	v.SetDefault("backtest.concurrency", 4)
	v.SetDefault("backtest.initial_bankroll", 1000.0)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.max_drawdown_percent", 0.5)

	v.SetDefault("synthetic.teams", 10)
	v.SetDefault("synthetic.seasons", 3)
	v.SetDefault("synthetic.attack_spread", 0.3)
	v.SetDefault("synthetic.defence_spread", 0.3)
	v.SetDefault("synthetic.rho", -0.05)
	v.SetDefault("synthetic.home_advantage", 0.25)
	v.SetDefault("synthetic.start_date", "2020-08-01")
	v.SetDefault("synthetic.round_gap_days", 7)
	v.SetDefault("synthetic.margin", 0.05)
	v.SetDefault("synthetic.seed", 42)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.print", false)
}
