package config

import (
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	appName                      = "dixon-coles"
	developmentEnv               = "development"
	testAppName                  = "test-app"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}
	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.Solver.Method != "bfgs" {
		t.Errorf("expected solver method 'bfgs', got '%s'", cfg.Solver.Method)
	}
	if cfg.Simulator.MaxGoals != 10 {
		t.Errorf("expected max goals 10, got %d", cfg.Simulator.MaxGoals)
	}
	if cfg.Staking.KellyFraction != 0.25 {
		t.Errorf("expected kelly fraction 0.25, got %g", cfg.Staking.KellyFraction)
	}
	if len(cfg.Backtest.DecayRates) != 4 || cfg.Backtest.DecayRates[2] != 0.002 {
		t.Errorf("unexpected decay rates %v", cfg.Backtest.DecayRates)
	}
	if cfg.Backtest.CutoffStart != 99 || cfg.Backtest.CutoffStep != 3 {
		t.Errorf("unexpected cutoff schedule %+v", cfg.Backtest)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(nonexistentConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("DIXON_COLES_APP_NAME", testAppName)

	cfg := loadValid(t)
	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} placeholders in the YAML file
func TestLoadConfigExpansion(t *testing.T) {
	t.Setenv("DC_TEST_APP_NAME", "expanded-app")
	t.Setenv("DC_TEST_METHOD", "nelder-mead")

	cfg, err := LoadWithDefaults(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.Name != "expanded-app" {
		t.Errorf("expected expanded app name, got '%s'", cfg.App.Name)
	}
	if cfg.Solver.Method != "nelder-mead" {
		t.Errorf("expected expanded method, got '%s'", cfg.Solver.Method)
	}
	if cfg.Solver.MaxIterations != 50 {
		t.Errorf("expected file value 50 to override the default, got %d", cfg.Solver.MaxIterations)
	}
	if cfg.Simulator.MaxGoals != 10 {
		t.Errorf("expected default max goals 10, got %d", cfg.Simulator.MaxGoals)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected expanded config to validate, got %v", err)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults alone form a valid config
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.Name != appName {
		t.Errorf("expected default app name, got '%s'", cfg.App.Name)
	}
	if cfg.Staking.KellyFraction != 1.0 {
		t.Errorf("expected default kelly fraction 1.0, got %g", cfg.Staking.KellyFraction)
	}
	if cfg.Solver.Decay != 0.001 {
		t.Errorf("expected default decay 0.001, got %g", cfg.Solver.Decay)
	}
	if cfg.Backtest.WindowWidth != 2 {
		t.Errorf("expected default window width 2, got %g", cfg.Backtest.WindowWidth)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	if err := Validate(loadValid(t)); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateFailures tests rejected field values
func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "Environment"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "LogLevel"},
		{"invalid method", func(c *Config) { c.Solver.Method = "newton" }, "Method"},
		{"kelly fraction above one", func(c *Config) { c.Staking.KellyFraction = 1.5 }, "KellyFraction"},
		{"negative decay rate", func(c *Config) { c.Backtest.DecayRates = []float64{0.001, -1} }, "DecayRates"},
		{"empty decay grid", func(c *Config) { c.Backtest.DecayRates = nil }, "DecayRates"},
		{"bad start date", func(c *Config) { c.Synthetic.StartDate = "07/08/2021" }, "StartDate"},
		{"one team", func(c *Config) { c.Synthetic.Teams = 1 }, "Teams"},
		{"cutoff order", func(c *Config) { c.Backtest.CutoffEnd = 120 }, "cutoff_start"},
		{"odds bounds", func(c *Config) { c.Staking.MinOdds = 20 }, "min_odds"},
		{"cache without size", func(c *Config) { c.Simulator.CacheMaxSize = 0 }, "cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("expected error mentioning %q, got: %v", tt.wantSub, err)
			}
		})
	}
}

// TestValidateNil tests validation of a missing configuration
func TestValidateNil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

// TestValidateEnvironment tests production-only restrictions
func TestValidateEnvironment(t *testing.T) {
	cfg := loadValid(t)
	if err := ValidateEnvironment(cfg); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = "production"
	cfg.Solver.AllowNonConvergence = true
	if err := ValidateEnvironment(cfg); err == nil {
		t.Fatal("expected production to reject unconverged fits")
	}
}

// TestEnvironmentHelpers tests IsDevelopment, IsStaging and IsProduction
func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "staging"}}
	if cfg.IsDevelopment() || !cfg.IsStaging() || cfg.IsProduction() {
		t.Errorf("unexpected environment helpers for %s", cfg.App.Environment)
	}
}

// TestDurations tests the derived durations
func TestDurations(t *testing.T) {
	cfg := loadValid(t)
	if cfg.CacheTTL() != 10*time.Minute {
		t.Errorf("expected 10m cache TTL, got %v", cfg.CacheTTL())
	}
	if cfg.Synthetic.RoundGap() != 7*24*time.Hour {
		t.Errorf("expected one week round gap, got %v", cfg.Synthetic.RoundGap())
	}
	start, err := cfg.Synthetic.ParsedStartDate()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if start.Year() != 2021 || start.Month() != time.August || start.Day() != 7 {
		t.Errorf("unexpected start date %v", start)
	}
}
