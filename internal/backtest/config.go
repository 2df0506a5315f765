package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/dixon-coles/internal/config"
)

// Backtest defaults
const (
	DefaultCutoffStart = 99.0
	DefaultCutoffEnd   = 0.0
	DefaultCutoffStep  = 3.0
	DefaultWindowWidth = 2.0
)

// BacktestConfig holds the rolling evaluation schedule and replay settings
type BacktestConfig struct {
	CutoffStart float64
	CutoffEnd   float64
	CutoffStep  float64
	// WindowWidth is how far back from a cutoff the test window reaches
	WindowWidth          float64
	DecayRates           []float64
	Concurrency          int
	InitialBankroll      float64
	MonteCarloIterations int
	MaxDrawdownPercent   float64
	Seed                 int64
}

// DefaultConfig returns the schedule used when nothing is configured
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		CutoffStart:          DefaultCutoffStart,
		CutoffEnd:            DefaultCutoffEnd,
		CutoffStep:           DefaultCutoffStep,
		WindowWidth:          DefaultWindowWidth,
		DecayRates:           []float64{0, 0.001, 0.002, 0.005, 0.01},
		Concurrency:          1,
		InitialBankroll:      1000,
		MonteCarloIterations: 1000,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig, seed int64) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}

	bt := BacktestConfig{
		CutoffStart:          cfg.CutoffStart,
		CutoffEnd:            cfg.CutoffEnd,
		CutoffStep:           cfg.CutoffStep,
		WindowWidth:          cfg.WindowWidth,
		DecayRates:           append([]float64(nil), cfg.DecayRates...),
		Concurrency:          cfg.Concurrency,
		InitialBankroll:      cfg.InitialBankroll,
		MonteCarloIterations: cfg.MonteCarloIterations,
		MaxDrawdownPercent:   cfg.MaxDrawdownPercent,
		Seed:                 seed,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if !(b.CutoffStep > 0) {
		return fmt.Errorf("cutoff step must be positive")
	}
	if b.CutoffEnd < 0 || b.CutoffStart < b.CutoffEnd {
		return fmt.Errorf("cutoff schedule must run from start %g down to end %g >= 0", b.CutoffStart, b.CutoffEnd)
	}
	if b.WindowWidth < 0 {
		return fmt.Errorf("window width cannot be negative")
	}
	for _, xi := range b.DecayRates {
		if xi < 0 || math.IsNaN(xi) || math.IsInf(xi, 0) {
			return fmt.Errorf("decay rate %g must be finite and non-negative", xi)
		}
	}
	if b.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if b.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if b.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	return nil
}

// Cutoffs returns the evaluation schedule from the oldest cutoff to the most recent
func (b BacktestConfig) Cutoffs() []float64 {
	if !(b.CutoffStep > 0) || b.CutoffStart < b.CutoffEnd {
		return nil
	}
	cutoffs := make([]float64, 0, int((b.CutoffStart-b.CutoffEnd)/b.CutoffStep)+1)
	for i := 0; ; i++ {
		c := b.CutoffStart - float64(i)*b.CutoffStep
		if c < b.CutoffEnd {
			break
		}
		cutoffs = append(cutoffs, c)
	}
	return cutoffs
}
