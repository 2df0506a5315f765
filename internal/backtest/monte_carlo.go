package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/dixon-coles/internal/models"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
}

// MonteCarloResult summarises the bankroll distribution of resimulated replays
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanReturn          float64            `json:"mean_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"distribution"`
}

// RunMonteCarlo replays the settled bets many times, drawing each result from
// the model probability the bet was placed at. Stakes stay as placed, so the
// distribution shows how lucky the realised sequence was if the model is right.
func RunMonteCarlo(ctx context.Context, bets []*models.Bet, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.InitialBankroll <= 0 {
		return MonteCarloResult{}, fmt.Errorf("initial bankroll must be positive")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return MonteCarloResult{}, err
		}
		bankroll := cfg.InitialBankroll
		for _, bet := range bets {
			stake := bet.Stake.InexactFloat64()
			if rng.Float64() < bet.Probability {
				bankroll += stake * (bet.Odds - 1)
			} else {
				bankroll -= stake
			}
			if bankroll <= 0 {
				bankroll = 0
				break
			}
		}
		distribution[i] = bankroll
	}

	sorted := append([]float64{}, distribution...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(distribution, nil)
	if len(distribution) < 2 {
		std = 0
	}
	initial := cfg.InitialBankroll

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanReturn:          (mean - initial) / initial,
		StdReturn:           std / initial,
		VaR95:               (stat.Quantile(0.05, stat.Empirical, sorted, nil) - initial) / initial,
		VaR99:               (stat.Quantile(0.01, stat.Empirical, sorted, nil) - initial) / initial,
		ProbabilityOfProfit: fractionAbove(distribution, initial),
		ProbabilityOfRuin:   1 - fractionAbove(distribution, 0),
		ConfidenceIntervals: CalculateConfidenceIntervals(sorted, []float64{0.9, 0.95, 0.99}),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals returns the width of the central interval at
// each level. sorted must be in ascending order.
func CalculateConfidenceIntervals(sorted []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64, len(levels))
	if len(sorted) == 0 {
		return results
	}
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := stat.Quantile(p, stat.Empirical, sorted, nil)
		high := stat.Quantile(1.0-p, stat.Empirical, sorted, nil)
		results[formatPercent(level)] = high - low
	}
	return results
}

// ToJSON exports the monte carlo result
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func fractionAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
