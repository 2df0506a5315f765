package backtest

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dixon-coles/internal/models"
)

// RunResult bundles a full evaluation: decay search, replay at the chosen
// rate and the derived performance figures
type RunResult struct {
	Strategy   string             `json:"strategy"`
	Search     *DecaySearchResult `json:"search"`
	Replay     *ReplayResult      `json:"replay"`
	Metrics    Metrics            `json:"metrics"`
	MonteCarlo *MonteCarloResult  `json:"monte_carlo,omitempty"`
}

// Run searches the configured decay grid, replays the betting strategy at the
// best rate and summarises the resulting ledger
func (e *Engine) Run(ctx context.Context, matches []models.Match) (*RunResult, error) {
	e.logger.WithFields(logrus.Fields{
		"matches": len(matches),
		"rates":   len(e.config.DecayRates),
	}).Info("Starting backtest run")

	search, err := e.RunDecaySearch(ctx, matches)
	if err != nil {
		return nil, err
	}
	replay, err := e.Replay(ctx, matches, search.BestDecay)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Strategy: e.strategy.Name(),
		Search:   search,
		Replay:   replay,
		Metrics:  CalculateMetrics(replay.State),
	}
	result.Metrics.ParameterHash = HashParameters(e.strategy.GetParameters())

	if e.config.MonteCarloIterations > 0 && len(replay.State.Bets) > 0 {
		mc, err := RunMonteCarlo(ctx, replay.State.Bets, MonteCarloConfig{
			Iterations:      e.config.MonteCarloIterations,
			Seed:            e.config.Seed,
			InitialBankroll: e.config.InitialBankroll,
		})
		if err != nil {
			return nil, err
		}
		result.MonteCarlo = &mc
	}
	return result, nil
}
