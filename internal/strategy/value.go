package strategy

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/logger"
	"github.com/yourusername/dixon-coles/internal/metrics"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

// ValueStrategy backs the 1X2 selection with the highest expected value
// under the model and sizes it by fractional Kelly.
type ValueStrategy struct {
	BaseStrategy
	NameValue string
	sim       *simulator.Simulator
	logger    *logger.StrategyLogger
}

// NewValueStrategy creates a value strategy. A zero fraction selects full Kelly.
func NewValueStrategy(sim *simulator.Simulator, kellyFraction float64, log *logrus.Logger) (*ValueStrategy, error) {
	if kellyFraction == 0 {
		kellyFraction = DefaultKellyFraction
	}
	if !(kellyFraction > 0 && kellyFraction <= 1) {
		return nil, fmt.Errorf("%w: got %g", models.ErrInvalidKellyFraction, kellyFraction)
	}
	if sim == nil {
		sim = simulator.NewSimulator(simulator.Config{}, log)
	}
	return &ValueStrategy{
		BaseStrategy: BaseStrategy{
			KellyFraction: kellyFraction,
		},
		NameValue: "dixon_coles_value",
		sim:       sim,
		logger:    logger.NewStrategyLogger(log),
	}, nil
}

// Name returns strategy name
func (s *ValueStrategy) Name() string {
	return s.NameValue
}

// GetParameters returns strategy parameters
func (s *ValueStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"kelly_fraction":     s.KellyFraction,
		"min_edge_threshold": s.MinEdgeThreshold,
		"max_goals":          s.sim.MaxGoals(),
	}
}

// Decide prices homeTeam v awayTeam under params and returns the
// selection with the highest expected value at the given odds.
func (s *ValueStrategy) Decide(params *dixoncoles.Params, homeTeam, awayTeam string, odds models.MatchOdds, bankroll float64) (*Decision, error) {
	probs, err := s.sim.Probabilities(params, homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}
	d, err := s.Evaluate(probs, odds, bankroll)
	if err != nil {
		return nil, err
	}
	d.HomeTeam = homeTeam
	d.AwayTeam = awayTeam

	metrics.RecordDecision(string(d.Selection), d.Stake)
	s.logger.LogStrategyDecision(d.ID.String(), homeTeam, awayTeam, string(d.Selection),
		d.Probability, d.Odds, d.ExpectedValue, d.KellyFraction, d.Stake)
	return d, nil
}

// Evaluate picks a selection from ready-made probabilities. Every price must
// exceed 1; only the selected price has to lie in the configured odds range.
func (s *ValueStrategy) Evaluate(probs simulator.Probabilities, odds models.MatchOdds, bankroll float64) (*Decision, error) {
	if err := odds.Validate(); err != nil {
		return nil, err
	}

	evs := ExpectedValues{
		Home: ExpectedValue(odds.Home, probs.Home),
		Draw: ExpectedValue(odds.Draw, probs.Draw),
		Away: ExpectedValue(odds.Away, probs.Away),
	}
	selection, err := SelectOutcome(evs)
	if err != nil {
		return nil, err
	}

	p := probs.For(selection)
	o := odds.For(selection)
	if err := s.ValidateOdds(o); err != nil {
		return nil, err
	}
	stake, err := s.ApplyKellyCriterion(p, o, bankroll)
	if err != nil {
		return nil, err
	}

	return &Decision{
		ID:             uuid.New(),
		Selection:      selection,
		Stake:          stake,
		Odds:           o,
		Probability:    p,
		ExpectedValue:  evs.For(selection),
		KellyFraction:  s.KellyFraction,
		Probabilities:  probs,
		ExpectedValues: evs,
	}, nil
}

// SelectOutcome returns the selection with the maximal EV. Ties resolve by
// sequential overwrite: Home is taken first, then replaced by Away if Away
// also attains the maximum, otherwise by Draw if Draw does. Away therefore
// beats Draw, which beats Home.
func SelectOutcome(evs ExpectedValues) (models.Selection, error) {
	maxEV := math.Max(evs.Home, math.Max(evs.Away, evs.Draw))

	var selection models.Selection
	if evs.Home == maxEV {
		selection = models.SelectionHome
	}
	if evs.Away == maxEV {
		selection = models.SelectionAway
	} else if evs.Draw == maxEV {
		selection = models.SelectionDraw
	}

	if selection == "" {
		return "", fmt.Errorf("%w: no maximal expected value in %+v", models.ErrNumericDomain, evs)
	}
	return selection, nil
}
