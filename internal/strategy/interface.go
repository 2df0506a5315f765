package strategy

import (
	"github.com/google/uuid"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

// Strategy turns fitted ratings and market odds into a staking decision
type Strategy interface {
	Name() string
	Decide(params *dixoncoles.Params, homeTeam, awayTeam string, odds models.MatchOdds, bankroll float64) (*Decision, error)
	ShouldBet(d *Decision) bool
	GetParameters() map[string]interface{}
}

// ExpectedValues holds the EV of each 1X2 selection
type ExpectedValues struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// For returns the EV of a selection
func (e ExpectedValues) For(selection models.Selection) float64 {
	switch selection {
	case models.SelectionHome:
		return e.Home
	case models.SelectionDraw:
		return e.Draw
	case models.SelectionAway:
		return e.Away
	}
	return 0
}

// Decision is the selected outcome of a fixture and its stake. It is never persisted.
type Decision struct {
	ID             uuid.UUID               `json:"id"`
	HomeTeam       string                  `json:"home_team"`
	AwayTeam       string                  `json:"away_team"`
	Selection      models.Selection        `json:"selection"`
	Stake          float64                 `json:"stake"`
	Odds           float64                 `json:"odds"`
	Probability    float64                 `json:"probability"`
	ExpectedValue  float64                 `json:"expected_value"`
	KellyFraction  float64                 `json:"kelly_fraction"`
	Probabilities  simulator.Probabilities `json:"probabilities"`
	ExpectedValues ExpectedValues          `json:"expected_values"`
}
