package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/dixon-coles/internal/models"
)

// DefaultKellyFraction stakes the full Kelly recommendation
const DefaultKellyFraction = 1.0

// ExpectedValue returns the net return per unit staked, p*odds - 1
func ExpectedValue(odds, probability float64) float64 {
	return probability*odds - 1
}

// KellyStake returns the fractional Kelly stake for a back bet.
// With b = odds-1 and q = 1-p the full Kelly fraction is (b*p - q)/b; it is
// floored at zero, scaled by fraction and applied to bankroll.
func KellyStake(probability, odds, bankroll, fraction float64) (float64, error) {
	if !(odds > 1) || math.IsInf(odds, 0) {
		return 0, fmt.Errorf("%w: got %g", models.ErrInvalidOdds, odds)
	}
	if !(fraction > 0 && fraction <= 1) {
		return 0, fmt.Errorf("%w: got %g", models.ErrInvalidKellyFraction, fraction)
	}
	if !(probability >= 0 && probability <= 1) {
		return 0, fmt.Errorf("%w: got %g", models.ErrInvalidProbability, probability)
	}
	if bankroll < 0 || math.IsNaN(bankroll) {
		return 0, fmt.Errorf("bankroll must not be negative, got %g", bankroll)
	}

	b := odds - 1
	q := 1 - probability
	kelly := (b*probability - q) / b
	if kelly < 0 {
		kelly = 0
	}
	return kelly * fraction * bankroll, nil
}

// BaseStrategy provides shared functionality for strategies
type BaseStrategy struct {
	MinOdds          float64
	MaxOdds          float64
	KellyFraction    float64
	MinEdgeThreshold float64
}

// ValidateOdds ensures odds are within acceptable bounds
func (b *BaseStrategy) ValidateOdds(odds float64) error {
	if !(odds > 1.0) {
		return fmt.Errorf("%w: got %g", models.ErrInvalidOdds, odds)
	}
	if b.MinOdds > 0 && odds < b.MinOdds {
		return fmt.Errorf("%w: %g below minimum %g", models.ErrOddsOutOfRange, odds, b.MinOdds)
	}
	if b.MaxOdds > 0 && odds > b.MaxOdds {
		return fmt.Errorf("%w: %g above maximum %g", models.ErrOddsOutOfRange, odds, b.MaxOdds)
	}
	return nil
}

// ApplyKellyCriterion calculates stake with the strategy's Kelly fraction
func (b *BaseStrategy) ApplyKellyCriterion(probability float64, odds float64, bankroll float64) (float64, error) {
	fraction := b.KellyFraction
	if fraction == 0 {
		fraction = DefaultKellyFraction
	}
	return KellyStake(probability, odds, bankroll, fraction)
}

// ShouldBet reports whether a decision clears the edge threshold with a positive stake
func (b *BaseStrategy) ShouldBet(d *Decision) bool {
	return d != nil && d.Stake > 0 && d.ExpectedValue > b.MinEdgeThreshold
}
