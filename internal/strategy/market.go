package strategy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

// MarginMethod selects how the bookmaker margin is removed from odds
type MarginMethod string

const (
	// MarginEqual subtracts an equal share of the overround from each outcome
	MarginEqual MarginMethod = "equal"
	// MarginPower raises implied probabilities to the power that makes them sum to one
	MarginPower MarginMethod = "power"
)

// minPowerExponent keeps the power method away from the degenerate k=0 solution
const minPowerExponent = 0.001

// ImpliedProbabilities converts decimal odds to raw implied probabilities
func ImpliedProbabilities(odds ...float64) ([]float64, error) {
	implied := make([]float64, len(odds))
	for i, o := range odds {
		if !(o > 1) || math.IsInf(o, 0) {
			return nil, fmt.Errorf("%w: got %g", models.ErrInvalidOdds, o)
		}
		implied[i] = 1 / o
	}
	return implied, nil
}

// Overround returns the book percentage above 100 implied by odds. It is
// negative when the implied probabilities sum to less than one.
func Overround(odds ...float64) (float64, error) {
	implied, err := ImpliedProbabilities(odds...)
	if err != nil {
		return 0, err
	}
	return (floats.Sum(implied) - 1) * 100, nil
}

// ExchangeOverround is Overround after commission is taken from winnings.
// commission is a fraction, 0.02 for two percent.
func ExchangeOverround(commission float64, odds ...float64) (float64, error) {
	if commission < 0 || commission >= 1 || math.IsNaN(commission) {
		return 0, fmt.Errorf("commission must be in [0, 1), got %g", commission)
	}
	net := make([]float64, len(odds))
	for i, o := range odds {
		if !(o > 1) {
			return 0, fmt.Errorf("%w: got %g", models.ErrInvalidOdds, o)
		}
		net[i] = (o-1)*(1-commission) + 1
	}
	return Overround(net...)
}

// FairProbabilities strips the margin from 1X2 odds
func FairProbabilities(odds models.MatchOdds, method MarginMethod) (simulator.Probabilities, error) {
	var (
		fair []float64
		err  error
	)
	switch method {
	case MarginEqual, "":
		fair, err = TrueProbabilitiesEqual(odds.Home, odds.Draw, odds.Away)
	case MarginPower:
		fair, err = TrueProbabilitiesPower(odds.Home, odds.Draw, odds.Away)
	default:
		return simulator.Probabilities{}, fmt.Errorf("unknown margin method %q", method)
	}
	if err != nil {
		return simulator.Probabilities{}, err
	}
	return simulator.Probabilities{Home: fair[0], Draw: fair[1], Away: fair[2]}, nil
}

// TrueProbabilitiesEqual removes the overround in equal parts. Long prices on
// a heavily margined book can come out negative.
func TrueProbabilitiesEqual(odds ...float64) ([]float64, error) {
	implied, err := ImpliedProbabilities(odds...)
	if err != nil {
		return nil, err
	}
	if len(implied) == 0 {
		return implied, nil
	}
	adjustment := (floats.Sum(implied) - 1) / float64(len(implied))
	floats.AddConst(-adjustment, implied)
	return implied, nil
}

// TrueProbabilitiesPower finds k with sum(p_i^k) = 1 and returns p_i^k
func TrueProbabilitiesPower(odds ...float64) ([]float64, error) {
	implied, err := ImpliedProbabilities(odds...)
	if err != nil {
		return nil, err
	}
	if len(implied) == 0 {
		return implied, nil
	}

	powered := make([]float64, len(implied))
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			k := x[0]
			if k < minPowerExponent {
				return math.Inf(1)
			}
			for i, p := range implied {
				powered[i] = math.Pow(p, k)
			}
			d := 1 - floats.Sum(powered)
			return d * d
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 1000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-18,
			Relative:   1e-14,
			Iterations: 30,
		},
	}

	res, err := optimize.Minimize(problem, []float64{1}, settings, &optimize.NelderMead{})
	if res == nil {
		return nil, fmt.Errorf("power margin fit failed: %w", err)
	}
	if !dixoncoles.IsConverged(res.Status) {
		return nil, fmt.Errorf("%w: power margin fit status %s", models.ErrNotConverged, res.Status)
	}

	k := res.X[0]
	for i, p := range implied {
		implied[i] = math.Pow(p, k)
	}
	return implied, nil
}
