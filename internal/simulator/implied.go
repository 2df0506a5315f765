package simulator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
)

// Starting rates for FitExpectedGoals, a typical league average
const (
	initialHomeGoals = 1.4
	initialAwayGoals = 1.1
	maxImpliedRate   = 10.0
)

// FitExpectedGoals finds the home and away scoring rates whose independent
// Poisson 1X2 probabilities best match target in the least-squares sense.
func FitExpectedGoals(target Probabilities, maxGoals int) (lambda, mu float64, err error) {
	for _, p := range []float64{target.Home, target.Draw, target.Away} {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return 0, 0, fmt.Errorf("%w: got %g", models.ErrInvalidProbability, p)
		}
	}
	if maxGoals <= 0 {
		maxGoals = DefaultMaxGoals
	}

	// search over log rates so both stay positive
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			l, m := math.Exp(x[0]), math.Exp(x[1])
			if l > maxImpliedRate || m > maxImpliedRate {
				return math.Inf(1)
			}
			sm, err := NewScoreMatrix(l, m, 0, maxGoals)
			if err != nil {
				return math.Inf(1)
			}
			p := sm.Probabilities()
			dh, dd, da := p.Home-target.Home, p.Draw-target.Draw, p.Away-target.Away
			return dh*dh + dd*dd + da*da
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 2000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 20,
		},
	}
	x0 := []float64{math.Log(initialHomeGoals), math.Log(initialAwayGoals)}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if res == nil {
		return 0, 0, fmt.Errorf("implied goals fit failed: %w", err)
	}
	if err != nil || !dixoncoles.IsConverged(res.Status) {
		return 0, 0, fmt.Errorf("%w: implied goals fit ended with %s", models.ErrNotConverged, res.Status)
	}
	return math.Exp(res.X[0]), math.Exp(res.X[1]), nil
}
