// Package simulator turns fitted ratings into scoreline probabilities and
// the markets derived from them.
package simulator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
)

// Probabilities is a 1X2 probability set
type Probabilities struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Sum returns the total probability mass of the three outcomes
func (p Probabilities) Sum() float64 {
	return p.Home + p.Draw + p.Away
}

// For returns the probability of a selection winning
func (p Probabilities) For(selection models.Selection) float64 {
	switch selection {
	case models.SelectionHome:
		return p.Home
	case models.SelectionDraw:
		return p.Draw
	case models.SelectionAway:
		return p.Away
	}
	return 0
}

// ForOutcome returns the probability of a full-time result
func (p Probabilities) ForOutcome(outcome models.Outcome) float64 {
	switch outcome {
	case models.OutcomeHome:
		return p.Home
	case models.OutcomeDraw:
		return p.Draw
	case models.OutcomeAway:
		return p.Away
	}
	return 0
}

// ScoreMatrix holds the probability of every scoreline up to a goal cap.
// Rows are home goals and columns away goals. Mass beyond the cap is dropped,
// so the cells sum to slightly less than one.
type ScoreMatrix struct {
	probs    *mat.Dense
	maxGoals int
	lambda   float64
	mu       float64
}

// NewScoreMatrix builds the independent Poisson grid for the two scoring
// rates and applies the low-score correction to its 2x2 corner.
func NewScoreMatrix(lambda, mu, rho float64, maxGoals int) (*ScoreMatrix, error) {
	if maxGoals < 1 {
		return nil, fmt.Errorf("max goals must be at least 1, got %d", maxGoals)
	}
	if !(lambda > 0) || !(mu > 0) || math.IsInf(lambda, 0) || math.IsInf(mu, 0) {
		return nil, fmt.Errorf("%w: scoring rates lambda=%g mu=%g", models.ErrNumericDomain, lambda, mu)
	}

	n := maxGoals + 1
	home := poissonVector(lambda, n)
	away := poissonVector(mu, n)

	probs := mat.NewDense(n, n, nil)
	probs.Outer(1, home, away)

	for x := 0; x <= 1; x++ {
		for y := 0; y <= 1; y++ {
			v := probs.At(x, y) * dixoncoles.RhoCorrection(x, y, lambda, mu, rho)
			if v < 0 || math.IsNaN(v) {
				return nil, fmt.Errorf("%w: corrected probability %g for %d-%d (rho=%g)", models.ErrNumericDomain, v, x, y, rho)
			}
			probs.Set(x, y, v)
		}
	}

	return &ScoreMatrix{probs: probs, maxGoals: maxGoals, lambda: lambda, mu: mu}, nil
}

func poissonVector(rate float64, n int) *mat.VecDense {
	dist := distuv.Poisson{Lambda: rate}
	v := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		v.SetVec(k, dist.Prob(float64(k)))
	}
	return v
}

// MaxGoals returns the goal cap
func (m *ScoreMatrix) MaxGoals() int { return m.maxGoals }

// Rates returns the scoring rates the matrix was built from
func (m *ScoreMatrix) Rates() (lambda, mu float64) { return m.lambda, m.mu }

// At returns the probability of a home-away scoreline, zero beyond the cap
func (m *ScoreMatrix) At(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > m.maxGoals || awayGoals > m.maxGoals {
		return 0
	}
	return m.probs.At(homeGoals, awayGoals)
}

// Matrix returns a copy of the underlying grid
func (m *ScoreMatrix) Matrix() *mat.Dense {
	return mat.DenseCopyOf(m.probs)
}

// Probabilities sums the grid into home win (below the diagonal), draw
// (the diagonal) and away win (above the diagonal).
func (m *ScoreMatrix) Probabilities() Probabilities {
	var p Probabilities
	p.Draw = mat.Trace(m.probs)
	n := m.maxGoals + 1
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			switch {
			case x > y:
				p.Home += m.probs.At(x, y)
			case x < y:
				p.Away += m.probs.At(x, y)
			}
		}
	}
	return p
}

// TotalMass returns the probability captured below the cap
func (m *ScoreMatrix) TotalMass() float64 {
	return mat.Sum(m.probs)
}

// OverUnder returns the probability of the total goals landing above and
// below line. Integer lines leave the push outside both.
func (m *ScoreMatrix) OverUnder(line float64) (over, under float64) {
	n := m.maxGoals + 1
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			total := float64(x + y)
			switch {
			case total > line:
				over += m.probs.At(x, y)
			case total < line:
				under += m.probs.At(x, y)
			}
		}
	}
	return over, under
}

// BothTeamsToScore returns the probability that each side scores at least once
func (m *ScoreMatrix) BothTeamsToScore() float64 {
	n := m.maxGoals + 1
	sum := 0.0
	for x := 1; x < n; x++ {
		for y := 1; y < n; y++ {
			sum += m.probs.At(x, y)
		}
	}
	return sum
}

// ExpectedGoals returns the mean home and away goals under the grid
func (m *ScoreMatrix) ExpectedGoals() (home, away float64) {
	n := m.maxGoals + 1
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			p := m.probs.At(x, y)
			home += float64(x) * p
			away += float64(y) * p
		}
	}
	return home, away
}

// MostLikelyScore returns the modal scoreline
func (m *ScoreMatrix) MostLikelyScore() (homeGoals, awayGoals int, p float64) {
	n := m.maxGoals + 1
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if v := m.probs.At(x, y); v > p {
				homeGoals, awayGoals, p = x, y, v
			}
		}
	}
	return homeGoals, awayGoals, p
}
