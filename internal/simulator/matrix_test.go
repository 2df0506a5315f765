package simulator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/dixon-coles/internal/models"
)

func TestScoreMatrixZeroRhoIsIndependent(t *testing.T) {
	m, err := NewScoreMatrix(1.7, 0.9, 0, 10)
	require.NoError(t, err)

	home := distuv.Poisson{Lambda: 1.7}
	away := distuv.Poisson{Lambda: 0.9}
	for x := 0; x <= 10; x++ {
		for y := 0; y <= 10; y++ {
			assert.InDelta(t, home.Prob(float64(x))*away.Prob(float64(y)), m.At(x, y), 1e-15)
		}
	}
}

func TestScoreMatrixCornerCorrection(t *testing.T) {
	lambda, mu, rho := 1.4, 1.2, -0.13
	plain, err := NewScoreMatrix(lambda, mu, 0, 10)
	require.NoError(t, err)
	corrected, err := NewScoreMatrix(lambda, mu, rho, 10)
	require.NoError(t, err)

	assert.InDelta(t, plain.At(0, 0)*(1-lambda*mu*rho), corrected.At(0, 0), 1e-15)
	assert.InDelta(t, plain.At(0, 1)*(1+lambda*rho), corrected.At(0, 1), 1e-15)
	assert.InDelta(t, plain.At(1, 0)*(1+mu*rho), corrected.At(1, 0), 1e-15)
	assert.InDelta(t, plain.At(1, 1)*(1-rho), corrected.At(1, 1), 1e-15)
	assert.Equal(t, plain.At(2, 1), corrected.At(2, 1))
	assert.Equal(t, plain.At(0, 2), corrected.At(0, 2))

	// the corner adjustments cancel to first order
	assert.InDelta(t, plain.TotalMass(), corrected.TotalMass(), 1e-12)
}

func TestProbabilitiesSumToOne(t *testing.T) {
	for _, lambda := range []float64{0.3, 1.0, 1.8, 2.9, 4.5} {
		for _, mu := range []float64{0.2, 0.9, 2.2, 4.9} {
			m, err := NewScoreMatrix(lambda, mu, 0, 10)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, m.Probabilities().Sum(), 1e-4, "lambda=%g mu=%g", lambda, mu)
		}
	}
}

func TestProbabilitiesReferenceValues(t *testing.T) {
	m, err := NewScoreMatrix(1.5, 1.0, 0, 10)
	require.NoError(t, err)

	p := m.Probabilities()
	assert.InDelta(t, 0.48795, p.Home, 1e-4)
	assert.InDelta(t, 0.25985, p.Draw, 1e-4)
	assert.InDelta(t, 0.25221, p.Away, 1e-4)
	assert.Equal(t, p.Home, p.For(models.SelectionHome))
	assert.Equal(t, p.Away, p.ForOutcome(models.OutcomeAway))
}

func TestProbabilitiesTriangles(t *testing.T) {
	m, err := NewScoreMatrix(1.2, 1.2, 0, 6)
	require.NoError(t, err)

	// equal rates make home and away wins symmetric
	p := m.Probabilities()
	assert.InDelta(t, p.Home, p.Away, 1e-12)
	assert.InDelta(t, m.TotalMass(), p.Sum(), 1e-12)
}

func TestScoreMatrixMarkets(t *testing.T) {
	m, err := NewScoreMatrix(1.5, 1.0, -0.05, 10)
	require.NoError(t, err)

	over, under := m.OverUnder(2.5)
	assert.InDelta(t, m.TotalMass(), over+under, 1e-12)
	// total goals are Poisson(2.5) before the correction, which keeps mass in the under band
	assert.InDelta(t, 1-distuv.Poisson{Lambda: 2.5}.CDF(2), over, 0.01)

	over, under = m.OverUnder(2)
	assert.Less(t, over+under, m.TotalMass())

	btts := m.BothTeamsToScore()
	expected := (1 - math.Exp(-1.5)) * (1 - math.Exp(-1.0))
	assert.InDelta(t, expected, btts, 0.01)

	home, away := m.ExpectedGoals()
	assert.InDelta(t, 1.5, home, 0.01)
	assert.InDelta(t, 1.0, away, 0.01)

	// negative rho lifts the 1-1 cell above 1-0
	x, y, p := m.MostLikelyScore()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, m.At(1, 1), p)

	assert.Equal(t, 0.0, m.At(11, 0))
	assert.Equal(t, 0.0, m.At(-1, 0))
	lambda, mu := m.Rates()
	assert.Equal(t, 1.5, lambda)
	assert.Equal(t, 1.0, mu)
}

func TestScoreMatrixMatrixIsCopy(t *testing.T) {
	m, err := NewScoreMatrix(1.1, 0.8, 0, 4)
	require.NoError(t, err)

	grid := m.Matrix()
	grid.Set(0, 0, 5)
	assert.NotEqual(t, 5.0, m.At(0, 0))
	rows, cols := grid.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 5, cols)
}

func TestScoreMatrixErrors(t *testing.T) {
	tests := []struct {
		name     string
		lambda   float64
		mu       float64
		rho      float64
		maxGoals int
		target   error
	}{
		{name: "zero lambda", lambda: 0, mu: 1, maxGoals: 10, target: models.ErrNumericDomain},
		{name: "nan mu", lambda: 1, mu: math.NaN(), maxGoals: 10, target: models.ErrNumericDomain},
		{name: "infinite lambda", lambda: math.Inf(1), mu: 1, maxGoals: 10, target: models.ErrNumericDomain},
		{name: "negative corner", lambda: 2, mu: 2, rho: 0.5, maxGoals: 10, target: models.ErrNumericDomain},
		{name: "cap too small", lambda: 1, mu: 1, maxGoals: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScoreMatrix(tt.lambda, tt.mu, tt.rho, tt.maxGoals)
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}
}
