package dixoncoles_test

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	out := make([]float64, len(values))
	for r, i := range idx {
		out[i] = float64(r)
	}
	return out
}

func spearman(a, b []float64) float64 {
	return stat.Correlation(ranks(a), ranks(b), nil)
}

func TestFitRecoversRatingOrder(t *testing.T) {
	seeds := []int64{1, 2, 3}
	attackCorr, defenceCorr := 0.0, 0.0

	for _, seed := range seeds {
		rng := rand.New(rand.NewSource(seed))
		truth, err := simulator.GenerateParams(simulator.RatingConfig{
			Teams:         6,
			AttackSpread:  0.5,
			DefenceSpread: 0.5,
			Rho:           -0.05,
			HomeAdvantage: 0.25,
		}, rng)
		require.NoError(t, err)

		matches, err := simulator.GenerateLeague(truth, simulator.LeagueConfig{Seasons: 8}, rng)
		require.NoError(t, err)

		solver := dixoncoles.NewSolver(dixoncoles.Options{
			MaxIterations:       1000,
			AllowNonConvergence: true,
			Rand:                rand.New(rand.NewSource(seed)),
		}, nil)
		res, err := solver.Fit(context.Background(), matches)
		require.NoError(t, err)

		teams := truth.Teams()
		require.Equal(t, teams, res.Teams)
		var trueAttack, fitAttack, trueDefence, fitDefence []float64
		for _, team := range teams {
			trueAttack = append(trueAttack, truth.Attack[team])
			fitAttack = append(fitAttack, res.Params.Attack[team])
			trueDefence = append(trueDefence, truth.Defence[team])
			fitDefence = append(fitDefence, res.Params.Defence[team])
		}
		attackCorr += spearman(trueAttack, fitAttack)
		defenceCorr += spearman(trueDefence, fitDefence)
	}

	assert.Greater(t, attackCorr/float64(len(seeds)), 0.6)
	assert.Greater(t, defenceCorr/float64(len(seeds)), 0.6)
}
