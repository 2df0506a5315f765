package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dixon-coles/internal/models"
)

func TestDoubleRoundRobin(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		teams := make([]string, n)
		for i := range teams {
			teams[i] = string(rune('A' + i))
		}

		rounds := doubleRoundRobin(teams)
		seen := make(map[[2]string]int)
		for _, round := range rounds {
			playing := make(map[string]bool)
			for _, f := range round {
				assert.NotEqual(t, f[0], f[1])
				assert.False(t, playing[f[0]] || playing[f[1]], "team plays twice in a round")
				playing[f[0]], playing[f[1]] = true, true
				seen[f]++
			}
		}
		assert.Len(t, seen, n*(n-1), "n=%d", n)
		for f, count := range seen {
			assert.Equal(t, 1, count, "fixture %v", f)
		}
	}
}

func TestGenerateLeague(t *testing.T) {
	params := testParams()
	start := time.Date(2023, 8, 5, 15, 0, 0, 0, time.UTC)

	matches, err := GenerateLeague(params, LeagueConfig{Seasons: 2, Div: "E0", StartDate: start, WithOdds: true, Margin: 0.05}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// three teams: six fixtures per season over six rounds with a bye
	require.Len(t, matches, 12)
	require.NoError(t, models.ValidateMatches(matches))

	assert.Equal(t, 0.0, matches[len(matches)-1].TimeDiff)
	assert.Equal(t, start, matches[0].Date)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].TimeDiff, matches[i-1].TimeDiff)
		assert.False(t, matches[i].Date.Before(matches[i-1].Date))
	}

	for _, m := range matches {
		assert.Equal(t, "E0", m.Div)
		assert.Equal(t, m.Outcome(), m.Result)
		require.NotNil(t, m.Odds)
		implied := 1/m.Odds.Home + 1/m.Odds.Draw + 1/m.Odds.Away
		assert.InDelta(t, 1.05, implied, 0.02)
	}
}

func TestGenerateLeagueDeterministic(t *testing.T) {
	params := testParams()
	cfg := LeagueConfig{Seasons: 3}

	a, err := GenerateLeague(params, cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := GenerateLeague(params, cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Nil(t, a[0].Odds)
}

func TestGenerateLeagueErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := GenerateLeague(testParams(), LeagueConfig{Seasons: 0}, rng)
	assert.Error(t, err)

	_, err = GenerateLeague(testParams(), LeagueConfig{Seasons: 1, Margin: -0.1}, rng)
	assert.Error(t, err)

	broken := testParams()
	delete(broken.Defence, "Leeds")
	_, err = GenerateLeague(broken, LeagueConfig{Seasons: 1}, rng)
	assert.Error(t, err)
}

func TestGenerateParams(t *testing.T) {
	params, err := GenerateParams(RatingConfig{Teams: 6, AttackSpread: 0.3, DefenceSpread: 0.2, Rho: -0.05, HomeAdvantage: 0.25}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	require.Len(t, params.Teams(), 6)
	assert.Equal(t, "Team 01", params.Teams()[0])
	for _, team := range params.Teams() {
		assert.InDelta(t, 1.0, params.Attack[team], 0.3)
		assert.InDelta(t, -1.0, params.Defence[team], 0.2)
	}
	assert.Equal(t, -0.05, params.Rho)

	_, err = GenerateParams(RatingConfig{Teams: 1}, rand.New(rand.NewSource(3)))
	assert.Error(t, err)
}

func TestSampleScoreFrequencies(t *testing.T) {
	m, err := NewScoreMatrix(1.5, 1.0, -0.05, 10)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))

	const draws = 20000
	counts := make(map[[2]int]int)
	for i := 0; i < draws; i++ {
		x, y := SampleScore(m, rng)
		counts[[2]int{x, y}]++
	}

	for _, cell := range [][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 1}} {
		freq := float64(counts[cell]) / draws
		assert.InDelta(t, m.At(cell[0], cell[1]), freq, 0.015, "cell %v", cell)
	}
}

func TestBookOdds(t *testing.T) {
	odds := bookOdds(Probabilities{Home: 0.5, Draw: 0.25, Away: 0.25}, 0)
	assert.Equal(t, models.MatchOdds{Home: 2, Draw: 4, Away: 4}, odds)

	odds = bookOdds(Probabilities{Home: 0.999, Draw: 0.001, Away: 0}, 0.1)
	assert.Equal(t, minBookOdds, odds.Home)
	assert.Equal(t, 1000.0, odds.Away)
}
