package simulator

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
)

func testParams() *dixoncoles.Params {
	return &dixoncoles.Params{
		Attack:        map[string]float64{"Leeds": 1.2, "Everton": 0.9, "Fulham": 0.9},
		Defence:       map[string]float64{"Leeds": -1.1, "Everton": -0.8, "Fulham": -1.1},
		Rho:           -0.06,
		HomeAdvantage: 0.3,
	}
}

func TestSimulate(t *testing.T) {
	params := testParams()

	m, err := Simulate(params, "Leeds", "Everton", DefaultMaxGoals)
	require.NoError(t, err)

	lambda, mu, err := params.ExpectedGoals("Leeds", "Everton")
	require.NoError(t, err)
	expected, err := NewScoreMatrix(lambda, mu, params.Rho, DefaultMaxGoals)
	require.NoError(t, err)
	assert.Equal(t, expected.Probabilities(), m.Probabilities())
	assert.Equal(t, DefaultMaxGoals, m.MaxGoals())
}

func TestSimulateUnknownTeam(t *testing.T) {
	_, err := Simulate(testParams(), "Leeds", "Burnley", DefaultMaxGoals)
	assert.True(t, errors.Is(err, models.ErrUnknownTeam))

	s := NewSimulator(Config{CacheEnabled: true}, nil)
	_, err = s.Probabilities(testParams(), "Burnley", "Leeds")
	assert.True(t, errors.Is(err, models.ErrUnknownTeam))
}

func TestSimulatorDefaults(t *testing.T) {
	s := NewSimulator(Config{}, nil)
	assert.Equal(t, DefaultMaxGoals, s.MaxGoals())
	assert.Nil(t, s.Cache())
}

func TestSimulatorCache(t *testing.T) {
	s := NewSimulator(Config{MaxGoals: 8, CacheEnabled: true, CacheTTL: time.Minute}, nil)
	params := testParams()

	first, err := s.Simulate(params, "Leeds", "Fulham")
	require.NoError(t, err)
	second, err := s.Simulate(params, "Leeds", "Fulham")
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses, ratio := s.Cache().Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-12)

	// a refit with different values must not reuse the old matrix
	changed := testParams()
	changed.Rho = 0
	third, err := s.Simulate(changed, "Leeds", "Fulham")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, s.Cache().ItemCount())

	s.Cache().Clear()
	assert.Equal(t, 0, s.Cache().ItemCount())
	hits, misses, _ = s.Cache().Stats()
	assert.Zero(t, hits+misses)
}

func TestMatrixCacheSizeLimit(t *testing.T) {
	c := NewMatrixCache(time.Minute, 2)
	m, err := NewScoreMatrix(1, 1, 0, 3)
	require.NoError(t, err)

	c.Set(CacheKey{Fingerprint: "a", HomeTeam: "X", AwayTeam: "Y", MaxGoals: 3}, m)
	c.Set(CacheKey{Fingerprint: "b", HomeTeam: "X", AwayTeam: "Y", MaxGoals: 3}, m)
	c.Set(CacheKey{Fingerprint: "c", HomeTeam: "X", AwayTeam: "Y", MaxGoals: 3}, m)

	assert.LessOrEqual(t, c.ItemCount(), 2)
	assert.NotNil(t, c.Get(CacheKey{Fingerprint: "c", HomeTeam: "X", AwayTeam: "Y", MaxGoals: 3}))
}

func TestSimulatorConcurrentUse(t *testing.T) {
	s := NewSimulator(Config{CacheEnabled: true}, nil)
	params := testParams()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Probabilities(params, "Everton", "Leeds")
			assert.NoError(t, err)
			assert.InDelta(t, 1.0, p.Sum(), 1e-4)
		}()
	}
	wg.Wait()
}
