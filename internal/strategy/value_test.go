package strategy

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

func newTestStrategy(t *testing.T, fraction float64) (*ValueStrategy, *bytes.Buffer) {
	t.Helper()
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	s, err := NewValueStrategy(simulator.NewSimulator(simulator.Config{CacheEnabled: true}, log), fraction, log)
	require.NoError(t, err)
	return s, buf
}

func TestSelectOutcome(t *testing.T) {
	tests := []struct {
		name     string
		evs      ExpectedValues
		expected models.Selection
	}{
		{name: "home strictly best", evs: ExpectedValues{Home: 0.2, Draw: -0.1, Away: 0.1}, expected: models.SelectionHome},
		{name: "draw strictly best", evs: ExpectedValues{Home: -0.2, Draw: 0.05, Away: 0.01}, expected: models.SelectionDraw},
		{name: "away strictly best", evs: ExpectedValues{Home: -0.2, Draw: 0.05, Away: 0.3}, expected: models.SelectionAway},
		{name: "home and away tied", evs: ExpectedValues{Home: 0.1, Draw: 0, Away: 0.1}, expected: models.SelectionAway},
		{name: "home and draw tied", evs: ExpectedValues{Home: 0.1, Draw: 0.1, Away: 0}, expected: models.SelectionDraw},
		{name: "draw and away tied", evs: ExpectedValues{Home: 0, Draw: 0.1, Away: 0.1}, expected: models.SelectionAway},
		{name: "all tied", evs: ExpectedValues{Home: -0.05, Draw: -0.05, Away: -0.05}, expected: models.SelectionAway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, err := SelectOutcome(tt.evs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, selection)
		})
	}
}

func TestSelectOutcomeNaN(t *testing.T) {
	_, err := SelectOutcome(ExpectedValues{Home: math.NaN(), Draw: 0.1, Away: 0})
	assert.True(t, errors.Is(err, models.ErrNumericDomain))
}

func TestNewValueStrategy(t *testing.T) {
	s, err := NewValueStrategy(nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultKellyFraction, s.KellyFraction)
	assert.Equal(t, "dixon_coles_value", s.Name())
	assert.Equal(t, simulator.DefaultMaxGoals, s.GetParameters()["max_goals"])

	_, err = NewValueStrategy(nil, 1.5, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidKellyFraction))
	_, err = NewValueStrategy(nil, -0.5, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidKellyFraction))
}

func TestDecideEndToEnd(t *testing.T) {
	s, buf := newTestStrategy(t, 1.0)
	params, err := dixoncoles.ParamsFromRates("Home", "Away", 1.5, 1.0, 0)
	require.NoError(t, err)

	d, err := s.Decide(params, "Home", "Away", models.MatchOdds{Home: 2.5, Draw: 3.2, Away: 3.0}, 1000)
	require.NoError(t, err)

	assert.Equal(t, models.SelectionHome, d.Selection)
	assert.InDelta(t, 0.48795, d.Probabilities.Home, 1e-4)
	assert.InDelta(t, 0.25985, d.Probabilities.Draw, 1e-4)
	assert.InDelta(t, 0.25221, d.Probabilities.Away, 1e-4)

	p := d.Probabilities.Home
	b := 2.5 - 1
	q := 1 - p
	expected := (b*p - q) / b * 1.0 * 1000
	assert.Equal(t, expected, d.Stake)
	assert.Equal(t, p, d.Probability)
	assert.Equal(t, 2.5, d.Odds)
	assert.InDelta(t, p*2.5-1, d.ExpectedValue, 1e-15)
	assert.Equal(t, "Home", d.HomeTeam)
	assert.Contains(t, buf.String(), "Strategy decision made")
}

func TestDecideFractionalKelly(t *testing.T) {
	full, _ := newTestStrategy(t, 1.0)
	quarter, _ := newTestStrategy(t, 0.25)
	params, err := dixoncoles.ParamsFromRates("Home", "Away", 1.5, 1.0, 0)
	require.NoError(t, err)
	odds := models.MatchOdds{Home: 2.5, Draw: 3.2, Away: 3.0}

	a, err := full.Decide(params, "Home", "Away", odds, 1000)
	require.NoError(t, err)
	b, err := quarter.Decide(params, "Home", "Away", odds, 1000)
	require.NoError(t, err)
	assert.InEpsilon(t, a.Stake/4, b.Stake, 1e-12)
}

func TestDecideNoEdgeStakesZero(t *testing.T) {
	s, _ := newTestStrategy(t, 1.0)
	probs := simulator.Probabilities{Home: 0.4, Draw: 0.3, Away: 0.3}

	d, err := s.Evaluate(probs, models.MatchOdds{Home: 2.0, Draw: 3.0, Away: 3.0}, 500)
	require.NoError(t, err)
	// draw and away tie on the best (negative) EV
	assert.Equal(t, models.SelectionAway, d.Selection)
	assert.Equal(t, 0.0, d.Stake)
	assert.False(t, s.ShouldBet(d))
}

func TestDecideErrors(t *testing.T) {
	s, _ := newTestStrategy(t, 1.0)
	params, err := dixoncoles.ParamsFromRates("Home", "Away", 1.5, 1.0, 0)
	require.NoError(t, err)

	_, err = s.Decide(params, "Home", "Visitors", models.MatchOdds{Home: 2, Draw: 3, Away: 4}, 100)
	assert.True(t, errors.Is(err, models.ErrUnknownTeam))

	_, err = s.Decide(params, "Home", "Away", models.MatchOdds{Home: 2, Draw: 1, Away: 4}, 100)
	assert.True(t, errors.Is(err, models.ErrInvalidOdds))
}

func TestEvaluateOddsRangeAppliesToSelection(t *testing.T) {
	s, _ := newTestStrategy(t, 1.0)
	s.MinOdds = 1.2
	s.MaxOdds = 15

	// the away price is outside the range but away is not the value side
	probs := simulator.Probabilities{Home: 0.80, Draw: 0.15, Away: 0.05}
	d, err := s.Evaluate(probs, models.MatchOdds{Home: 1.25, Draw: 8.0, Away: 16}, 1000)
	require.NoError(t, err)
	assert.Equal(t, models.SelectionDraw, d.Selection)
	assert.Equal(t, 8.0, d.Odds)
	assert.InDelta(t, 0.2, d.ExpectedValue, 1e-12)
	assert.InDelta(t, (7*0.15-0.85)/7*1000, d.Stake, 1e-9)

	// the selected price itself is out of range
	probs = simulator.Probabilities{Home: 0.80, Draw: 0.12, Away: 0.08}
	_, err = s.Evaluate(probs, models.MatchOdds{Home: 1.25, Draw: 9.0, Away: 16}, 1000)
	assert.ErrorIs(t, err, models.ErrOddsOutOfRange)

	// prices at or below one are rejected on every outcome
	_, err = s.Evaluate(probs, models.MatchOdds{Home: 1.25, Draw: 9.0, Away: 1.0}, 1000)
	assert.ErrorIs(t, err, models.ErrInvalidOdds)
}
