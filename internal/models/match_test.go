package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchValidateIgnoresOdds(t *testing.T) {
	m := Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		HomeGoals: 2,
		AwayGoals: 1,
		TimeDiff:  4,
		Odds:      &MatchOdds{Home: 1.0, Draw: 3.2, Away: 3.0},
	}
	require.NoError(t, m.Validate())
	require.NoError(t, ValidateMatches([]Match{m}))

	m.AwayTeam = "Arsenal"
	assert.ErrorIs(t, ValidateMatches([]Match{m}), ErrInvalidMatch)
}

func TestMatchOddsValidate(t *testing.T) {
	tests := []struct {
		name  string
		odds  MatchOdds
		valid bool
	}{
		{name: "valid", odds: MatchOdds{Home: 2.5, Draw: 3.2, Away: 3.0}, valid: true},
		{name: "even stake back", odds: MatchOdds{Home: 1.0, Draw: 3.2, Away: 3.0}},
		{name: "zero draw", odds: MatchOdds{Home: 2.5, Draw: 0, Away: 3.0}},
		{name: "nan away", odds: MatchOdds{Home: 2.5, Draw: 3.2, Away: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.odds.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOdds)
		})
	}
}
