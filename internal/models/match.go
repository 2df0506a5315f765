package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Outcome is a full-time result code (FTR)
type Outcome string

const (
	OutcomeHome Outcome = "H"
	OutcomeDraw Outcome = "D"
	OutcomeAway Outcome = "A"
)

// Selection is the label of a 1X2 bet
type Selection string

const (
	SelectionHome Selection = "Home"
	SelectionDraw Selection = "Draw"
	SelectionAway Selection = "Away"
)

// Outcome returns the full-time result the selection wins on
func (s Selection) Outcome() Outcome {
	switch s {
	case SelectionHome:
		return OutcomeHome
	case SelectionDraw:
		return OutcomeDraw
	case SelectionAway:
		return OutcomeAway
	}
	return ""
}

// MatchOdds holds decimal odds for the three 1X2 outcomes
type MatchOdds struct {
	Home float64 `json:"home" validate:"gt=1"`
	Draw float64 `json:"draw" validate:"gt=1"`
	Away float64 `json:"away" validate:"gt=1"`
}

// For returns the odds offered on a selection
func (o MatchOdds) For(selection Selection) float64 {
	switch selection {
	case SelectionHome:
		return o.Home
	case SelectionDraw:
		return o.Draw
	case SelectionAway:
		return o.Away
	}
	return 0
}

// Match is a single historical result used as estimation input.
// Field names follow the football-data column set (FTHG, FTAG, FTR).
type Match struct {
	Div       string     `json:"div"`
	Date      time.Time  `json:"date"`
	HomeTeam  string     `json:"home_team" validate:"required"`
	AwayTeam  string     `json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeGoals int        `json:"fthg" validate:"gte=0"`
	AwayGoals int        `json:"ftag" validate:"gte=0"`
	TimeDiff  float64    `json:"time_diff" validate:"gte=0"`
	Result    Outcome    `json:"ftr" validate:"omitempty,oneof=H D A"`
	Odds      *MatchOdds `json:"odds,omitempty" validate:"-"`
}

// Outcome returns the recorded result, deriving it from the score when absent
func (m Match) Outcome() Outcome {
	if m.Result != "" {
		return m.Result
	}
	switch {
	case m.HomeGoals > m.AwayGoals:
		return OutcomeHome
	case m.HomeGoals < m.AwayGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func matchValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks a single record against its struct tags
func (m Match) Validate() error {
	if err := matchValidator().Struct(m); err != nil {
		return fmt.Errorf("%w: %s vs %s: %v", ErrInvalidMatch, m.HomeTeam, m.AwayTeam, err)
	}
	return nil
}

// Validate checks that every price is a usable decimal odd
func (o MatchOdds) Validate() error {
	if err := matchValidator().Struct(o); err != nil {
		return fmt.Errorf("%w: %+v", ErrInvalidOdds, o)
	}
	return nil
}

// ValidateMatches validates every record in a dataset. Odds are not checked
// here; a record with a bad price is still a valid result.
func ValidateMatches(matches []Match) error {
	for i := range matches {
		if err := matches[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
