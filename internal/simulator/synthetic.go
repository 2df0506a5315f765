package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
)

const minBookOdds = 1.01

// RatingConfig describes a randomly drawn league
type RatingConfig struct {
	Teams         int
	AttackSpread  float64
	DefenceSpread float64
	Rho           float64
	HomeAdvantage float64
}

// GenerateParams draws a rating set with attacks centred on one and defences
// centred on minus one, so a typical fixture has about exp(gamma) home goals.
func GenerateParams(cfg RatingConfig, rng *rand.Rand) (*dixoncoles.Params, error) {
	if cfg.Teams < 2 {
		return nil, fmt.Errorf("a league needs at least 2 teams, got %d", cfg.Teams)
	}
	p := &dixoncoles.Params{
		Attack:        make(map[string]float64, cfg.Teams),
		Defence:       make(map[string]float64, cfg.Teams),
		Rho:           cfg.Rho,
		HomeAdvantage: cfg.HomeAdvantage,
	}
	for i := 0; i < cfg.Teams; i++ {
		team := fmt.Sprintf("Team %02d", i+1)
		p.Attack[team] = 1 + cfg.AttackSpread*(2*rng.Float64()-1)
		p.Defence[team] = -1 + cfg.DefenceSpread*(2*rng.Float64()-1)
	}
	return p, nil
}

// LeagueConfig controls synthetic league generation
type LeagueConfig struct {
	Seasons   int
	MaxGoals  int
	Div       string
	StartDate time.Time
	RoundGap  time.Duration
	// WithOdds attaches closing odds built from the model probabilities
	WithOdds bool
	Margin   float64
}

// GenerateLeague plays Seasons double round-robins under params, sampling
// every scoreline from the fixture's score matrix. Rounds are numbered so the
// latest round has TimeDiff 0 and each earlier round one more.
func GenerateLeague(params *dixoncoles.Params, cfg LeagueConfig, rng *rand.Rand) ([]models.Match, error) {
	if cfg.Seasons < 1 {
		return nil, fmt.Errorf("seasons must be at least 1, got %d", cfg.Seasons)
	}
	if cfg.MaxGoals <= 0 {
		cfg.MaxGoals = DefaultMaxGoals
	}
	if cfg.RoundGap <= 0 {
		cfg.RoundGap = 7 * 24 * time.Hour
	}
	if cfg.Margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %g", cfg.Margin)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	teams := params.Teams()
	if len(teams) < 2 {
		return nil, fmt.Errorf("a league needs at least 2 teams, got %d", len(teams))
	}

	schedule := doubleRoundRobin(teams)
	totalRounds := cfg.Seasons * len(schedule)
	matrices := make(map[[2]string]*ScoreMatrix)

	matches := make([]models.Match, 0, totalRounds*len(schedule[0]))
	for k := 0; k < totalRounds; k++ {
		for _, fixture := range schedule[k%len(schedule)] {
			m, ok := matrices[fixture]
			if !ok {
				var err error
				m, err = Simulate(params, fixture[0], fixture[1], cfg.MaxGoals)
				if err != nil {
					return nil, err
				}
				matrices[fixture] = m
			}
			homeGoals, awayGoals := SampleScore(m, rng)
			match := models.Match{
				Div:       cfg.Div,
				Date:      cfg.StartDate.Add(time.Duration(k) * cfg.RoundGap),
				HomeTeam:  fixture[0],
				AwayTeam:  fixture[1],
				HomeGoals: homeGoals,
				AwayGoals: awayGoals,
				TimeDiff:  float64(totalRounds - 1 - k),
			}
			match.Result = match.Outcome()
			if cfg.WithOdds {
				odds := bookOdds(m.Probabilities(), cfg.Margin)
				match.Odds = &odds
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// SampleScore draws a scoreline from the matrix. The draw is taken over the
// mass below the cap so it always lands on a cell.
func SampleScore(m *ScoreMatrix, rng *rand.Rand) (homeGoals, awayGoals int) {
	u := rng.Float64() * m.TotalMass()
	acc := 0.0
	n := m.maxGoals + 1
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			acc += m.probs.At(x, y)
			if u < acc {
				return x, y
			}
		}
	}
	homeGoals, awayGoals, _ = m.MostLikelyScore()
	return homeGoals, awayGoals
}

// doubleRoundRobin schedules every ordered pairing once using the circle
// method; the second half mirrors the first with venues swapped.
func doubleRoundRobin(teams []string) [][][2]string {
	list := append([]string{}, teams...)
	if len(list)%2 == 1 {
		list = append(list, "")
	}
	n := len(list)

	rounds := make([][][2]string, 0, 2*(n-1))
	for r := 0; r < n-1; r++ {
		fixtures := make([][2]string, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := list[i], list[n-1-i]
			if home == "" || away == "" {
				continue
			}
			if (r+i)%2 == 1 {
				home, away = away, home
			}
			fixtures = append(fixtures, [2]string{home, away})
		}
		rounds = append(rounds, fixtures)

		last := list[n-1]
		copy(list[2:], list[1:n-1])
		list[1] = last
	}
	for r := 0; r < n-1; r++ {
		mirrored := make([][2]string, len(rounds[r]))
		for i, f := range rounds[r] {
			mirrored[i] = [2]string{f[1], f[0]}
		}
		rounds = append(rounds, mirrored)
	}
	return rounds
}

// bookOdds prices each outcome at 1/(p*(1+margin)), rounded to two places
func bookOdds(p Probabilities, margin float64) models.MatchOdds {
	price := func(prob float64) float64 {
		if prob <= 0 {
			return 1000
		}
		o := decimal.NewFromFloat(1 / (prob * (1 + margin))).Round(2).InexactFloat64()
		return math.Max(o, minBookOdds)
	}
	return models.MatchOdds{
		Home: price(p.Home),
		Draw: price(p.Draw),
		Away: price(p.Away),
	}
}
