package dixoncoles

import (
	"fmt"
	"sort"

	"github.com/yourusername/dixon-coles/internal/models"
)

// Constraint pins the sum of the first Count attack parameters (teams in
// sorted order) to Total. The attack ratings can all shift up while the
// defence ratings shift down without changing the likelihood, so one such
// constraint is needed for a unique optimum.
type Constraint struct {
	Count int
	Total float64
}

// DefaultConstraint pins the mean attack rating of n teams to one
func DefaultConstraint(n int) Constraint {
	return Constraint{Count: n, Total: float64(n)}
}

// layout maps between the full parameter vector
// [attack_1..attack_n, defence_1..defence_n, rho, gamma]
// and the free vector handed to the optimiser, which omits the last pinned
// attack value because the constraint determines it.
type layout struct {
	teams  []string
	index  map[string]int
	n      int
	count  int
	total  float64
	pinned int
}

func newLayout(teams []string, constraint Constraint) (layout, error) {
	n := len(teams)
	if constraint.Count < 1 || constraint.Count > n {
		return layout{}, fmt.Errorf("%w: count %d outside [1, %d]", models.ErrInvalidConstraint, constraint.Count, n)
	}
	index := make(map[string]int, n)
	for i, team := range teams {
		index[team] = i
	}
	return layout{
		teams:  teams,
		index:  index,
		n:      n,
		count:  constraint.Count,
		total:  constraint.Total,
		pinned: constraint.Count - 1,
	}, nil
}

func (l layout) fullSize() int { return 2*l.n + 2 }

func (l layout) rhoIndex() int { return 2 * l.n }

func (l layout) gammaIndex() int { return 2*l.n + 1 }

// expand rebuilds the full vector from the free vector
func (l layout) expand(free []float64) []float64 {
	full := make([]float64, l.fullSize())
	copy(full[:l.pinned], free[:l.pinned])
	copy(full[l.pinned+1:], free[l.pinned:])
	sum := 0.0
	for i := 0; i < l.count; i++ {
		if i != l.pinned {
			sum += full[i]
		}
	}
	full[l.pinned] = l.total - sum
	return full
}

// reduce drops the pinned value from a full vector
func (l layout) reduce(full []float64) []float64 {
	free := make([]float64, 0, l.fullSize()-1)
	free = append(free, full[:l.pinned]...)
	free = append(free, full[l.pinned+1:]...)
	return free
}

// reduceGradient applies the chain rule through expand
func (l layout) reduceGradient(dst, full []float64) {
	pinnedGrad := full[l.pinned]
	j := 0
	for i, g := range full {
		if i == l.pinned {
			continue
		}
		if i < l.count {
			g -= pinnedGrad
		}
		dst[j] = g
		j++
	}
}

// params converts a full vector into a rating set
func (l layout) params(full []float64) *Params {
	p := &Params{
		Attack:        make(map[string]float64, l.n),
		Defence:       make(map[string]float64, l.n),
		Rho:           full[l.rhoIndex()],
		HomeAdvantage: full[l.gammaIndex()],
	}
	for i, team := range l.teams {
		p.Attack[team] = full[i]
		p.Defence[team] = full[l.n+i]
	}
	return p
}

// teamSet returns the sorted teams of a dataset, failing when the home and
// away team sets differ: a team never seen on one side cannot be rated.
func teamSet(matches []models.Match) ([]string, error) {
	home := make(map[string]struct{})
	away := make(map[string]struct{})
	for _, m := range matches {
		home[m.HomeTeam] = struct{}{}
		away[m.AwayTeam] = struct{}{}
	}
	homeTeams := sortedKeys(home)
	awayTeams := sortedKeys(away)
	if len(homeTeams) != len(awayTeams) {
		return nil, fmt.Errorf("%w: %d home teams, %d away teams", models.ErrInconsistentData, len(homeTeams), len(awayTeams))
	}
	for i := range homeTeams {
		if homeTeams[i] != awayTeams[i] {
			return nil, fmt.Errorf("%w: home team %q vs away team %q", models.ErrInconsistentData, homeTeams[i], awayTeams[i])
		}
	}
	return homeTeams, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
