package dixoncoles

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/dixon-coles/internal/models"
)

// Flat export keys
const (
	attackPrefix  = "attack_"
	defencePrefix = "defence_"
	KeyRho        = "rho"
	KeyHomeAdv    = "home_adv"
)

// Params is a fitted team rating set: per-team attack and defence strengths
// plus the shared score correlation (rho) and home advantage (gamma).
// A lower defence value means a stronger defence.
type Params struct {
	Attack        map[string]float64
	Defence       map[string]float64
	Rho           float64
	HomeAdvantage float64
}

// Teams returns the rated teams in sorted order
func (p *Params) Teams() []string {
	teams := make([]string, 0, len(p.Attack))
	for team := range p.Attack {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// Validate checks that attack and defence ratings cover the same teams
func (p *Params) Validate() error {
	if len(p.Attack) != len(p.Defence) {
		return fmt.Errorf("%w: %d attack ratings but %d defence ratings", models.ErrInconsistentData, len(p.Attack), len(p.Defence))
	}
	for team := range p.Attack {
		if _, ok := p.Defence[team]; !ok {
			return fmt.Errorf("%w: team %q has no defence rating", models.ErrInconsistentData, team)
		}
	}
	return nil
}

// ExpectedGoals returns the scoring rates for a fixture. Unrated teams yield
// ErrUnknownTeam.
func (p *Params) ExpectedGoals(homeTeam, awayTeam string) (lambda, mu float64, err error) {
	homeAttack, ok := p.Attack[homeTeam]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrUnknownTeam, homeTeam)
	}
	awayAttack, ok := p.Attack[awayTeam]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrUnknownTeam, awayTeam)
	}
	homeDefence, ok := p.Defence[homeTeam]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrUnknownTeam, homeTeam)
	}
	awayDefence, ok := p.Defence[awayTeam]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrUnknownTeam, awayTeam)
	}
	lambda, mu = ExpectedGoals(homeAttack, homeDefence, awayAttack, awayDefence, p.HomeAdvantage)
	return lambda, mu, nil
}

// ToMap returns the flat export: attack_<team>, defence_<team>, rho, home_adv
func (p *Params) ToMap() map[string]float64 {
	out := make(map[string]float64, 2*len(p.Attack)+2)
	for team, v := range p.Attack {
		out[attackPrefix+team] = v
	}
	for team, v := range p.Defence {
		out[defencePrefix+team] = v
	}
	out[KeyRho] = p.Rho
	out[KeyHomeAdv] = p.HomeAdvantage
	return out
}

// ParamsFromMap rebuilds a rating set from its flat export
func ParamsFromMap(flat map[string]float64) (*Params, error) {
	p := &Params{
		Attack:  make(map[string]float64),
		Defence: make(map[string]float64),
	}
	rho, ok := flat[KeyRho]
	if !ok {
		return nil, fmt.Errorf("missing %q", KeyRho)
	}
	homeAdv, ok := flat[KeyHomeAdv]
	if !ok {
		return nil, fmt.Errorf("missing %q", KeyHomeAdv)
	}
	p.Rho = rho
	p.HomeAdvantage = homeAdv

	for key, v := range flat {
		switch {
		case strings.HasPrefix(key, attackPrefix):
			p.Attack[strings.TrimPrefix(key, attackPrefix)] = v
		case strings.HasPrefix(key, defencePrefix):
			p.Defence[strings.TrimPrefix(key, defencePrefix)] = v
		case key == KeyRho || key == KeyHomeAdv:
		default:
			return nil, fmt.Errorf("unrecognised parameter %q", key)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalJSON encodes the flat export mapping
func (p *Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// UnmarshalJSON decodes the flat export mapping
func (p *Params) UnmarshalJSON(data []byte) error {
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	parsed, err := ParamsFromMap(flat)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// Fingerprint returns a stable hash of the parameter values. Values are
// formatted exactly, so NaN and infinite ratings hash by position too.
func (p *Params) Fingerprint() string {
	flat := p.ToMap()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hash := sha256.New()
	for _, k := range keys {
		hash.Write([]byte(k))
		hash.Write([]byte{'='})
		hash.Write([]byte(strconv.FormatFloat(flat[k], 'g', -1, 64)))
		hash.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// ParamsFromRates builds a two-team rating set whose fixture homeTeam v
// awayTeam has exactly the given scoring rates.
func ParamsFromRates(homeTeam, awayTeam string, lambda, mu, rho float64) (*Params, error) {
	if lambda <= 0 || mu <= 0 {
		return nil, fmt.Errorf("%w: scoring rates must be positive (lambda=%g mu=%g)", models.ErrNumericDomain, lambda, mu)
	}
	if homeTeam == awayTeam {
		return nil, fmt.Errorf("home and away team must differ")
	}
	return &Params{
		Attack:  map[string]float64{homeTeam: math.Log(lambda), awayTeam: math.Log(mu)},
		Defence: map[string]float64{homeTeam: 0, awayTeam: 0},
		Rho:     rho,
	}, nil
}
