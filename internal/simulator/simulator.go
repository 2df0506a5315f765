package simulator

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
)

// Simulator defaults
const (
	DefaultMaxGoals  = 10
	DefaultCacheTTL  = 10 * time.Minute
	DefaultCacheSize = 10000
)

// Simulate returns the corrected score matrix for homeTeam v awayTeam.
// Teams missing from params yield models.ErrUnknownTeam.
func Simulate(params *dixoncoles.Params, homeTeam, awayTeam string, maxGoals int) (*ScoreMatrix, error) {
	lambda, mu, err := params.ExpectedGoals(homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}
	return NewScoreMatrix(lambda, mu, params.Rho, maxGoals)
}

// Config configures a Simulator
type Config struct {
	MaxGoals     int
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int
}

// Simulator prices fixtures under fitted ratings, memoising score matrices
// per rating set. It is safe for concurrent use.
type Simulator struct {
	maxGoals int
	cache    *MatrixCache
	logger   *logrus.Entry
}

// NewSimulator creates a simulator, filling unset config with defaults
func NewSimulator(cfg Config, logger *logrus.Logger) *Simulator {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.MaxGoals <= 0 {
		cfg.MaxGoals = DefaultMaxGoals
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	s := &Simulator{
		maxGoals: cfg.MaxGoals,
		logger:   logger.WithField("component", "simulator"),
	}
	if cfg.CacheEnabled {
		s.cache = NewMatrixCache(cfg.CacheTTL, cfg.CacheSize)
	}
	return s
}

// MaxGoals returns the goal cap used for every matrix
func (s *Simulator) MaxGoals() int {
	return s.maxGoals
}

// Cache returns the matrix cache, nil when caching is disabled
func (s *Simulator) Cache() *MatrixCache {
	return s.cache
}

// Simulate returns the score matrix for a fixture
func (s *Simulator) Simulate(params *dixoncoles.Params, homeTeam, awayTeam string) (*ScoreMatrix, error) {
	if s.cache == nil {
		return Simulate(params, homeTeam, awayTeam, s.maxGoals)
	}

	key := CacheKey{
		Fingerprint: params.Fingerprint(),
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		MaxGoals:    s.maxGoals,
	}
	if m := s.cache.Get(key); m != nil {
		return m, nil
	}

	m, err := Simulate(params, homeTeam, awayTeam, s.maxGoals)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"home_team": homeTeam,
			"away_team": awayTeam,
		}).Debug("Simulation failed")
		return nil, err
	}
	s.cache.Set(key, m)
	return m, nil
}

// Probabilities returns the 1X2 probabilities for a fixture
func (s *Simulator) Probabilities(params *dixoncoles.Params, homeTeam, awayTeam string) (Probabilities, error) {
	m, err := s.Simulate(params, homeTeam, awayTeam)
	if err != nil {
		return Probabilities{}, err
	}
	return m.Probabilities(), nil
}
