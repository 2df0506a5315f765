package dixoncoles

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/yourusername/dixon-coles/internal/logger"
	"github.com/yourusername/dixon-coles/internal/metrics"
	"github.com/yourusername/dixon-coles/internal/models"
)

// Method selects the optimisation algorithm
type Method string

const (
	MethodBFGS       Method = "bfgs"
	MethodNelderMead Method = "nelder-mead"
)

// Solver defaults
const (
	DefaultMaxIterations     = 100
	DefaultDecay             = 0.001
	DefaultGradientTolerance = 1e-4
	DefaultFunctionTolerance = 1e-8
	initialHomeAdvantage     = 1.0
)

// Options configures a Solver. Zero values select the defaults.
type Options struct {
	MaxIterations int
	// Display logs every major optimiser iteration at info level
	Display bool
	Method  Method
	// Constraint defaults to DefaultConstraint(N)
	Constraint *Constraint
	// InitialValues must have length 2N+2: attacks, defences, rho, gamma
	InitialValues       []float64
	AllowNonConvergence bool
	// Debug attaches the raw optimiser result to FitResult.Raw
	Debug             bool
	Rand              *rand.Rand
	GradientTolerance float64
	FunctionTolerance float64
}

// FitResult is the outcome of one parameter fit
type FitResult struct {
	ID              uuid.UUID
	Params          *Params
	Teams           []string
	Converged       bool
	Status          string
	Objective       float64
	Iterations      int
	FuncEvaluations int
	Runtime         time.Duration
	Decay           float64
	Matches         int
	Raw             *optimize.Result
}

// LogLikelihood returns the maximised (weighted) log-likelihood
func (r *FitResult) LogLikelihood() float64 {
	return -r.Objective
}

// Solver estimates team ratings by maximum likelihood.
// A Solver owns its random generator and is not safe for concurrent use.
type Solver struct {
	opts   Options
	rng    *rand.Rand
	logger *logger.SolverLogger
}

// NewSolver creates a solver, filling unset options with defaults
func NewSolver(opts Options, log *logrus.Logger) *Solver {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Method == "" {
		opts.Method = MethodBFGS
	}
	if opts.GradientTolerance <= 0 {
		opts.GradientTolerance = DefaultGradientTolerance
	}
	if opts.FunctionTolerance <= 0 {
		opts.FunctionTolerance = DefaultFunctionTolerance
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Solver{
		opts:   opts,
		rng:    rng,
		logger: logger.NewSolverLogger(log),
	}
}

// Options returns the effective solver options
func (s *Solver) Options() Options {
	return s.opts
}

// Fit estimates parameters from matches with every match weighted equally
func (s *Solver) Fit(ctx context.Context, matches []models.Match) (*FitResult, error) {
	return s.fit(ctx, matches, 0)
}

// FitDecayed estimates parameters with each match weighted by exp(-xi*TimeDiff)
func (s *Solver) FitDecayed(ctx context.Context, matches []models.Match, xi float64) (*FitResult, error) {
	if xi < 0 || math.IsNaN(xi) || math.IsInf(xi, 0) {
		return nil, fmt.Errorf("%w: decay rate %g", models.ErrNumericDomain, xi)
	}
	return s.fit(ctx, matches, xi)
}

// observation is a match reduced to team indices
type observation struct {
	home, away int
	homeGoals  int
	awayGoals  int
	timeDiff   float64
}

type objective struct {
	layout layout
	obs    []observation
	decay  float64
	grad   []float64
}

func (o *objective) matchParams(full []float64, ob observation) MatchParams {
	n := o.layout.n
	return MatchParams{
		HomeGoals:     ob.homeGoals,
		AwayGoals:     ob.awayGoals,
		HomeAttack:    full[ob.home],
		HomeDefence:   full[n+ob.home],
		AwayAttack:    full[ob.away],
		AwayDefence:   full[n+ob.away],
		Rho:           full[o.layout.rhoIndex()],
		HomeAdvantage: full[o.layout.gammaIndex()],
		TimeDiff:      ob.timeDiff,
		Decay:         o.decay,
	}
}

// value returns the negative log-likelihood, or +Inf outside the domain
func (o *objective) value(free []float64) float64 {
	full := o.layout.expand(free)
	total := 0.0
	for _, ob := range o.obs {
		ll, err := LogLikelihood(o.matchParams(full, ob))
		if err != nil {
			return math.Inf(1)
		}
		total += ll
	}
	return -total
}

func (o *objective) gradient(dst, free []float64) {
	full := o.layout.expand(free)
	n := o.layout.n
	for i := range o.grad {
		o.grad[i] = 0
	}
	for _, ob := range o.obs {
		mp := o.matchParams(full, ob)
		if _, err := LogLikelihood(mp); err != nil {
			for i := range dst {
				dst[i] = 0
			}
			return
		}
		gLambda, gMu, gRho := logLikelihoodGradient(mp)
		o.grad[ob.home] -= gLambda
		o.grad[n+ob.away] -= gLambda
		o.grad[o.layout.gammaIndex()] -= gLambda
		o.grad[ob.away] -= gMu
		o.grad[n+ob.home] -= gMu
		o.grad[o.layout.rhoIndex()] -= gRho
	}
	o.layout.reduceGradient(dst, o.grad)
}

// iterationRecorder forwards major iterations to the solver logger
type iterationRecorder struct {
	fitID  string
	logger *logger.SolverLogger
}

func (r *iterationRecorder) Init() error { return nil }

func (r *iterationRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 {
		return nil
	}
	gradNorm := 0.0
	if loc.Gradient != nil {
		gradNorm = floats.Norm(loc.Gradient, 2)
	}
	r.logger.LogIteration(r.fitID, stats.MajorIterations, loc.F, gradNorm)
	return nil
}

func (s *Solver) fit(ctx context.Context, matches []models.Match, decay float64) (*FitResult, error) {
	fitID := uuid.New()
	if len(matches) == 0 {
		return nil, models.ErrEmptyDataset
	}
	if err := models.ValidateMatches(matches); err != nil {
		return nil, err
	}
	teams, err := teamSet(matches)
	if err != nil {
		return nil, err
	}
	constraint := DefaultConstraint(len(teams))
	if s.opts.Constraint != nil {
		constraint = *s.opts.Constraint
	}
	l, err := newLayout(teams, constraint)
	if err != nil {
		return nil, err
	}
	init, err := s.initialValues(l)
	if err != nil {
		return nil, err
	}

	obs := make([]observation, len(matches))
	for i, m := range matches {
		obs[i] = observation{
			home:      l.index[m.HomeTeam],
			away:      l.index[m.AwayTeam],
			homeGoals: m.HomeGoals,
			awayGoals: m.AwayGoals,
			timeDiff:  m.TimeDiff,
		}
	}
	obj := &objective{
		layout: l,
		obs:    obs,
		decay:  decay,
		grad:   make([]float64, l.fullSize()),
	}

	x0 := l.reduce(init)
	if f := obj.value(x0); math.IsInf(f, 1) {
		err := fmt.Errorf("%w: initial parameters lie outside the likelihood domain", models.ErrNumericDomain)
		s.logger.LogFitError(fitID.String(), err)
		return nil, err
	}

	s.logger.LogFitStarted(fitID.String(), string(s.opts.Method), len(teams), len(matches), decay)

	problem := optimize.Problem{
		Func: obj.value,
		Grad: obj.gradient,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.opts.MaxIterations,
		GradientThreshold: s.opts.GradientTolerance,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.opts.FunctionTolerance,
			Relative:   s.opts.FunctionTolerance,
			Iterations: 10,
		},
	}
	if s.opts.Display {
		settings.Recorder = &iterationRecorder{fitID: fitID.String(), logger: s.logger}
	}

	res, err := optimize.Minimize(problem, x0, settings, s.method())
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.LogFitError(fitID.String(), ctxErr)
		return nil, fmt.Errorf("fit cancelled: %w", ctxErr)
	}
	if res == nil {
		s.logger.LogFitError(fitID.String(), err)
		return nil, fmt.Errorf("optimiser failed: %w", err)
	}

	full := l.expand(res.X)
	result := &FitResult{
		ID:              fitID,
		Params:          l.params(full),
		Teams:           teams,
		Converged:       err == nil && IsConverged(res.Status),
		Status:          res.Status.String(),
		Objective:       res.F,
		Iterations:      res.MajorIterations,
		FuncEvaluations: res.FuncEvaluations,
		Runtime:         res.Runtime,
		Decay:           decay,
		Matches:         len(matches),
	}
	if s.opts.Debug {
		result.Raw = res
	}

	metrics.RecordFit(string(s.opts.Method), result.Status, result.Iterations, result.Runtime.Seconds())
	s.logger.LogFitCompleted(fitID.String(), result.Status, result.Converged, result.Objective,
		result.Iterations, float64(result.Runtime.Microseconds())/1000)

	if !result.Converged && !s.opts.AllowNonConvergence {
		if err != nil {
			return result, fmt.Errorf("%w: status %s: %v", models.ErrNotConverged, result.Status, err)
		}
		return result, fmt.Errorf("%w: status %s after %d iterations", models.ErrNotConverged, result.Status, result.Iterations)
	}
	return result, nil
}

// initialValues returns the full starting vector, drawing random ratings when
// none were supplied
func (s *Solver) initialValues(l layout) ([]float64, error) {
	if s.opts.InitialValues != nil {
		if len(s.opts.InitialValues) != l.fullSize() {
			return nil, fmt.Errorf("%w: got %d values, want %d", models.ErrInvalidInitialValues, len(s.opts.InitialValues), l.fullSize())
		}
		for i, v := range s.opts.InitialValues {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: value %d is %g", models.ErrInvalidInitialValues, i, v)
			}
		}
		init := make([]float64, l.fullSize())
		copy(init, s.opts.InitialValues)
		return init, nil
	}

	init := make([]float64, l.fullSize())
	for i := 0; i < l.n; i++ {
		init[i] = s.rng.Float64()
	}
	for i := 0; i < l.n; i++ {
		init[l.n+i] = -s.rng.Float64()
	}
	init[l.rhoIndex()] = 0
	init[l.gammaIndex()] = initialHomeAdvantage
	return init, nil
}

func (s *Solver) method() optimize.Method {
	if s.opts.Method == MethodNelderMead {
		return &optimize.NelderMead{}
	}
	return &optimize.BFGS{}
}

// IsConverged reports whether an optimiser status is a successful termination
func IsConverged(status optimize.Status) bool {
	switch status {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// IsNotConverged reports whether err signals an unconverged fit
func IsNotConverged(err error) bool {
	return errors.Is(err, models.ErrNotConverged)
}
