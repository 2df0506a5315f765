package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/logger"
	"github.com/yourusername/dixon-coles/internal/metrics"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
	"github.com/yourusername/dixon-coles/internal/strategy"
)

// Window statuses reported to metrics
const (
	windowScored = "scored"
	windowEmpty  = "empty"
	windowFailed = "failed"
)

// Engine orchestrates rolling refits over a match history
type Engine struct {
	config         BacktestConfig
	solverOpts     dixoncoles.Options
	sim            *simulator.Simulator
	strategy       strategy.Strategy
	logger         *logrus.Logger
	strategyLogger *logger.StrategyLogger
	auditLogger    *logger.AuditLogger
}

// WindowScore is the predictive log-likelihood of one test window.
// Empty marks a cutoff with no test matches; its Score is zero and carries no information.
type WindowScore struct {
	Cutoff       float64   `json:"cutoff"`
	Decay        float64   `json:"decay"`
	Score        float64   `json:"score"`
	Empty        bool      `json:"empty"`
	TrainMatches int       `json:"train_matches"`
	TestMatches  int       `json:"test_matches"`
	Converged    bool      `json:"converged"`
	FitID        uuid.UUID `json:"fit_id"`
}

// DecayScore is the summed window score of one decay rate
type DecayScore struct {
	Decay   float64       `json:"decay"`
	Total   float64       `json:"total"`
	Scored  int           `json:"scored"`
	Windows []WindowScore `json:"windows"`
}

// NewEngine creates a new backtesting engine. A nil strategy selects the
// value strategy with full Kelly over sim.
func NewEngine(cfg BacktestConfig, solverOpts dixoncoles.Options, sim *simulator.Simulator, strat strategy.Strategy, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	if sim == nil {
		sim = simulator.NewSimulator(simulator.Config{}, log)
	}
	if strat == nil {
		vs, err := strategy.NewValueStrategy(sim, 0, log)
		if err != nil {
			return nil, err
		}
		strat = vs
	}

	return &Engine{
		config:         cfg,
		solverOpts:     solverOpts,
		sim:            sim,
		strategy:       strat,
		logger:         log,
		strategyLogger: logger.NewStrategyLogger(log),
		auditLogger:    logger.NewAuditLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// SplitWindow partitions matches around cutoff. The test window holds matches
// with TimeDiff in [cutoff-width, cutoff]; the training set holds strictly
// older matches with TimeDiff re-based so the cutoff becomes zero.
func SplitWindow(matches []models.Match, cutoff, width float64) (train, test []models.Match) {
	for _, m := range matches {
		switch {
		case m.TimeDiff > cutoff:
			m.TimeDiff -= cutoff
			train = append(train, m)
		case m.TimeDiff >= cutoff-width:
			test = append(test, m)
		}
	}
	return train, test
}

// newSolver returns a solver seeded from the run seed, the cutoff and the decay
// rate, so a window scores the same regardless of which goroutine runs it.
func (e *Engine) newSolver(cutoff, xi float64, init []float64) *dixoncoles.Solver {
	opts := e.solverOpts
	opts.InitialValues = init
	seed := e.config.Seed ^ int64(math.Float64bits(cutoff)) ^ int64(math.Float64bits(xi)>>1)
	opts.Rand = rand.New(rand.NewSource(seed))
	return dixoncoles.NewSolver(opts, e.logger)
}

func (e *Engine) fitWindow(ctx context.Context, train []models.Match, cutoff, xi float64, init []float64) (*dixoncoles.FitResult, error) {
	fit, err := e.newSolver(cutoff, xi, init).FitDecayed(ctx, train, xi)
	if err != nil {
		return nil, fmt.Errorf("window at cutoff %g: %w", cutoff, err)
	}
	return fit, nil
}

// ScoreWindow refits on the matches older than cutoff and returns the summed
// log-probability the fit gives the actual results of the test window.
// init optionally seeds the optimiser; nil draws random starting ratings.
func (e *Engine) ScoreWindow(ctx context.Context, matches []models.Match, cutoff, xi float64, init []float64) (WindowScore, error) {
	train, test := SplitWindow(matches, cutoff, e.config.WindowWidth)
	ws := WindowScore{
		Cutoff:       cutoff,
		Decay:        xi,
		TrainMatches: len(train),
		TestMatches:  len(test),
	}
	if len(test) == 0 {
		ws.Empty = true
		metrics.RecordWindow(windowEmpty, 0)
		e.strategyLogger.LogWindowScore(cutoff, xi, ws.TrainMatches, 0, 0, true)
		return ws, nil
	}

	fit, err := e.fitWindow(ctx, train, cutoff, xi, init)
	if err != nil {
		metrics.RecordWindow(windowFailed, 0)
		return ws, err
	}
	ws.FitID = fit.ID
	ws.Converged = fit.Converged

	for _, m := range test {
		probs, err := e.sim.Probabilities(fit.Params, m.HomeTeam, m.AwayTeam)
		if err != nil {
			metrics.RecordWindow(windowFailed, 0)
			return ws, fmt.Errorf("window at cutoff %g: %w", cutoff, err)
		}
		ws.Score += math.Log(probs.ForOutcome(m.Outcome()))
	}

	metrics.RecordWindow(windowScored, ws.Score)
	e.strategyLogger.LogWindowScore(cutoff, xi, ws.TrainMatches, ws.TestMatches, ws.Score, false)
	return ws, nil
}

// ScoreDecayRate sums the window scores of xi over the cutoff schedule.
// Empty windows contribute nothing.
func (e *Engine) ScoreDecayRate(ctx context.Context, matches []models.Match, xi float64) (*DecayScore, error) {
	if len(matches) == 0 {
		return nil, models.ErrEmptyDataset
	}
	cutoffs := e.config.Cutoffs()
	result := &DecayScore{Decay: xi, Windows: make([]WindowScore, 0, len(cutoffs))}
	for _, cutoff := range cutoffs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws, err := e.ScoreWindow(ctx, matches, cutoff, xi, nil)
		if err != nil {
			return nil, err
		}
		result.Windows = append(result.Windows, ws)
		if !ws.Empty {
			result.Total += ws.Score
			result.Scored++
		}
	}
	return result, nil
}

// ReplayResult is the outcome of a betting replay
type ReplayResult struct {
	ID      uuid.UUID      `json:"id"`
	Decay   float64        `json:"decay"`
	State   *BacktestState `json:"-"`
	Skipped int            `json:"skipped"`
	Halted  bool           `json:"halted"`
}

// Replay walks the cutoff schedule, refits on each training window and bets
// the test-window matches that carry odds, settling every bet against its
// recorded result before the next window is priced.
func (e *Engine) Replay(ctx context.Context, matches []models.Match, xi float64) (*ReplayResult, error) {
	if len(matches) == 0 {
		return nil, models.ErrEmptyDataset
	}
	start := time.Now()
	result := &ReplayResult{
		ID:    uuid.New(),
		Decay: xi,
		State: NewBacktestState(e.config.InitialBankroll, earliestDate(matches)),
	}
	state := result.State
	metrics.UpdateBankroll(state.Bankroll())

	e.logger.WithFields(logrus.Fields{
		"replay_id": result.ID.String(),
		"decay":     xi,
		"matches":   len(matches),
		"strategy":  e.strategy.Name(),
	}).Info("Starting betting replay")

	for _, cutoff := range e.config.Cutoffs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		train, test := SplitWindow(matches, cutoff, e.config.WindowWidth)
		if len(test) == 0 {
			continue
		}
		fit, err := e.fitWindow(ctx, train, cutoff, xi, nil)
		if err != nil {
			return nil, err
		}

		// oldest first within the window
		sort.SliceStable(test, func(i, j int) bool { return test[i].TimeDiff > test[j].TimeDiff })
		for _, m := range test {
			placed, err := e.processMatch(fit.Params, m, state)
			if err != nil {
				return nil, err
			}
			if !placed {
				result.Skipped++
			}
			if e.haltOnDrawdown(state) {
				result.Halted = true
				break
			}
		}
		if result.Halted {
			break
		}
	}

	metrics.RecordBacktestDuration(time.Since(start).Seconds())
	e.logger.WithFields(logrus.Fields{
		"replay_id": result.ID.String(),
		"bets":      len(state.Bets),
		"skipped":   result.Skipped,
		"bankroll":  state.CurrentBankroll.StringFixed(2),
		"halted":    result.Halted,
	}).Info("Betting replay completed")
	return result, nil
}

// processMatch prices one fixture and settles a bet on it when the strategy
// finds one. It reports whether a bet was placed.
func (e *Engine) processMatch(params *dixoncoles.Params, m models.Match, state *BacktestState) (bool, error) {
	if m.Odds == nil || !state.CurrentBankroll.IsPositive() {
		return false, nil
	}
	decision, err := e.strategy.Decide(params, m.HomeTeam, m.AwayTeam, *m.Odds, state.Bankroll())
	if err != nil {
		if isSkippable(err) {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"home_team": m.HomeTeam,
				"away_team": m.AwayTeam,
			}).Warn("Skipping fixture")
			return false, nil
		}
		return false, err
	}
	if !e.strategy.ShouldBet(decision) {
		return false, nil
	}

	bet := SimulateBetExecution(decision, m.Date)
	if bet == nil {
		return false, nil
	}
	metrics.RecordBetPlaced()
	e.auditLogger.LogBetPlacement(bet.ID.String(), bet.HomeTeam, bet.AwayTeam, string(bet.Selection),
		bet.Stake.InexactFloat64(), bet.Odds, bet.PlacedAt)

	pnl := bet.Settle(m.Outcome(), m.Date)
	state.UpdateState(bet, pnl)
	state.RecordEquityPoint(m.Date, state.CurrentBankroll)

	status := "lost"
	if pnl.IsPositive() {
		status = "won"
	}
	metrics.RecordBetSettled(status)
	metrics.UpdateBankroll(state.Bankroll())
	e.auditLogger.LogBetSettlement(bet.ID.String(), status, pnl.InexactFloat64(), state.Bankroll())
	return true, nil
}

// haltOnDrawdown reports whether the drawdown limit has been reached
func (e *Engine) haltOnDrawdown(state *BacktestState) bool {
	if e.config.MaxDrawdownPercent <= 0 {
		return false
	}
	dd := state.GetCurrentDrawdown()
	if dd < e.config.MaxDrawdownPercent {
		return false
	}
	e.strategyLogger.LogStrategyDrawdown(dd*100, state.PeakBankroll.InexactFloat64(), state.Bankroll())
	return true
}

// SimulateBetExecution turns a decision into a pending bet with the stake
// rounded to pennies. It returns nil when nothing would be staked.
func SimulateBetExecution(d *strategy.Decision, placedAt time.Time) *models.Bet {
	if d == nil || !(d.Stake > 0) || d.Odds <= 1 {
		return nil
	}
	stake := decimal.NewFromFloat(d.Stake).Round(2)
	if !stake.IsPositive() {
		return nil
	}
	return &models.Bet{
		ID:          uuid.New(),
		DecisionID:  d.ID,
		HomeTeam:    d.HomeTeam,
		AwayTeam:    d.AwayTeam,
		Selection:   d.Selection,
		Odds:        d.Odds,
		Probability: d.Probability,
		Stake:       stake,
		Status:      models.BetStatusPending,
		PlacedAt:    placedAt,
	}
}

// isSkippable reports errors confined to a single fixture
func isSkippable(err error) bool {
	return errors.Is(err, models.ErrUnknownTeam) ||
		errors.Is(err, models.ErrInvalidOdds) ||
		errors.Is(err, models.ErrOddsOutOfRange)
}

func earliestDate(matches []models.Match) time.Time {
	var earliest time.Time
	for _, m := range matches {
		if m.Date.IsZero() {
			continue
		}
		if earliest.IsZero() || m.Date.Before(earliest) {
			earliest = m.Date
		}
	}
	return earliest
}
