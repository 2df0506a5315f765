// Package logger provides strategy-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// StrategyLogger provides dedicated logging for strategy operations.
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: orDefault(baseLogger).WithField("component", "strategy"),
	}
}

// LogStrategyDecision logs a strategy decision.
func (sl *StrategyLogger) LogStrategyDecision(decisionID, homeTeam, awayTeam, selection string, probability, odds, expectedValue, kellyFraction, stakeAmount float64) {
	sl.WithFields(logrus.Fields{
		"decision_id":    decisionID,
		"home_team":      homeTeam,
		"away_team":      awayTeam,
		"selection":      selection,
		"probability":    probability,
		"odds":           odds,
		"expected_value": expectedValue,
		"kelly_fraction": kellyFraction,
		"stake_amount":   stakeAmount,
	}).Info("Strategy decision made")
}

// LogWindowScore logs the predictive score of one backtest window.
func (sl *StrategyLogger) LogWindowScore(cutoff, decay float64, trainMatches, testMatches int, score float64, empty bool) {
	sl.WithFields(logrus.Fields{
		"cutoff":        cutoff,
		"decay":         decay,
		"train_matches": trainMatches,
		"test_matches":  testMatches,
		"score":         score,
		"empty":         empty,
	}).Debug("Backtest window scored")
}

// LogDecaySearch logs the result of a decay-rate search.
func (sl *StrategyLogger) LogDecaySearch(candidates int, bestDecay, bestScore float64) {
	sl.WithFields(logrus.Fields{
		"candidates": candidates,
		"best_decay": bestDecay,
		"best_score": bestScore,
	}).Info("Decay rate search completed")
}

// LogStrategyDrawdown logs drawdown events.
func (sl *StrategyLogger) LogStrategyDrawdown(drawdownPercent float64, peakBankroll, currentBankroll float64) {
	sl.WithFields(logrus.Fields{
		"drawdown_percent": drawdownPercent,
		"peak_bankroll":    peakBankroll,
		"current_bankroll": currentBankroll,
	}).Warn("Strategy drawdown threshold exceeded")
}
