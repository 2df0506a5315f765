// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: orDefault(baseLogger).WithField("component", "audit"),
	}
}

// LogBetPlacement logs a bet placement event.
func (al *AuditLogger) LogBetPlacement(betID, homeTeam, awayTeam, selection string, stake, odds float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"bet_id":    betID,
		"home_team": homeTeam,
		"away_team": awayTeam,
		"selection": selection,
		"stake":     stake,
		"odds":      odds,
		"timestamp": timestamp.Unix(),
	}).Info("Bet placement recorded")
}

// LogBetSettlement logs a bet settlement.
func (al *AuditLogger) LogBetSettlement(betID, result string, profitLoss, bankroll float64) {
	al.WithFields(logrus.Fields{
		"bet_id":      betID,
		"result":      result,
		"profit_loss": profitLoss,
		"bankroll":    bankroll,
	}).Info("Bet settled")
}
