// Package logger provides solver-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SolverLogger provides dedicated logging for parameter estimation.
type SolverLogger struct {
	*logrus.Entry
}

// NewSolverLogger creates a new solver logger.
func NewSolverLogger(baseLogger *logrus.Logger) *SolverLogger {
	return &SolverLogger{
		Entry: orDefault(baseLogger).WithField("component", "solver"),
	}
}

// LogFitStarted logs the start of a parameter fit.
func (sl *SolverLogger) LogFitStarted(fitID, method string, teams, matches int, decay float64) {
	sl.WithFields(logrus.Fields{
		"fit_id":  fitID,
		"method":  method,
		"teams":   teams,
		"matches": matches,
		"decay":   decay,
	}).Debug("Parameter fit started")
}

// LogIteration logs one major optimiser iteration.
func (sl *SolverLogger) LogIteration(fitID string, iteration int, objective, gradientNorm float64) {
	sl.WithFields(logrus.Fields{
		"fit_id":        fitID,
		"iteration":     iteration,
		"objective":     objective,
		"gradient_norm": gradientNorm,
	}).Info("Optimiser iteration")
}

// LogFitCompleted logs the outcome of a parameter fit.
func (sl *SolverLogger) LogFitCompleted(fitID, status string, converged bool, objective float64, iterations int, durationMs float64) {
	entry := sl.WithFields(logrus.Fields{
		"fit_id":      fitID,
		"status":      status,
		"converged":   converged,
		"objective":   objective,
		"iterations":  iterations,
		"duration_ms": durationMs,
	})
	if !converged {
		entry.Warn("Parameter fit did not converge")
		return
	}
	entry.Info("Parameter fit completed")
}

// LogFitError logs a fit that could not produce parameters.
func (sl *SolverLogger) LogFitError(fitID string, err error) {
	sl.WithFields(logrus.Fields{
		"fit_id":       fitID,
		"error_reason": err.Error(),
	}).Error("Parameter fit failed")
}
