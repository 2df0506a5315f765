package dixoncoles

import (
	"fmt"
	"math"

	"github.com/yourusername/dixon-coles/internal/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// MatchParams groups everything needed to evaluate one match's likelihood.
// Decay is the rate xi; zero gives the undecayed likelihood.
type MatchParams struct {
	HomeGoals     int
	AwayGoals     int
	HomeAttack    float64
	HomeDefence   float64
	AwayAttack    float64
	AwayDefence   float64
	Rho           float64
	HomeAdvantage float64
	TimeDiff      float64
	Decay         float64
}

// ExpectedGoals returns the home and away scoring rates implied by the
// ratings: lambda = exp(homeAttack + awayDefence + homeAdvantage) and
// mu = exp(awayAttack + homeDefence).
func ExpectedGoals(homeAttack, homeDefence, awayAttack, awayDefence, homeAdvantage float64) (lambda, mu float64) {
	return math.Exp(homeAttack + awayDefence + homeAdvantage), math.Exp(awayAttack + homeDefence)
}

// Weight returns the time-decay weight exp(-xi*t)
func Weight(decay, timeDiff float64) float64 {
	return math.Exp(-decay * timeDiff)
}

// LogLikelihood returns the (optionally decayed) log-likelihood of one
// observed scoreline. A correction factor at or below zero has no logarithm
// and is reported as ErrNumericDomain.
func LogLikelihood(p MatchParams) (float64, error) {
	lambda, mu := ExpectedGoals(p.HomeAttack, p.HomeDefence, p.AwayAttack, p.AwayDefence, p.HomeAdvantage)
	tau := RhoCorrection(p.HomeGoals, p.AwayGoals, lambda, mu, p.Rho)
	if tau <= 0 || math.IsNaN(tau) {
		return math.NaN(), fmt.Errorf("%w: correction factor %g for %d-%d (lambda=%g mu=%g rho=%g)",
			models.ErrNumericDomain, tau, p.HomeGoals, p.AwayGoals, lambda, mu, p.Rho)
	}
	ll := math.Log(tau) +
		distuv.Poisson{Lambda: lambda}.LogProb(float64(p.HomeGoals)) +
		distuv.Poisson{Lambda: mu}.LogProb(float64(p.AwayGoals))
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return math.NaN(), fmt.Errorf("%w: non-finite log-likelihood for %d-%d (lambda=%g mu=%g)",
			models.ErrNumericDomain, p.HomeGoals, p.AwayGoals, lambda, mu)
	}
	return Weight(p.Decay, p.TimeDiff) * ll, nil
}

// logLikelihoodGradient returns the partial derivatives of the weighted
// log-likelihood with respect to log(lambda), log(mu) and rho. Callers must
// only use it where LogLikelihood succeeds.
func logLikelihoodGradient(p MatchParams) (gLambda, gMu, gRho float64) {
	lambda, mu := ExpectedGoals(p.HomeAttack, p.HomeDefence, p.AwayAttack, p.AwayDefence, p.HomeAdvantage)
	tau := RhoCorrection(p.HomeGoals, p.AwayGoals, lambda, mu, p.Rho)
	dLambda, dMu, dRho := rhoCorrectionPartials(p.HomeGoals, p.AwayGoals, lambda, mu, p.Rho)
	w := Weight(p.Decay, p.TimeDiff)

	gLambda = w * (float64(p.HomeGoals) - lambda + lambda*dLambda/tau)
	gMu = w * (float64(p.AwayGoals) - mu + mu*dMu/tau)
	gRho = w * dRho / tau
	return gLambda, gMu, gRho
}
