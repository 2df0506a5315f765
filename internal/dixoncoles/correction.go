// Package dixoncoles implements the Dixon-Coles bivariate Poisson model:
// the low-score correction, the per-match log-likelihood and the
// maximum-likelihood parameter solver.
package dixoncoles

// RhoCorrection returns the multiplicative adjustment applied to the joint
// probability of a 0-0, 0-1, 1-0 or 1-1 scoreline. Every other score gets 1.0.
//
// The factor is returned as is, so a rho large enough to make it negative
// yields a negative value; consumers reject it.
func RhoCorrection(x, y int, lambda, mu, rho float64) float64 {
	switch {
	case x == 0 && y == 0:
		return 1 - lambda*mu*rho
	case x == 0 && y == 1:
		return 1 + lambda*rho
	case x == 1 && y == 0:
		return 1 + mu*rho
	case x == 1 && y == 1:
		return 1 - rho
	default:
		return 1.0
	}
}

// rhoCorrectionPartials returns d tau/d lambda, d tau/d mu and d tau/d rho.
func rhoCorrectionPartials(x, y int, lambda, mu, rho float64) (dLambda, dMu, dRho float64) {
	switch {
	case x == 0 && y == 0:
		return -mu * rho, -lambda * rho, -lambda * mu
	case x == 0 && y == 1:
		return rho, 0, lambda
	case x == 1 && y == 0:
		return 0, rho, mu
	case x == 1 && y == 1:
		return 0, 0, -1
	default:
		return 0, 0, 0
	}
}
