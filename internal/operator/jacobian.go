package operator

import (
	"math"

	"github.com/inferlab/epbox/internal/domain"
)

// jacobianVarianceFloor bounds the value-message variance from below.
const jacobianVarianceFloor = 1e-12

// JacobianFactor models the reweighting factor w(lambda) = exp((lambda-1)*S)
// where S is the precomputed sum of logs of the positive observations.
// The factor is log-linear in lambda, so every message and the evidence
// have closed forms; no quadrature is involved.
type JacobianFactor struct{}

// MessageToLambda is an exact natural-parameter shift: zero added
// precision, precision-weighted mean equal to S. Exact for any lambda
// belief state, so no belief argument is needed.
func (JacobianFactor) MessageToLambda(s float64) domain.Gaussian {
	return domain.FromNaturalParams(0, s)
}

// MessageToValue computes the message toward the factor's own value.
// With lambda Gaussian, exp(lambda*S) is exactly log-normal, so the
// moments come from the log-normal identities directly.
func (JacobianFactor) MessageToValue(lambda domain.Gaussian, s float64) domain.Gaussian {
	if lambda.IsDegenerate() {
		return domain.PointMass(math.Exp((lambda.Point - 1) * s))
	}
	if lambda.IsUninformative() {
		return domain.Uninformative()
	}
	m, v := lambda.Mean(), lambda.Variance()
	mean := math.Exp((m-1)*s + 0.5*v*s*s)
	variance := mean * mean * (math.Exp(v*s*s) - 1)
	if variance < jacobianVarianceFloor {
		variance = jacobianVarianceFloor
	}
	return domain.NewGaussian(mean, variance)
}

// LogEvidence returns (mean-1)*S + var*S^2/2, which reduces to the exact
// log factor value for a degenerate lambda and to 0 for an uninformative one.
func (JacobianFactor) LogEvidence(lambda domain.Gaussian, s float64) float64 {
	if lambda.IsUninformative() {
		return 0
	}
	if lambda.IsDegenerate() {
		return (lambda.Point - 1) * s
	}
	return (lambda.Mean()-1)*s + 0.5*lambda.Variance()*s*s
}

// MessageToValueFromBelief collapses a belief-valued S to its mean.
func (f JacobianFactor) MessageToValueFromBelief(lambda, s domain.Gaussian) domain.Gaussian {
	return f.MessageToValue(lambda, s.Mean())
}

// MessageToLambdaFromBelief collapses a belief-valued S to its mean.
func (f JacobianFactor) MessageToLambdaFromBelief(s domain.Gaussian) domain.Gaussian {
	return f.MessageToLambda(s.Mean())
}
