package operator

import (
	"fmt"

	"github.com/inferlab/epbox/internal/domain"
	"github.com/inferlab/epbox/internal/numeric"
)

// TransformFactor computes EP messages through the deterministic relation
// z = BoxCox(y, lambda). No closed form exists for a proper lambda belief,
// so messages are moment-matched from quadrature.
//
// Every method is a pure function of its arguments; instances are safe for
// concurrent use by any number of inference sweeps.
type TransformFactor struct {
	cfg numeric.QuadratureConfig
}

func NewTransformFactor(cfg numeric.QuadratureConfig) TransformFactor {
	return TransformFactor{cfg: cfg}
}

// MessageToOutput computes the message toward the transform's output
// variable. The output's own belief is deliberately not conditioned on:
// this direction would otherwise feed the output's belief back into itself.
func (f TransformFactor) MessageToOutput(lambda domain.Gaussian, y float64) (domain.Gaussian, error) {
	if err := validateObservation(y); err != nil {
		return domain.Gaussian{}, err
	}
	if lambda.IsDegenerate() {
		return domain.PointMass(numeric.Transform(y, lambda.Point)), nil
	}
	if lambda.IsUninformative() {
		return domain.Uninformative(), nil
	}
	stats := numeric.ComputeIntegralStats(lambda, domain.Uninformative(), y, f.cfg)
	variance := stats.ZSecond - stats.ZMean*stats.ZMean
	if variance < f.cfg.VarianceFloor {
		variance = f.cfg.VarianceFloor
	}
	return domain.NewGaussian(stats.ZMean, variance), nil
}

// MessageToLambda computes the message toward the transform parameter.
// The moment-matched result is a marginal, so the incoming lambda belief
// is divided back out (cavity division, forced proper).
func (f TransformFactor) MessageToLambda(lambda, output domain.Gaussian, y float64) (domain.Gaussian, error) {
	if err := validateObservation(y); err != nil {
		return domain.Gaussian{}, err
	}
	if lambda.IsUninformative() || output.IsUninformative() {
		return domain.Uninformative(), nil
	}
	if lambda.IsDegenerate() {
		// A point belief is fixed; evidence through this path cannot move it.
		return lambda, nil
	}
	stats := numeric.ComputeIntegralStats(lambda, output, y, f.cfg)
	variance := stats.LambdaSecond - stats.LambdaMean*stats.LambdaMean
	if variance < f.cfg.VarianceFloor {
		variance = f.cfg.VarianceFloor
	}
	posterior := domain.NewGaussian(stats.LambdaMean, variance)
	return domain.Divide(posterior, lambda, true), nil
}

// LogEvidence returns the factor's log-normalization contribution.
func (f TransformFactor) LogEvidence(lambda, output domain.Gaussian, y float64) (float64, error) {
	if err := validateObservation(y); err != nil {
		return 0, err
	}
	if lambda.IsUninformative() {
		return 0, nil
	}
	if lambda.IsDegenerate() {
		return output.LogDensity(numeric.Transform(y, lambda.Point)), nil
	}
	stats := numeric.ComputeIntegralStats(lambda, output, y, f.cfg)
	return stats.LogNormalizer, nil
}

// MessageToOutputFromBelief collapses a belief-valued observation to its
// mean. Used when the observed input arrives as a tight belief rather than
// an exact scalar; this is a linearization, not exact marginalization.
func (f TransformFactor) MessageToOutputFromBelief(lambda, y domain.Gaussian) (domain.Gaussian, error) {
	return f.MessageToOutput(lambda, y.Mean())
}

func (f TransformFactor) MessageToLambdaFromBelief(lambda, output, y domain.Gaussian) (domain.Gaussian, error) {
	return f.MessageToLambda(lambda, output, y.Mean())
}

func validateObservation(y float64) error {
	if y <= 0 {
		return fmt.Errorf("observation %g: %w", y, numeric.ErrNonPositiveObservation)
	}
	return nil
}
