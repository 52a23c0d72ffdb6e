package numeric

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonPositiveObservation is returned when a logarithm is required of a
// value that is not strictly positive. This is a precondition violation and
// is never substituted with a fallback value.
var ErrNonPositiveObservation = errors.New("observation must be strictly positive")

const (
	// Below this |lambda| the power form is replaced by its ln y limit.
	transformZeroThreshold = 1e-8

	// Wider threshold for the derivative, whose power form loses precision
	// earlier than the transform itself.
	derivativeZeroThreshold = 1e-6

	invertTolerance       = 1e-8
	invertDerivativeFloor = 1e-10
	invertMaxIterations   = 50
	invertMaxStep         = 5.0
	lambdaBound           = 20.0
)

// Transform evaluates the Box-Cox transform (y^lambda - 1) / lambda,
// taking the ln y limit at the removable singularity lambda = 0.
// y must be strictly positive; callers validate.
func Transform(y, lambda float64) float64 {
	if math.Abs(lambda) < transformZeroThreshold {
		return math.Log(y)
	}
	return (math.Pow(y, lambda) - 1) / lambda
}

// TransformDerivative evaluates d/dlambda of the Box-Cox transform,
// with the Taylor limit (ln y)^2 / 2 at lambda = 0.
func TransformDerivative(y, lambda float64) float64 {
	if math.Abs(lambda) < derivativeZeroThreshold {
		ly := math.Log(y)
		return 0.5 * ly * ly
	}
	t := math.Pow(y, lambda)
	return t*math.Log(y)/lambda - (t-1)/(lambda*lambda)
}

// InvertTransform solves Transform(y, lambda) = target for lambda by damped
// Newton iteration starting at lambda0. Best effort: it stops after a fixed
// iteration cap or when the derivative collapses, returning the current
// estimate either way. Lambda is kept inside [-20, 20].
func InvertTransform(y, target, lambda0 float64) float64 {
	lambda := clampLambda(lambda0)
	for i := 0; i < invertMaxIterations; i++ {
		residual := Transform(y, lambda) - target
		if math.Abs(residual) < invertTolerance {
			return lambda
		}
		derivative := TransformDerivative(y, lambda)
		if math.Abs(derivative) < invertDerivativeFloor {
			return lambda
		}
		step := residual / derivative
		if step > invertMaxStep {
			step = invertMaxStep
		} else if step < -invertMaxStep {
			step = -invertMaxStep
		}
		lambda = clampLambda(lambda - step)
	}
	return lambda
}

// SumLogs returns the sum of ln y over the series, failing loudly on any
// non-positive entry.
func SumLogs(ys []float64) (float64, error) {
	sum := 0.0
	for i, y := range ys {
		if y <= 0 {
			return 0, fmt.Errorf("series[%d] = %g: %w", i, y, ErrNonPositiveObservation)
		}
		sum += math.Log(y)
	}
	return sum, nil
}

func clampLambda(lambda float64) float64 {
	if lambda > lambdaBound {
		return lambdaBound
	}
	if lambda < -lambdaBound {
		return -lambdaBound
	}
	return lambda
}
