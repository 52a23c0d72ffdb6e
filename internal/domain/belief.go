package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultVarianceFloor is the smallest variance a proper belief may carry.
	DefaultVarianceFloor = 1e-12

	// DefaultMessagePrecision is the precision a forced-proper division
	// falls back to when the natural-parameter difference goes non-positive.
	DefaultMessagePrecision = 1e-12

	// DegenerateDensityWidth is the variance of the narrow Gaussian used to
	// approximate a point mass when a log-density is requested.
	DegenerateDensityWidth = 1e-6
)

// Gaussian is a univariate normal belief in natural parameters.
// Precision == 0 with no degenerate flag means the belief carries no
// variance information: a flat uninformative belief, or an improper
// "tilted" message when PrecisionMean is nonzero.
type Gaussian struct {
	Degenerate    bool    `json:"degenerate,omitempty"`
	Point         float64 `json:"point,omitempty"`
	Precision     float64 `json:"precision"`
	PrecisionMean float64 `json:"precision_mean"`
}

// NewGaussian builds a proper belief from mean and variance.
// Variance is floored at DefaultVarianceFloor.
func NewGaussian(mean, variance float64) Gaussian {
	if variance < DefaultVarianceFloor {
		variance = DefaultVarianceFloor
	}
	return Gaussian{
		Precision:     1 / variance,
		PrecisionMean: mean / variance,
	}
}

// FromNaturalParams builds a belief directly from natural parameters.
func FromNaturalParams(precision, precisionMean float64) Gaussian {
	return Gaussian{Precision: precision, PrecisionMean: precisionMean}
}

// PointMass builds a degenerate belief concentrated at x.
func PointMass(x float64) Gaussian {
	return Gaussian{Degenerate: true, Point: x}
}

// Uninformative builds a flat belief carrying no information.
func Uninformative() Gaussian {
	return Gaussian{}
}

func (g Gaussian) IsDegenerate() bool {
	return g.Degenerate
}

func (g Gaussian) IsUninformative() bool {
	return !g.Degenerate && g.Precision <= 0
}

func (g Gaussian) IsProper() bool {
	return !g.Degenerate && g.Precision > 0 && !math.IsInf(g.Precision, 1)
}

// Mean returns the representative scalar of the belief: the point value
// for a degenerate belief, the distribution mean for a proper one, and 0
// when no mean is defined.
func (g Gaussian) Mean() float64 {
	if g.Degenerate {
		return g.Point
	}
	if g.Precision > 0 {
		return g.PrecisionMean / g.Precision
	}
	return 0
}

// Variance returns 0 for a degenerate belief and +Inf for an
// uninformative one.
func (g Gaussian) Variance() float64 {
	if g.Degenerate {
		return 0
	}
	if g.Precision > 0 {
		return 1 / g.Precision
	}
	return math.Inf(1)
}

// LogDensity evaluates the belief's log-density at x. An uninformative
// belief contributes 0 (a multiplicative no-op in likelihood weighting).
// A degenerate belief is approximated by a Gaussian of variance
// DegenerateDensityWidth rather than a true delta.
func (g Gaussian) LogDensity(x float64) float64 {
	if g.IsUninformative() {
		return 0
	}
	mean, variance := g.Mean(), g.Variance()
	if g.Degenerate {
		mean, variance = g.Point, DegenerateDensityWidth
	}
	n := distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance)}
	return n.LogProb(x)
}

// Multiply combines two beliefs by adding natural parameters. A point mass
// absorbs anything it is multiplied with.
func Multiply(a, b Gaussian) Gaussian {
	if a.Degenerate {
		return a
	}
	if b.Degenerate {
		return b
	}
	return Gaussian{
		Precision:     a.Precision + b.Precision,
		PrecisionMean: a.PrecisionMean + b.PrecisionMean,
	}
}

// Divide removes the cavity belief from a marginal, yielding the message
// that reproduces the marginal when multiplied back in. With forceProper
// set, a non-positive resulting precision is clamped to
// DefaultMessagePrecision instead of producing an invalid belief.
func Divide(marginal, cavity Gaussian, forceProper bool) Gaussian {
	if marginal.Degenerate {
		return marginal
	}
	precision := marginal.Precision - cavity.Precision
	precisionMean := marginal.PrecisionMean - cavity.PrecisionMean
	if forceProper && precision <= 0 {
		mean := marginal.Mean()
		precision = DefaultMessagePrecision
		precisionMean = mean * precision
	}
	return Gaussian{Precision: precision, PrecisionMean: precisionMean}
}
