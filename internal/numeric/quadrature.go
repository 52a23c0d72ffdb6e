package numeric

import (
	"math"

	"github.com/inferlab/epbox/internal/domain"
)

// QuadratureConfig carries every numeric knob of the integral routine so
// tests can trade precision for speed without recompiling anything.
type QuadratureConfig struct {
	// Steps is the number of Simpson intervals; forced even at use.
	Steps int

	// HalfWidthSigmas sets the integration window to this many standard
	// deviations either side of the lambda mean.
	HalfWidthSigmas float64

	// VarianceFloor bounds every variance and second-moment gap from below.
	VarianceFloor float64

	// FallbackMean and FallbackVariance stand in when the lambda belief
	// exposes no usable moments.
	FallbackMean     float64
	FallbackVariance float64

	// MinNormalizer guards the log of a collapsed integral.
	MinNormalizer float64
}

// DefaultQuadratureConfig returns the reference configuration.
func DefaultQuadratureConfig() QuadratureConfig {
	return QuadratureConfig{
		Steps:            240,
		HalfWidthSigmas:  6,
		VarianceFloor:    1e-8,
		FallbackMean:     0,
		FallbackVariance: 100,
		MinNormalizer:    1e-300,
	}
}

// IntegralStats is the ephemeral result of one quadrature pass.
// Normalizer is the Simpson sum in the max-subtracted domain; the true log
// of the normalizing constant is LogNormalizer.
type IntegralStats struct {
	Normalizer    float64
	LambdaMean    float64
	LambdaSecond  float64
	ZMean         float64
	ZSecond       float64
	LogNormalizer float64
}

// ComputeIntegralStats approximates, under the lambda belief, the moments of
// lambda and of z = Transform(y, lambda) weighted by the z belief's
// likelihood, by composite Simpson quadrature over a symmetric window.
// Weights are accumulated in the log domain with the running maximum
// subtracted, since raw likelihoods span many orders of magnitude across
// the window and the sum would otherwise underflow silently.
func ComputeIntegralStats(lambda, z domain.Gaussian, y float64, cfg QuadratureConfig) IntegralStats {
	if lambda.IsDegenerate() {
		zv := Transform(y, lambda.Point)
		return IntegralStats{
			Normalizer:    1,
			LambdaMean:    lambda.Point,
			LambdaSecond:  lambda.Point * lambda.Point,
			ZMean:         zv,
			ZSecond:       zv * zv,
			LogNormalizer: z.LogDensity(zv),
		}
	}

	mean, variance := cfg.FallbackMean, cfg.FallbackVariance
	if lambda.IsProper() {
		mean, variance = lambda.Mean(), lambda.Variance()
	}
	if variance < cfg.VarianceFloor {
		variance = cfg.VarianceFloor
	}

	steps := cfg.Steps
	if steps%2 != 0 {
		steps++
	}
	if steps < 2 {
		steps = 2
	}

	half := cfg.HalfWidthSigmas * math.Sqrt(variance)
	step := 2 * half / float64(steps)

	lambdas := make([]float64, steps+1)
	zs := make([]float64, steps+1)
	logw := make([]float64, steps+1)
	maxLogW := math.Inf(-1)
	for i := 0; i <= steps; i++ {
		li := mean - half + float64(i)*step
		zi := Transform(y, li)
		lw := lambda.LogDensity(li) + z.LogDensity(zi)
		if math.IsInf(zi, 0) || math.IsNaN(zi) {
			// The power form overflowed at this abscissa. Zero weight keeps
			// the non-finite value out of the moment sums.
			lw = math.Inf(-1)
		}
		lambdas[i], zs[i], logw[i] = li, zi, lw
		if lw > maxLogW {
			maxLogW = lw
		}
	}

	var integral, sumL, sumL2, sumZ, sumZ2 float64
	// maxLogW can only stay -Inf when every abscissa overflowed; the zero
	// integral then routes to the fallback below.
	if !math.IsInf(maxLogW, -1) {
		for i := 0; i <= steps; i++ {
			coeff := 2.0
			switch {
			case i == 0 || i == steps:
				coeff = 1
			case i%2 == 1:
				coeff = 4
			}
			w := coeff * math.Exp(logw[i]-maxLogW)
			if w == 0 {
				continue
			}
			integral += w
			sumL += w * lambdas[i]
			sumL2 += w * lambdas[i] * lambdas[i]
			sumZ += w * zs[i]
			sumZ2 += w * zs[i] * zs[i]
		}
		scale := step / 3
		integral *= scale
		sumL *= scale
		sumL2 *= scale
		sumZ *= scale
		sumZ2 *= scale
	}

	if integral <= 0 || math.IsNaN(integral) || math.IsInf(integral, 0) {
		// Collapsed integral. Report moments at the lambda mean and a
		// log-normalizer from whatever is left of the raw integral. The
		// resulting log-evidence is an approximation, not a verified bound.
		zv := Transform(y, mean)
		return IntegralStats{
			Normalizer:    integral,
			LambdaMean:    mean,
			LambdaSecond:  mean*mean + variance,
			ZMean:         zv,
			ZSecond:       zv*zv + cfg.VarianceFloor,
			LogNormalizer: maxLogW + math.Log(math.Max(cfg.MinNormalizer, integral)),
		}
	}

	stats := IntegralStats{
		Normalizer:    integral,
		LambdaMean:    sumL / integral,
		LambdaSecond:  sumL2 / integral,
		ZMean:         sumZ / integral,
		ZSecond:       sumZ2 / integral,
		LogNormalizer: maxLogW + math.Log(integral),
	}
	if gap := stats.LambdaSecond - stats.LambdaMean*stats.LambdaMean; gap < cfg.VarianceFloor {
		stats.LambdaSecond = stats.LambdaMean*stats.LambdaMean + cfg.VarianceFloor
	}
	if gap := stats.ZSecond - stats.ZMean*stats.ZMean; gap < cfg.VarianceFloor {
		stats.ZSecond = stats.ZMean*stats.ZMean + cfg.VarianceFloor
	}
	return stats
}
