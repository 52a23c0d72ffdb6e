package operator

import (
	"math"
	"testing"

	"github.com/inferlab/epbox/internal/domain"
	"github.com/inferlab/epbox/internal/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransformFactor() TransformFactor {
	return NewTransformFactor(numeric.DefaultQuadratureConfig())
}

func TestTransformMessageToOutputDegenerateLambda(t *testing.T) {
	f := newTestTransformFactor()

	msg, err := f.MessageToOutput(domain.PointMass(0.5), 2.0)
	require.NoError(t, err)

	require.True(t, msg.IsDegenerate())
	assert.InDelta(t, numeric.Transform(2.0, 0.5), msg.Point, 1e-12)
}

func TestTransformMessageToOutputUninformativeLambda(t *testing.T) {
	f := newTestTransformFactor()

	msg, err := f.MessageToOutput(domain.Uninformative(), 2.0)
	require.NoError(t, err)
	assert.True(t, msg.IsUninformative())
}

func TestTransformMessageToOutputMonotoneBound(t *testing.T) {
	f := newTestTransformFactor()

	msg, err := f.MessageToOutput(domain.NewGaussian(0, 4), 1.2)
	require.NoError(t, err)
	require.True(t, msg.IsProper())

	// The transform is monotone in lambda for y > 1, so the quadrature mean
	// must land strictly between the one-sigma endpoints.
	lo := numeric.Transform(1.2, -2)
	hi := numeric.Transform(1.2, 2)
	assert.Greater(t, msg.Mean(), lo)
	assert.Less(t, msg.Mean(), hi)
	assert.Greater(t, msg.Variance(), 0.0)
	assert.False(t, math.IsInf(msg.Variance(), 0))
}

func TestTransformMessageToLambdaUninformativeInputs(t *testing.T) {
	f := newTestTransformFactor()

	msg, err := f.MessageToLambda(domain.Uninformative(), domain.NewGaussian(1, 1), 2.0)
	require.NoError(t, err)
	assert.True(t, msg.IsUninformative())

	msg, err = f.MessageToLambda(domain.NewGaussian(0, 1), domain.Uninformative(), 2.0)
	require.NoError(t, err)
	assert.True(t, msg.IsUninformative())
}

func TestTransformMessageToLambdaDegenerateLambdaIsFixed(t *testing.T) {
	f := newTestTransformFactor()

	point := domain.PointMass(1.5)
	msg, err := f.MessageToLambda(point, domain.NewGaussian(2, 1), 3.0)
	require.NoError(t, err)
	assert.Equal(t, point, msg)
}

func TestTransformMessageToLambdaProper(t *testing.T) {
	f := newTestTransformFactor()

	lambda := domain.NewGaussian(1, 0.25)
	output := domain.NewGaussian(2, 0.5)
	msg, err := f.MessageToLambda(lambda, output, 3.0)
	require.NoError(t, err)

	// Cavity division is forced proper.
	assert.Greater(t, msg.Precision, 0.0)

	// Multiplying back in yields the moment-matched marginal, which must
	// stay near the prior when the output already sits at Transform(3, 1).
	posterior := domain.Multiply(lambda, msg)
	assert.InDelta(t, 1.0, posterior.Mean(), 0.25)
	assert.Less(t, posterior.Variance(), lambda.Variance())
}

func TestTransformLogEvidence(t *testing.T) {
	f := newTestTransformFactor()

	// Uninformative lambda contributes nothing.
	ev, err := f.LogEvidence(domain.Uninformative(), domain.NewGaussian(0, 1), 2.0)
	require.NoError(t, err)
	assert.Zero(t, ev)

	// Degenerate lambda scores the deterministic transform value under the
	// output belief.
	output := domain.NewGaussian(1, 0.5)
	ev, err = f.LogEvidence(domain.PointMass(0.5), output, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, output.LogDensity(numeric.Transform(2.0, 0.5)), ev, 1e-12)

	// Proper case: finite.
	ev, err = f.LogEvidence(domain.NewGaussian(1, 0.25), output, 2.0)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(ev))
	assert.False(t, math.IsInf(ev, 0))
}

func TestTransformRejectsNonPositiveObservation(t *testing.T) {
	f := newTestTransformFactor()

	_, err := f.MessageToOutput(domain.NewGaussian(0, 1), -1.0)
	assert.ErrorIs(t, err, numeric.ErrNonPositiveObservation)

	_, err = f.MessageToLambda(domain.NewGaussian(0, 1), domain.NewGaussian(0, 1), 0.0)
	assert.ErrorIs(t, err, numeric.ErrNonPositiveObservation)

	_, err = f.LogEvidence(domain.NewGaussian(0, 1), domain.NewGaussian(0, 1), -2.0)
	assert.ErrorIs(t, err, numeric.ErrNonPositiveObservation)
}

func TestTransformIdempotence(t *testing.T) {
	f := newTestTransformFactor()
	lambda := domain.NewGaussian(0.3, 0.5)
	output := domain.NewGaussian(0.8, 0.2)

	first, err := f.MessageToLambda(lambda, output, 2.5)
	require.NoError(t, err)
	second, err := f.MessageToLambda(lambda, output, 2.5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransformMessageFromBelief(t *testing.T) {
	f := newTestTransformFactor()

	// A tight belief on the observation collapses to its mean.
	exact, err := f.MessageToOutput(domain.NewGaussian(0, 4), 1.2)
	require.NoError(t, err)
	collapsed, err := f.MessageToOutputFromBelief(domain.NewGaussian(0, 4), domain.PointMass(1.2))
	require.NoError(t, err)
	assert.Equal(t, exact, collapsed)
}
