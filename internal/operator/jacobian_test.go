package operator

import (
	"math"
	"testing"

	"github.com/inferlab/epbox/internal/domain"
)

func TestJacobianMessageToLambda(t *testing.T) {
	var f JacobianFactor

	tests := []struct {
		name string
		s    float64
	}{
		{"positive sum", 2.5},
		{"negative sum", -1.3},
		{"zero sum", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := f.MessageToLambda(tt.s)
			if msg.Precision != 0 {
				t.Errorf("Precision = %v, want exactly 0", msg.Precision)
			}
			if msg.PrecisionMean != tt.s {
				t.Errorf("PrecisionMean = %v, want exactly %v", msg.PrecisionMean, tt.s)
			}
		})
	}
}

func TestJacobianMessageToValue(t *testing.T) {
	var f JacobianFactor

	// Log-normal cross-check: lambda ~ N(0, 1), S = 2 gives
	// (0-1)*2 + 0.5*1*4 = 0, so the value-message mean is exp(0) = 1.
	msg := f.MessageToValue(domain.NewGaussian(0, 1), 2)
	if !msg.IsProper() {
		t.Fatalf("message = %+v, want proper", msg)
	}
	if math.Abs(msg.Mean()-1) > 1e-9 {
		t.Errorf("mean = %v, want 1", msg.Mean())
	}
	wantVariance := math.Exp(4) - 1
	if math.Abs(msg.Variance()-wantVariance) > 1e-6*wantVariance {
		t.Errorf("variance = %v, want %v", msg.Variance(), wantVariance)
	}
}

func TestJacobianMessageToValueDegenerate(t *testing.T) {
	var f JacobianFactor

	msg := f.MessageToValue(domain.PointMass(1), 3)
	if !msg.IsDegenerate() {
		t.Fatalf("message = %+v, want degenerate", msg)
	}
	// (1-1)*3 = 0, exp(0) = 1.
	if msg.Point != 1 {
		t.Errorf("point = %v, want 1", msg.Point)
	}
}

func TestJacobianMessageToValueUninformative(t *testing.T) {
	var f JacobianFactor

	if msg := f.MessageToValue(domain.Uninformative(), 2); !msg.IsUninformative() {
		t.Errorf("message = %+v, want uninformative", msg)
	}
}

func TestJacobianLogEvidence(t *testing.T) {
	var f JacobianFactor

	tests := []struct {
		name   string
		lambda domain.Gaussian
		s      float64
		want   float64
	}{
		{"standard normal cancels", domain.NewGaussian(0, 1), 2, 0},
		{"uninformative", domain.Uninformative(), 5, 0},
		{"degenerate exact", domain.PointMass(2), 3, 3},
		{"proper", domain.NewGaussian(1, 0.5), 2, 0.5 * 0.5 * 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.LogEvidence(tt.lambda, tt.s)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LogEvidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJacobianFromBelief(t *testing.T) {
	var f JacobianFactor

	// A belief-valued S collapses to its mean.
	direct := f.MessageToLambda(1.5)
	collapsed := f.MessageToLambdaFromBelief(domain.PointMass(1.5))
	if direct != collapsed {
		t.Errorf("collapsed = %+v, want %+v", collapsed, direct)
	}
}
