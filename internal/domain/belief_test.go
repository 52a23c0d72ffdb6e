package domain

import (
	"math"
	"testing"
)

func TestGaussianStates(t *testing.T) {
	tests := []struct {
		name          string
		belief        Gaussian
		proper        bool
		degenerate    bool
		uninformative bool
	}{
		{"proper", NewGaussian(1, 2), true, false, false},
		{"point mass", PointMass(3), false, true, false},
		{"uninformative", Uninformative(), false, false, true},
		{"tilted improper", FromNaturalParams(0, 2.5), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.belief.IsProper(); got != tt.proper {
				t.Errorf("IsProper() = %v, want %v", got, tt.proper)
			}
			if got := tt.belief.IsDegenerate(); got != tt.degenerate {
				t.Errorf("IsDegenerate() = %v, want %v", got, tt.degenerate)
			}
			if got := tt.belief.IsUninformative(); got != tt.uninformative {
				t.Errorf("IsUninformative() = %v, want %v", got, tt.uninformative)
			}
		})
	}
}

func TestGaussianMoments(t *testing.T) {
	g := NewGaussian(2, 0.5)
	if math.Abs(g.Mean()-2) > 1e-12 {
		t.Errorf("Mean() = %v, want 2", g.Mean())
	}
	if math.Abs(g.Variance()-0.5) > 1e-12 {
		t.Errorf("Variance() = %v, want 0.5", g.Variance())
	}

	p := PointMass(7)
	if p.Mean() != 7 {
		t.Errorf("point mass Mean() = %v, want 7", p.Mean())
	}
	if p.Variance() != 0 {
		t.Errorf("point mass Variance() = %v, want 0", p.Variance())
	}

	u := Uninformative()
	if !math.IsInf(u.Variance(), 1) {
		t.Errorf("uninformative Variance() = %v, want +Inf", u.Variance())
	}
}

func TestNewGaussianFloorsVariance(t *testing.T) {
	g := NewGaussian(1, 0)
	if !g.IsProper() {
		t.Fatal("zero-variance input should still produce a proper belief")
	}
	if g.Variance() < DefaultVarianceFloor {
		t.Errorf("Variance() = %v, want >= %v", g.Variance(), DefaultVarianceFloor)
	}
}

func TestLogDensity(t *testing.T) {
	// Standard normal at its mean.
	want := -0.5 * math.Log(2*math.Pi)
	got := NewGaussian(0, 1).LogDensity(0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("LogDensity(0) = %v, want %v", got, want)
	}

	// Uninformative is a multiplicative no-op.
	if got := Uninformative().LogDensity(5); got != 0 {
		t.Errorf("uninformative LogDensity = %v, want 0", got)
	}

	// Degenerate approximated by a narrow Gaussian: peaked at the point,
	// collapsing away from it.
	p := PointMass(1)
	if p.LogDensity(1) <= p.LogDensity(1.1) {
		t.Error("degenerate LogDensity should peak at the point value")
	}
}

func TestMultiply(t *testing.T) {
	a := NewGaussian(0, 1)
	b := NewGaussian(2, 1)
	c := Multiply(a, b)
	if math.Abs(c.Mean()-1) > 1e-12 {
		t.Errorf("product mean = %v, want 1", c.Mean())
	}
	if math.Abs(c.Variance()-0.5) > 1e-12 {
		t.Errorf("product variance = %v, want 0.5", c.Variance())
	}

	// A point mass absorbs anything.
	if got := Multiply(PointMass(3), b); !got.IsDegenerate() || got.Point != 3 {
		t.Errorf("Multiply(point, proper) = %+v, want point mass at 3", got)
	}
}

func TestDivide(t *testing.T) {
	marginal := NewGaussian(1, 0.5)
	cavity := NewGaussian(0, 1)
	msg := Divide(marginal, cavity, false)
	// Multiplying the message back into the cavity must reproduce the marginal.
	back := Multiply(cavity, msg)
	if math.Abs(back.Mean()-marginal.Mean()) > 1e-9 {
		t.Errorf("round-trip mean = %v, want %v", back.Mean(), marginal.Mean())
	}
	if math.Abs(back.Variance()-marginal.Variance()) > 1e-9 {
		t.Errorf("round-trip variance = %v, want %v", back.Variance(), marginal.Variance())
	}
}

func TestDivideForceProper(t *testing.T) {
	// Cavity carries more precision than the marginal: naive subtraction
	// would go negative.
	marginal := NewGaussian(1, 1)
	cavity := NewGaussian(1, 0.5)
	msg := Divide(marginal, cavity, true)
	if msg.Precision <= 0 {
		t.Fatalf("forced-proper precision = %v, want > 0", msg.Precision)
	}
	if math.Abs(msg.Mean()-1) > 1e-9 {
		t.Errorf("forced-proper mean = %v, want 1", msg.Mean())
	}
}
