package config

import "testing"

func TestQuadratureSteps(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"unset", "", 0},
		{"even", "120", 120},
		{"odd forced even", "121", 122},
		{"garbage", "abc", 0},
		{"negative", "-4", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QUAD_STEPS", tt.env)
			if got := QuadratureSteps(); got != tt.want {
				t.Errorf("QuadratureSteps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRateLimitDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	if got := RateLimitRPS(); got != 50 {
		t.Errorf("RateLimitRPS() = %v, want 50", got)
	}
	if got := RateLimitBurst(); got != 100 {
		t.Errorf("RateLimitBurst() = %v, want 100", got)
	}
}
