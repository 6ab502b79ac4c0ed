package synth

import (
	"math"
	"testing"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestParamCurves(t *testing.T) {
	p := NewParam(5).Apply(1,
		Set(0, 1),
		Lin(0.1, 0.5),
		Exp(0.3, Floor),
	)

	tests := []struct {
		name string
		at   float64
		want float64
	}{
		{"before first point", 0.5, 5},
		{"step point", 1, 1},
		{"halfway linear", 1.05, 0.75},
		{"end of linear", 1.1, 0.5},
		{"halfway exponential", 1.2, 0.5 * math.Sqrt(Floor/0.5)},
		{"held after last", 3, Floor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ValueAt(tt.at); !near(got, tt.want, 1e-9) {
				t.Errorf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestExponentialNeverTargetsZero(t *testing.T) {
	p := NewParam(1).SetValueAtTime(1, 0).ExponentialRampToValueAtTime(0, 1)
	if got := p.ValueAt(1); got != Floor {
		t.Fatalf("ramp to 0 ended at %v, want floor %v", got, Floor)
	}
	for _, at := range []float64{0.25, 0.5, 0.999} {
		if v := p.ValueAt(at); v <= 0 || math.IsNaN(v) {
			t.Errorf("ValueAt(%v) = %v, want positive", at, v)
		}
	}
}

func TestLaterPointsReplaceTrajectory(t *testing.T) {
	// ramp to 0 over 50ms, then a set at 20ms queued afterwards
	p := NewParam(0).Apply(0, Set(0, 1), Lin(0.05, 0))
	p.SetValueAtTime(0.3, 0.02)

	if got := p.ValueAt(0.01); !near(got, 0.8, 1e-9) {
		t.Errorf("before the replacement ValueAt = %v, want 0.8", got)
	}
	for _, at := range []float64{0.02, 0.04, 0.06} {
		if got := p.ValueAt(at); got != 0.3 {
			t.Errorf("ValueAt(%v) = %v, want 0.3", at, got)
		}
	}
	if p.Last() != 0.02 {
		t.Errorf("Last = %v, want 0.02", p.Last())
	}
}
