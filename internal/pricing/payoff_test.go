package pricing

import (
	"errors"
	"math"
	"testing"

	"NoteValuator/internal/model"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestTieredPayoff_Boundaries(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	s0 := 100.0
	tests := []struct {
		final float64
		want  float64
		label string
	}{
		{250, 250, "upside participation"},
		{1.6 * s0, 1.6 * s0, "upside participation"},
		{159.99, 160, "capped coupon"},
		{s0, s0 + 0.6*s0, "capped coupon"},
		{99.99, s0, "principal protection"},
		{0.8 * s0, s0, "principal protection"},
		{79.99, 79.99, DownsideLabel},
		{10, 10, DownsideLabel},
	}
	for _, tt := range tests {
		got := pay.Evaluate(tt.final, s0, 80)
		if got != tt.want {
			t.Errorf("final %.2f: expected payoff %v, got %v", tt.final, tt.want, got)
		}
		if label := pay.TierLabel(tt.final, s0); label != tt.label {
			t.Errorf("final %.2f: expected tier %q, got %q", tt.final, tt.label, label)
		}
	}
}

func TestTieredPayoff_ContinuousAtUpsideLevel(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	s0 := 100.0
	upside := pay.Tiers[0].Payoff(1.6*s0, s0)
	plateau := pay.Tiers[1].Payoff(1.6*s0, s0)
	if upside != plateau {
		t.Errorf("expected continuity at 1.6*S0: upside %v, plateau %v", upside, plateau)
	}
}

func TestTieredPayoff_Monotone(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	s0 := 100.0
	prev := pay.Evaluate(0.01, s0, 0)
	for final := 0.02; final < 300; final += 0.01 {
		cur := pay.Evaluate(final, s0, 0)
		if cur < prev {
			t.Fatalf("payoff decreased at %.2f: %v -> %v", final, prev, cur)
		}
		if final >= s0 && final < 1.6*s0 && cur != 1.6*s0 {
			t.Fatalf("expected flat coupon at %.2f, got %v", final, cur)
		}
		prev = cur
	}
}

func TestTieredPayoff_BarrierIgnored(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	for _, final := range []float64{50, 85, 120, 200} {
		if pay.Evaluate(final, 100, 80) != pay.Evaluate(final, 100, 1e9) {
			t.Errorf("barrier changed payoff at %v", final)
		}
	}
}

// quadratureValue integrates the payoff against the lognormal terminal density,
// split at the tier boundaries so each piece is smooth.
func quadratureValue(pay *TieredPayoff, p model.SimulationParameters) float64 {
	sd := p.Sigma * math.Sqrt(p.T)
	mu := (p.R - 0.5*p.Sigma*p.Sigma) * p.T
	terminal := func(z float64) float64 { return p.S0 * math.Exp(mu+sd*z) }
	f := func(z float64) float64 {
		return pay.Evaluate(terminal(z), p.S0, p.Barrier) * distuv.UnitNormal.Prob(z)
	}
	cuts := []float64{-12}
	for _, level := range []float64{0.8, 1.0, 1.6} {
		cuts = append(cuts, (math.Log(level)-mu)/sd)
	}
	cuts = append(cuts, 12)

	var total float64
	for i := 1; i < len(cuts); i++ {
		total += quad.Fixed(f, cuts[i-1], cuts[i], 200, nil, 0)
	}
	return math.Exp(-p.R*p.T) * total
}

func TestClosedFormValue_MatchesQuadrature(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	cases := []model.SimulationParameters{
		{S0: 100, T: 1.75, R: 0.035, Sigma: 0.15, Barrier: 80, Paths: 1, Steps: 1},
		{S0: 50, T: 0.5, R: 0.01, Sigma: 0.4, Paths: 1, Steps: 1},
		{S0: 100, T: 3, R: -0.005, Sigma: 0.25, Paths: 1, Steps: 1},
	}
	for _, p := range cases {
		got, err := pay.ClosedFormValue(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := quadratureValue(pay, p)
		if math.Abs(got-want) > 1e-7*p.S0 {
			t.Errorf("%+v: closed form %.10f, quadrature %.10f", p, got, want)
		}
	}
}

func TestClosedFormValue_ZeroVolatility(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	p := model.SimulationParameters{S0: 100, T: 2, R: 0.05, Sigma: 0, Paths: 1, Steps: 1}
	got, err := pay.ClosedFormValue(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// forward 110.5 sits on the coupon plateau
	want := math.Exp(-0.1) * 160
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClosedFormValue_InvalidParameters(t *testing.T) {
	pay := NewTieredPayoff(DefaultTerms())
	_, err := pay.ClosedFormValue(model.SimulationParameters{S0: 100, T: 0, Sigma: 0.2, Steps: 1})
	if !errors.Is(err, model.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
