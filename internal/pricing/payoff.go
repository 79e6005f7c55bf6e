package pricing

import (
	"math"

	"NoteValuator/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// PayoffEvaluator maps the terminal price of a path to the note's cash payoff.
type PayoffEvaluator interface {
	Evaluate(final, s0, barrier float64) float64
}

// NoteTerms are the tier parameters of the note, expressed relative to S0.
type NoteTerms struct {
	UpsideLevel     float64 // full participation at or above this level
	Participation   float64 // participation rate above S0 in the upside tier
	Coupon          float64 // flat coupon between S0 and UpsideLevel
	ProtectionLevel float64 // principal is returned at or above this level
}

// DefaultTerms returns the 160% / 100% / 60% / 80% structure.
func DefaultTerms() NoteTerms {
	return NoteTerms{
		UpsideLevel:     1.6,
		Participation:   1.0,
		Coupon:          0.6,
		ProtectionLevel: 0.8,
	}
}

// PayoffTier is one row of the payoff table. Payoff(final, s0) equals
// a + b*final where (a, b) = Linear(s0).
type PayoffTier struct {
	Label    string
	MinLevel float64 // inclusive lower bound as a multiple of S0
	Payoff   func(final, s0 float64) float64
	Linear   func(s0 float64) (a, b float64)
}

// DownsideLabel names the pass-through region below the lowest tier.
const DownsideLabel = "downside pass-through"

// TieredPayoff evaluates its tiers top-down; the first tier whose bound the
// terminal price reaches wins, so ties go to the higher tier.
type TieredPayoff struct {
	Tiers []PayoffTier
}

// NewTieredPayoff builds the payoff table for the given terms.
func NewTieredPayoff(terms NoteTerms) *TieredPayoff {
	return &TieredPayoff{Tiers: []PayoffTier{
		{
			Label:    "upside participation",
			MinLevel: terms.UpsideLevel,
			Payoff:   func(final, s0 float64) float64 { return s0 + (final-s0)*terms.Participation },
			Linear:   func(s0 float64) (float64, float64) { return s0 - s0*terms.Participation, terms.Participation },
		},
		{
			Label:    "capped coupon",
			MinLevel: 1.0,
			Payoff:   func(_, s0 float64) float64 { return s0 + s0*terms.Coupon },
			Linear:   func(s0 float64) (float64, float64) { return s0 + s0*terms.Coupon, 0 },
		},
		{
			Label:    "principal protection",
			MinLevel: terms.ProtectionLevel,
			Payoff:   func(_, s0 float64) float64 { return s0 },
			Linear:   func(s0 float64) (float64, float64) { return s0, 0 },
		},
	}}
}

// Evaluate returns the payoff for a terminal price. The barrier is accepted
// for interface stability and is not consulted: the note is terminal-only.
func (t *TieredPayoff) Evaluate(final, s0, _ float64) float64 {
	for _, tier := range t.Tiers {
		if final >= tier.MinLevel*s0 {
			return tier.Payoff(final, s0)
		}
	}
	return final
}

// TierLabel reports which tier a terminal price falls into.
func (t *TieredPayoff) TierLabel(final, s0 float64) string {
	for _, tier := range t.Tiers {
		if final >= tier.MinLevel*s0 {
			return tier.Label
		}
	}
	return DownsideLabel
}

// ClosedFormValue is the discounted risk-neutral expectation of the payoff
// when S_T is lognormal with the parameters' drift and volatility. It is the
// limit the Monte Carlo estimate converges to.
func (t *TieredPayoff) ClosedFormValue(p model.SimulationParameters) (float64, error) {
	if err := validateDiffusion(p); err != nil {
		return 0, err
	}
	discount := math.Exp(-p.R * p.T)
	forward := p.S0 * math.Exp(p.R*p.T)
	if p.Sigma == 0 {
		return discount * t.Evaluate(forward, p.S0, p.Barrier), nil
	}

	sd := p.Sigma * math.Sqrt(p.T)
	// P(S_T >= k) and E[S_T; S_T >= k]
	probAbove := func(k float64) float64 {
		if math.IsInf(k, 1) {
			return 0
		}
		if k <= 0 {
			return 1
		}
		return distuv.UnitNormal.CDF((math.Log(forward/k) - 0.5*sd*sd) / sd)
	}
	meanAbove := func(k float64) float64 {
		if math.IsInf(k, 1) {
			return 0
		}
		if k <= 0 {
			return forward
		}
		return forward * distuv.UnitNormal.CDF((math.Log(forward/k)+0.5*sd*sd)/sd)
	}

	var expected float64
	upper := math.Inf(1)
	for _, tier := range t.Tiers {
		lower := tier.MinLevel * p.S0
		if lower >= upper {
			continue
		}
		a, b := tier.Linear(p.S0)
		expected += a*(probAbove(lower)-probAbove(upper)) + b*(meanAbove(lower)-meanAbove(upper))
		upper = lower
	}
	expected += meanAbove(0) - meanAbove(upper)

	v := discount * expected
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, model.ErrNumericOverflow
	}
	return v, nil
}
