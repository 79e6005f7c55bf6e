package pricing

import (
	"fmt"
	"math"

	"NoteValuator/internal/model"
)

// PathSimulator generates price paths under risk-neutral geometric Brownian
// motion using the exact log-Euler step
//
//	S[i] = S[i-1] * exp((r - sigma^2/2) dt + sigma sqrt(dt) Z).
type PathSimulator struct{}

// Simulate writes one path of Steps+1 prices into buf (reallocated if too
// small) and returns it. path[0] is S0. src may be nil when sigma is zero.
func (PathSimulator) Simulate(p model.SimulationParameters, src NormalSource, buf []float64) ([]float64, error) {
	if err := validateDiffusion(p); err != nil {
		return nil, err
	}
	if p.Sigma > 0 && src == nil {
		return nil, fmt.Errorf("%w: normal source required when sigma > 0", model.ErrInvalidParameter)
	}

	n := p.Steps
	if cap(buf) < n+1 {
		buf = make([]float64, n+1)
	}
	path := buf[:n+1]

	dt := p.T / float64(n)
	drift := (p.R - 0.5*p.Sigma*p.Sigma) * dt
	vol := p.Sigma * math.Sqrt(dt)

	path[0] = p.S0
	for i := 1; i <= n; i++ {
		shock := 0.0
		if vol > 0 {
			shock = vol * src.Rand()
		}
		s := path[i-1] * math.Exp(drift+shock)
		if math.IsInf(s, 0) || math.IsNaN(s) || s <= 0 {
			return nil, fmt.Errorf("%w: price %v at step %d", model.ErrNumericOverflow, s, i)
		}
		path[i] = s
	}
	return path, nil
}

func validateDiffusion(p model.SimulationParameters) error {
	if p.Steps <= 0 {
		return fmt.Errorf("%w: step count must be positive, got %d", model.ErrInvalidParameter, p.Steps)
	}
	if !(p.T > 0) || math.IsInf(p.T, 0) {
		return fmt.Errorf("%w: T must be positive and finite, got %v", model.ErrInvalidParameter, p.T)
	}
	if !(p.Sigma >= 0) || math.IsInf(p.Sigma, 0) {
		return fmt.Errorf("%w: sigma must be non-negative and finite, got %v", model.ErrInvalidParameter, p.Sigma)
	}
	if !(p.S0 > 0) || math.IsInf(p.S0, 0) {
		return fmt.Errorf("%w: S0 must be positive and finite, got %v", model.ErrInvalidParameter, p.S0)
	}
	if math.IsNaN(p.R) || math.IsInf(p.R, 0) {
		return fmt.Errorf("%w: r must be finite, got %v", model.ErrInvalidParameter, p.R)
	}
	return nil
}
