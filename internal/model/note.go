package model

import (
	"fmt"
	"math"
	"time"
)

// SimulationParameters are the inputs of one valuation run. They are not
// modified while a run is in progress.
type SimulationParameters struct {
	S0      float64 // initial underlying price
	T       float64 // time to maturity in years
	R       float64 // continuously compounded risk-free rate
	Sigma   float64 // annualized volatility
	Barrier float64 // barrier level; carried through but not used by the payoff
	Paths   int     // M
	Steps   int     // N
}

// Validate checks the parameters against their domains.
func (p SimulationParameters) Validate() error {
	if !(p.S0 > 0) || math.IsInf(p.S0, 0) {
		return fmt.Errorf("%w: S0 must be positive and finite, got %v", ErrInvalidParameter, p.S0)
	}
	if !(p.T > 0) || math.IsInf(p.T, 0) {
		return fmt.Errorf("%w: T must be positive and finite, got %v", ErrInvalidParameter, p.T)
	}
	if math.IsNaN(p.R) || math.IsInf(p.R, 0) {
		return fmt.Errorf("%w: r must be finite, got %v", ErrInvalidParameter, p.R)
	}
	if !(p.Sigma >= 0) || math.IsInf(p.Sigma, 0) {
		return fmt.Errorf("%w: sigma must be non-negative and finite, got %v", ErrInvalidParameter, p.Sigma)
	}
	if p.Paths <= 0 {
		return fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidParameter, p.Paths)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("%w: step count must be positive, got %d", ErrInvalidParameter, p.Steps)
	}
	return nil
}

// Estimate is the raw output of a Monte Carlo batch.
type Estimate struct {
	PresentValue float64
	StdError     float64 // standard error of PresentValue
	MeanPayoff   float64 // undiscounted sample mean
	Discount     float64 // exp(-rT)
	Paths        int
	Seed         uint64
}

// Valuation is the result of one configured valuation run.
type Valuation struct {
	RunID           string
	Name            string
	Symbol          string
	ValuationDate   time.Time
	CalibrationFrom time.Time
	CalibrationTo   time.Time
	Observations    int
	Excluded        int // calibration rows dropped for having no price
	Params          SimulationParameters
	Estimate        Estimate
	ClosedForm      float64
	ForwardTier     string  // payoff tier of the risk-neutral forward S0*exp(rT)
	PreviousValue   float64 // last recorded present value under Name
	HasPrevious     bool
	Elapsed         time.Duration
	CreatedAt       time.Time
}
