package model

import "time"

// PricePoint is a single dated observation of the underlying.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries holds the historical observations used for calibration.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	Excluded  int // source rows without a price, left out of Points
	Source    string
	FetchedAt time.Time
}

// VolatilityPoint is an annualized volatility observation labelled by date.
type VolatilityPoint struct {
	Time       time.Time
	Volatility float64
}
