package calculator

import (
	"fmt"
	"math"

	"NoteValuator/internal/model"

	"gonum.org/v1/gonum/stat"
)

// AnnualizedVolatility estimates sigma from a historical price series: sort by
// date, take daily simple returns, compute their sample standard deviation and
// scale by sqrt(252).
//
// Fewer than two observations fail with ErrInsufficientData. Two observations
// yield a single return, whose sample deviation is undefined, and fail the
// same way.
func AnnualizedVolatility(points []model.PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 price observations, got %d", model.ErrInsufficientData, len(points))
	}
	sorted, err := SortSeries(points)
	if err != nil {
		return 0, err
	}
	returns := DailyReturns(sorted)
	if len(returns) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 daily returns, got %d", model.ErrInsufficientData, len(returns))
	}
	return annualize(returns), nil
}

// RollingVolatility computes the annualized sample deviation of returns over a
// trailing window. Each point is labelled with the date of the last return in
// its window.
func RollingVolatility(points []model.PricePoint, window int) ([]model.VolatilityPoint, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: rolling window must be at least 2, got %d", model.ErrInvalidParameter, window)
	}
	sorted, err := SortSeries(points)
	if err != nil {
		return nil, err
	}
	returns := DailyReturns(sorted)
	if len(returns) < window {
		return nil, fmt.Errorf("%w: need %d daily returns for window, got %d", model.ErrInsufficientData, window, len(returns))
	}

	out := make([]model.VolatilityPoint, 0, len(returns)-window+1)
	for end := window; end <= len(returns); end++ {
		out = append(out, model.VolatilityPoint{
			// returns[k] belongs to sorted[k+1]
			Time:       sorted[end].Time,
			Volatility: annualize(returns[end-window : end]),
		})
	}
	return out, nil
}

func annualize(returns []float64) float64 {
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
}
