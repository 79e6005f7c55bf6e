package calculator

import (
	"fmt"
	"math"
	"sort"

	"NoteValuator/internal/model"
)

// TradingDaysPerYear is the annualization factor for daily returns.
const TradingDaysPerYear = 252

// SortSeries validates every observation and returns a copy ordered by time.
// Observations sharing a timestamp keep their input order.
func SortSeries(points []model.PricePoint) ([]model.PricePoint, error) {
	for i, p := range points {
		if p.Time.IsZero() {
			return nil, fmt.Errorf("%w: observation %d has no timestamp", model.ErrInvalidRecord, i)
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, fmt.Errorf("%w: observation %d (%s) is not a number", model.ErrInvalidPrice, i, p.Time.Format("2006-01-02"))
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("%w: observation %d (%s) is %v, must be positive", model.ErrInvalidPrice, i, p.Time.Format("2006-01-02"), p.Price)
		}
	}
	sorted := make([]model.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return sorted, nil
}

// DailyReturns computes simple returns (P_i - P_{i-1}) / P_{i-1} of an
// already ordered series. The first observation yields no return.
func DailyReturns(points []model.PricePoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	returns := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Price
		returns[i-1] = (points[i].Price - prev) / prev
	}
	return returns
}
