package collector

import (
	"context"
	"fmt"
	"time"

	"NoteValuator/internal/model"

	log "github.com/sirupsen/logrus"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Points   []model.PricePoint
	Excluded int
	Err      error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, from, to time.Time) (History, error) {
	if m.Err != nil {
		return History{}, m.Err
	}
	out := make([]model.PricePoint, 0, len(m.Points))
	for _, p := range m.Points {
		if inWindow(p.Time, from, to) {
			out = append(out, p)
		}
	}
	return History{Points: out, Excluded: m.Excluded}, nil
}

// Collector loads the calibration series for one symbol.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol}
}

// Collect fetches the price history for the calibration window [from, to].
func (c *Collector) Collect(ctx context.Context, from, to time.Time) (*model.PriceSeries, error) {
	h, err := c.Fetcher.FetchHistory(ctx, c.Symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	series := &model.PriceSeries{
		Symbol:    c.Symbol,
		Points:    h.Points,
		Excluded:  h.Excluded,
		Source:    c.Fetcher.Name(),
		FetchedAt: time.Now(),
	}
	log.WithFields(log.Fields{
		"symbol":   c.Symbol,
		"source":   series.Source,
		"from":     formatDay(from),
		"to":       formatDay(to),
		"rows":     len(h.Points),
		"excluded": h.Excluded,
	}).Info("price history collected")
	return series, nil
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format("2006-01-02")
}
