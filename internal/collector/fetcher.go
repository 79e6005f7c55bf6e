package collector

import (
	"context"
	"time"

	"NoteValuator/internal/model"
)

// History is the result of one fetch. Excluded counts source rows that had no
// price at all (market holidays) and so never became observations.
type History struct {
	Points   []model.PricePoint
	Excluded int
}

// Fetcher defines the interface for loading historical prices of the underlying.
// A zero from or to leaves that side of the window open.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, from, to time.Time) (History, error)
	Name() string
}

// inWindow reports whether t falls on a day within [from, to].
func inWindow(t, from, to time.Time) bool {
	day := truncateDay(t)
	if !from.IsZero() && day.Before(truncateDay(from)) {
		return false
	}
	if !to.IsZero() && day.After(truncateDay(to)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
