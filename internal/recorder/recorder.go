package recorder

import "NoteValuator/internal/model"

// Recorder persists valuation summaries. Simulated paths are never stored.
type Recorder interface {
	RecordValuation(v *model.Valuation) error
	// LatestValue returns the most recent present value recorded under name.
	LatestValue(name string) (float64, bool, error)
	Close() error
}
