package recorder

import "NoteValuator/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordValuation(_ *model.Valuation) error         { return nil }
func (n *NoopRecorder) LatestValue(_ string) (float64, bool, error)      { return 0, false, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
