package recorder

import "SpreadSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScreening(_ *model.ScreeningRun) error    { return nil }
func (n *NoopRecorder) RecordPrediction(_ *model.Prediction) error     { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]model.ScreeningRun, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                   { return nil }
