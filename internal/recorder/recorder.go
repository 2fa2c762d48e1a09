package recorder

import "SpreadSentinel/internal/model"

// Recorder persists screening and prediction history for run-over-run
// comparison.
type Recorder interface {
	RecordScreening(run *model.ScreeningRun) error
	RecordPrediction(p *model.Prediction) error
	RecentRuns(n int) ([]model.ScreeningRun, error)
	Close() error
}
