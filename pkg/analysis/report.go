package analysis

import (
	"context"
	"fmt"

	"github.com/tunogya/crescendo/pkg/model"
)

// Report is the plain-data result of one evaluation, handed to the
// presentation layer and the metrics store. Importance and Breakouts
// may be empty when their analyses degraded; Warnings says why.
type Report struct {
	RunID string `json:"run_id"`

	ConsistentAccuracy float64         `json:"consistent_accuracy"` // 0-1
	TrackAccuracy      []TrackAccuracy `json:"track_accuracy"`      // ranked, percent
	DayAccuracy        []float64       `json:"day_accuracy"`        // per offset, percent

	Importance []Importance `json:"importance,omitempty"`
	Breakouts  []Breakout   `json:"breakouts,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Evaluate composes the full post-training analysis. Accuracy failures
// are fatal; importance and breakout failures degrade independently to
// empty results recorded in Warnings, so the rest of the report still
// renders.
func (e *Evaluator) Evaluate(ctx context.Context, runID string, inputs *model.Tensor3, preds, targets *model.Tensor2) (*Report, error) {
	acc, err := ConsistentAccuracy(preds, targets)
	if err != nil {
		return nil, err
	}

	byTrack, byDay, err := TrackDayAccuracy(preds, targets, e.TrackIDs, e.Tracks, e.Horizon)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:              runID,
		ConsistentAccuracy: acc,
		TrackAccuracy:      byTrack,
		DayAccuracy:        byDay,
	}

	if inputs != nil && e.Predictor != nil {
		imp, err := e.FeatureImportance(ctx, inputs, targets)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("feature importance degraded: %v", err))
		} else {
			report.Importance = imp
		}
	} else {
		report.Warnings = append(report.Warnings, "feature importance skipped: no predictor attached")
	}

	breakouts, err := DetectBreakouts(preds, e.TrackIDs, e.Tracks, e.Horizon)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("breakout detection degraded: %v", err))
	} else {
		report.Breakouts = breakouts
	}

	return report, nil
}
