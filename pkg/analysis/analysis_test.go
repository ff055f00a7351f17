package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

func tensor2(rows, cols int, values ...float64) *model.Tensor2 {
	return model.Tensor2FromFlat(rows, cols, values)
}

func TestConsistentAccuracyAllCorrect(t *testing.T) {
	preds := tensor2(2, 2, 0.6, 0.4, 0.3, 0.7)
	defer preds.Release()
	targets := tensor2(2, 2, 1, 0, 0, 1)
	defer targets.Release()

	acc, err := ConsistentAccuracy(preds, targets)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestConsistentAccuracyPartial(t *testing.T) {
	preds := tensor2(1, 4, 0.9, 0.9, 0.1, 0.1)
	defer preds.Release()
	targets := tensor2(1, 4, 1, 0, 0, 1)
	defer targets.Release()

	acc, err := ConsistentAccuracy(preds, targets)
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)
}

func TestConsistentAccuracyShapeMismatch(t *testing.T) {
	preds := tensor2(1, 2, 0.5, 0.5)
	defer preds.Release()
	targets := tensor2(2, 2, 1, 0, 0, 1)
	defer targets.Release()

	_, err := ConsistentAccuracy(preds, targets)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestConsistentAccuracyEmpty(t *testing.T) {
	preds := tensor2(0, 0)
	defer preds.Release()
	targets := tensor2(0, 0)
	defer targets.Release()

	acc, err := ConsistentAccuracy(preds, targets)
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)
}

func TestTrackDayAccuracy(t *testing.T) {
	trackIDs := []string{"t1", "t2"}
	tracks := map[string]model.Track{
		"t1": {ID: "t1", Name: "Alpha"},
		"t2": {ID: "t2", Name: "Beta"},
	}

	// One sample, horizon 2. t1 fully correct, t2 fully wrong.
	preds := tensor2(1, 4, 0.9, 0.1, 0.2, 0.8)
	defer preds.Release()
	targets := tensor2(1, 4, 1, 0, 1, 0)
	defer targets.Release()

	byTrack, byDay, err := TrackDayAccuracy(preds, targets, trackIDs, tracks, 2)
	require.NoError(t, err)

	require.Len(t, byTrack, 2)
	assert.Equal(t, "Alpha", byTrack[0].Name) // ranked descending
	assert.Equal(t, 100.0, byTrack[0].Accuracy)
	assert.Equal(t, "Beta", byTrack[1].Name)
	assert.Equal(t, 0.0, byTrack[1].Accuracy)

	require.Len(t, byDay, 2)
	assert.Equal(t, 50.0, byDay[0])
	assert.Equal(t, 50.0, byDay[1])
}

func TestTrackDayAccuracyColumnMismatch(t *testing.T) {
	preds := tensor2(1, 3, 0.5, 0.5, 0.5)
	defer preds.Release()
	targets := tensor2(1, 3, 1, 1, 1)
	defer targets.Release()

	_, _, err := TrackDayAccuracy(preds, targets, []string{"t1", "t2"}, nil, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDetectBreakoutsRisingTrend(t *testing.T) {
	trackIDs := []string{"t1"}

	preds := tensor2(1, 3, 0.2, 0.5, 0.8)
	defer preds.Release()

	breakouts, err := DetectBreakouts(preds, trackIDs, nil, 3)
	require.NoError(t, err)
	require.Len(t, breakouts, 1)

	b := breakouts[0]
	assert.InDelta(t, 1.5, b.Score, 1e-12)
	assert.InDelta(t, 0.5, b.Confidence, 1e-12)
	assert.InDelta(t, 0.6, b.Trend, 1e-12)
	// Strong score but middling confidence stays a speculative call.
	assert.Equal(t, RiskHigh, b.RiskLevel)
}

func TestDetectBreakoutsRiskGrades(t *testing.T) {
	trackIDs := []string{"low", "medium", "falling"}

	preds := tensor2(1, 9,
		0.60, 0.75, 0.90, // score 0.75, confidence 0.75 -> low
		0.60, 0.62, 0.64, // score 0.10, confidence 0.62 -> medium
		0.80, 0.50, 0.20, // score -1.5 -> very-high
	)
	defer preds.Release()

	breakouts, err := DetectBreakouts(preds, trackIDs, nil, 3)
	require.NoError(t, err)
	require.Len(t, breakouts, 3)

	// Ranked descending by score.
	assert.Equal(t, "low", breakouts[0].TrackID)
	assert.Equal(t, RiskLow, breakouts[0].RiskLevel)
	assert.Equal(t, "medium", breakouts[1].TrackID)
	assert.Equal(t, RiskMedium, breakouts[1].RiskLevel)
	assert.Equal(t, "falling", breakouts[2].TrackID)
	assert.Equal(t, RiskVeryHigh, breakouts[2].RiskLevel)
}

func TestDetectBreakoutsShortHorizon(t *testing.T) {
	preds := tensor2(1, 2, 0.5, 0.5)
	defer preds.Release()

	_, err := DetectBreakouts(preds, []string{"t1"}, nil, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrComputation)
}

func TestTopBreakouts(t *testing.T) {
	breakouts := []Breakout{
		{TrackID: "a", Score: 1.2},
		{TrackID: "b", Score: 0.4},
		{TrackID: "c", Score: 0.1},
		{TrackID: "d", Score: -0.5},
	}

	top := TopBreakouts(breakouts, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].TrackID)
	assert.Equal(t, "c", top[2].TrackID)

	assert.Len(t, TopBreakouts(breakouts, 2), 2)
	assert.Empty(t, TopBreakouts([]Breakout{{Score: -1}}, 3))
}

// echoPredictor returns a fixed prediction tensor copy per call.
type echoPredictor struct {
	preds *model.Tensor2
}

func (p *echoPredictor) Predict(ctx context.Context, inputs *model.Tensor3) (*model.Tensor2, error) {
	return p.preds.Clone(), nil
}

// failingPredictor always errors.
type failingPredictor struct{}

func (failingPredictor) Predict(ctx context.Context, inputs *model.Tensor3) (*model.Tensor2, error) {
	return nil, errors.New("model unavailable")
}

func TestFeatureImportanceConstantPredictor(t *testing.T) {
	set := model.FeatureSet{model.FeatureStreams, model.FeatureEnergy}
	trackIDs := []string{"t1"}

	inputs := model.NewTensor3(2, 2, 2)
	defer inputs.Release()
	targets := tensor2(2, 3, 1, 1, 1, 1, 1, 1)
	defer targets.Release()
	fixed := tensor2(2, 3, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9)
	defer fixed.Release()

	e := NewEvaluator(&echoPredictor{preds: fixed}, set, trackIDs, nil, 3)

	imp, err := e.FeatureImportance(context.Background(), inputs, targets)
	require.NoError(t, err)
	require.Len(t, imp, 2)

	// The predictor ignores its inputs, so no shuffle can move
	// accuracy and every score floors at zero.
	for _, i := range imp {
		assert.Equal(t, 0.0, i.Score)
		assert.NotEmpty(t, i.Name)
	}
}

func TestFeatureImportanceNoPredictor(t *testing.T) {
	e := NewEvaluator(nil, model.SimplifiedFeatureSet(), []string{"t1"}, nil, 3)

	inputs := model.NewTensor3(1, 1, 5)
	defer inputs.Release()
	targets := tensor2(1, 3, 1, 1, 1)
	defer targets.Release()

	_, err := e.FeatureImportance(context.Background(), inputs, targets)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestEvaluateDegradesImportanceIndependently(t *testing.T) {
	trackIDs := []string{"t1"}
	set := model.FeatureSet{model.FeatureStreams}

	preds := tensor2(1, 3, 0.6, 0.7, 0.8)
	defer preds.Release()
	targets := tensor2(1, 3, 1, 1, 1)
	defer targets.Release()
	inputs := model.NewTensor3(1, 7, 1)
	defer inputs.Release()

	e := NewEvaluator(failingPredictor{}, set, trackIDs, nil, 3)

	report, err := e.Evaluate(context.Background(), "run-1", inputs, preds, targets)
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 1.0, report.ConsistentAccuracy)
	require.Len(t, report.TrackAccuracy, 1)
	assert.Equal(t, 100.0, report.TrackAccuracy[0].Accuracy)
	require.Len(t, report.DayAccuracy, 3)

	// Importance degraded, breakouts still present.
	assert.Empty(t, report.Importance)
	require.Len(t, report.Breakouts, 1)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "feature importance degraded")
}

func TestEvaluateSkipsImportanceWithoutPredictor(t *testing.T) {
	trackIDs := []string{"t1"}

	preds := tensor2(1, 3, 0.6, 0.7, 0.8)
	defer preds.Release()
	targets := tensor2(1, 3, 1, 1, 1)
	defer targets.Release()

	e := NewEvaluator(nil, model.FeatureSet{model.FeatureStreams}, trackIDs, nil, 3)

	report, err := e.Evaluate(context.Background(), "run-2", nil, preds, targets)
	require.NoError(t, err)
	assert.Empty(t, report.Importance)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "skipped")
}
