package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

func TestNormalize(t *testing.T) {
	p := Params{Min: 10, Max: 20}
	assert.Equal(t, 0.0, Normalize(10, p))
	assert.Equal(t, 1.0, Normalize(20, p))
	assert.Equal(t, 0.5, Normalize(15, p))

	// Out-of-range values are not clamped.
	assert.Equal(t, 1.5, Normalize(25, p))
	assert.Equal(t, -0.5, Normalize(5, p))
}

func TestNormalizeDegenerateRange(t *testing.T) {
	p := Params{Min: 7, Max: 7}
	assert.Equal(t, 0.5, Normalize(7, p))
	assert.Equal(t, 0.5, Normalize(100, p))
}

func TestTrainDates(t *testing.T) {
	dates := []string{"d1", "d2", "d3", "d4", "d5"}
	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, TrainDates(dates, 0.8))
	assert.Empty(t, TrainDates(dates, 0))
}

func TestFitUsesTrainPeriodOnly(t *testing.T) {
	set := model.FeatureSet{model.FeatureStreams}
	records := []model.Record{
		{Date: "2025-01-01", TrackID: "t1", Streams: 1},
		{Date: "2025-01-02", TrackID: "t1", Streams: 2},
		{Date: "2025-01-03", TrackID: "t1", Streams: 3},
		{Date: "2025-01-04", TrackID: "t1", Streams: 4},
		{Date: "2025-01-05", TrackID: "t1", Streams: 100}, // test period
	}

	params := Fit(records, []string{"t1"}, set, 0.8)

	p := params["t1"][model.FeatureStreams]
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 4.0, p.Max)
}

func TestFitIgnoresFutureRows(t *testing.T) {
	// Appending one more future-date row must not move the fitted
	// parameters: the extra date lands outside the train cut.
	set := model.FeatureSet{model.FeatureStreams}
	records := []model.Record{
		{Date: "2025-01-01", TrackID: "t1", Streams: 1},
		{Date: "2025-01-02", TrackID: "t1", Streams: 2},
		{Date: "2025-01-03", TrackID: "t1", Streams: 3},
		{Date: "2025-01-04", TrackID: "t1", Streams: 4},
		{Date: "2025-01-05", TrackID: "t1", Streams: 100},
	}

	before := Fit(records, []string{"t1"}, set, 0.8)["t1"][model.FeatureStreams]

	records = append(records, model.Record{Date: "2025-01-06", TrackID: "t1", Streams: 1000})
	after := Fit(records, []string{"t1"}, set, 0.8)["t1"][model.FeatureStreams]

	assert.Equal(t, before, after)
}

func TestFitFallbackForMissingTrainObservations(t *testing.T) {
	set := model.FeatureSet{model.FeatureStreams}

	// t2 only appears on the last date, outside the train period.
	records := []model.Record{
		{Date: "2025-01-01", TrackID: "t1", Streams: 5},
		{Date: "2025-01-02", TrackID: "t1", Streams: 6},
		{Date: "2025-01-03", TrackID: "t1", Streams: 7},
		{Date: "2025-01-04", TrackID: "t1", Streams: 8},
		{Date: "2025-01-05", TrackID: "t2", Streams: 9},
	}

	params := Fit(records, []string{"t1", "t2"}, set, 0.8)

	p := params["t2"][model.FeatureStreams]
	assert.Equal(t, Params{Min: 0, Max: 1}, p)
}

func TestApply(t *testing.T) {
	set := model.FeatureSet{model.FeatureStreams}
	records := []model.Record{
		{Date: "2025-01-01", TrackID: "t1", Streams: 10},
		{Date: "2025-01-02", TrackID: "t1", Streams: 20},
		{Date: "2025-01-01", TrackID: "ghost", Streams: 99},
	}
	params := NormParams{
		"t1": {model.FeatureStreams: Params{Min: 10, Max: 20}},
	}

	Apply(records, params, set)

	require.NotNil(t, records[0].Normalized)
	assert.Equal(t, 0.0, records[0].NormalizedValue(model.FeatureStreams))
	assert.Equal(t, 1.0, records[1].NormalizedValue(model.FeatureStreams))

	// Tracks without parameters degrade to the constant midpoint.
	assert.Equal(t, 0.5, records[2].NormalizedValue(model.FeatureStreams))
}
