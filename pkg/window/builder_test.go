package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

// elevenDates returns 11 consecutive chart days.
func elevenDates() []string {
	dates := make([]string, 11)
	for i := range dates {
		dates[i] = fmt.Sprintf("2025-01-%02d", i+1)
	}
	return dates
}

// fullRecords builds one normalized record per (date, track).
func fullRecords(dates []string, trackIDs []string) []model.Record {
	var records []model.Record
	for di, d := range dates {
		for _, id := range trackIDs {
			records = append(records, model.Record{
				Date:    d,
				TrackID: id,
				Streams: float64(100 + di), // strictly rising
				Normalized: map[model.Feature]float64{
					model.FeatureStreams: float64(di) / 10,
				},
			})
		}
	}
	return records
}

func TestBuildExactlyOneSample(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1"}
	records := fullRecords(dates, trackIDs)

	b := NewBuilder(Config{
		WindowSize: 7,
		Horizon:    3,
		Features:   model.FeatureSet{model.FeatureStreams},
	})

	ds, err := b.Build(records, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	// 11 dates, W=7, H=3: only index 7 qualifies as a window end.
	require.Equal(t, 1, ds.Samples())
	assert.Equal(t, dates[7], ds.EndDates[0])

	// The sample covers the 7 dates strictly before the end date.
	samples, steps, width := ds.Inputs.Dims()
	assert.Equal(t, 1, samples)
	assert.Equal(t, 7, steps)
	assert.Equal(t, 1, width)
	assert.Equal(t, 0.0, ds.Inputs.At(0, 0, 0)) // dates[0]
	assert.Equal(t, 0.6, ds.Inputs.At(0, 6, 0)) // dates[6]
}

func TestBuildRisingStreamsTargets(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1"}
	records := fullRecords(dates, trackIDs)

	b := NewBuilder(Config{WindowSize: 7, Horizon: 3, Features: model.FeatureSet{model.FeatureStreams}})
	ds, err := b.Build(records, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	// Streams rise every day, so every forecast offset is positive.
	for k := 0; k < 3; k++ {
		assert.Equal(t, 1.0, ds.Targets.At(0, k))
	}
}

func TestBuildFlatStreamsTargets(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1"}
	records := fullRecords(dates, trackIDs)
	for i := range records {
		records[i].Streams = 100 // equal never counts as growth
	}

	b := NewBuilder(Config{WindowSize: 7, Horizon: 3, Features: model.FeatureSet{model.FeatureStreams}})
	ds, err := b.Build(records, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	for k := 0; k < 3; k++ {
		assert.Equal(t, 0.0, ds.Targets.At(0, k))
	}
}

func TestBuildDropsCandidateOnMissingFutureObservation(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1"}
	records := fullRecords(dates, trackIDs)

	// Remove the observation at dates[8], one of the forecast dates of
	// the sole candidate end.
	var pruned []model.Record
	for _, r := range records {
		if r.Date == dates[8] {
			continue
		}
		pruned = append(pruned, r)
	}

	b := NewBuilder(Config{WindowSize: 7, Horizon: 3, Features: model.FeatureSet{model.FeatureStreams}})
	ds, err := b.Build(pruned, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	assert.Equal(t, 0, ds.Samples())
}

func TestBuildZeroFillsSampleSideGaps(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1"}
	records := fullRecords(dates, trackIDs)

	// Remove an observation inside the sample range only.
	var pruned []model.Record
	for _, r := range records {
		if r.Date == dates[2] {
			continue
		}
		pruned = append(pruned, r)
	}

	b := NewBuilder(Config{WindowSize: 7, Horizon: 3, Features: model.FeatureSet{model.FeatureStreams}})
	ds, err := b.Build(pruned, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	// The candidate survives with the gap zero-filled; shape unchanged.
	require.Equal(t, 1, ds.Samples())
	assert.Equal(t, 0.0, ds.Inputs.At(0, 2, 0))
	assert.Equal(t, 0.1, ds.Inputs.At(0, 1, 0))
}

func TestBuildColumnLayout(t *testing.T) {
	dates := elevenDates()
	trackIDs := []string{"t1", "t2"}

	var records []model.Record
	for di, d := range dates {
		for ti, id := range trackIDs {
			records = append(records, model.Record{
				Date:    d,
				TrackID: id,
				Streams: float64(100 + di),
				Normalized: map[model.Feature]float64{
					model.FeatureStreams: float64(ti),       // 0 or 1
					model.FeatureEnergy:  float64(ti) + 0.5, // 0.5 or 1.5
				},
			})
		}
	}

	b := NewBuilder(Config{
		WindowSize: 7,
		Horizon:    3,
		Features:   model.FeatureSet{model.FeatureStreams, model.FeatureEnergy},
	})
	ds, err := b.Build(records, trackIDs, dates)
	require.NoError(t, err)
	defer ds.Release()

	// Track-major, feature-minor columns.
	assert.Equal(t, 0.0, ds.Inputs.At(0, 0, 0)) // t1 streams
	assert.Equal(t, 0.5, ds.Inputs.At(0, 0, 1)) // t1 energy
	assert.Equal(t, 1.0, ds.Inputs.At(0, 0, 2)) // t2 streams
	assert.Equal(t, 1.5, ds.Inputs.At(0, 0, 3)) // t2 energy

	assert.Equal(t, 2*3, ds.Targets.Cols())
}

func TestBuildNoTracks(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	_, err := b.Build(nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestNewBuilderDefaults(t *testing.T) {
	b := NewBuilder(Config{})
	assert.Equal(t, 7, b.WindowSize)
	assert.Equal(t, 3, b.Horizon)
	assert.Equal(t, model.SimplifiedFeatureSet(), b.Features)
}
