package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

// chartCSV builds a full chart: every track has a row on every date,
// with per-track stream levels that fix the selection order.
func chartCSV(days int, base map[string]float64) string {
	var b strings.Builder
	b.WriteString("date,track_id,streams,danceability,energy\n")
	for d := 0; d < days; d++ {
		date := fmt.Sprintf("2025-02-%02d", d+1)
		for id, streams := range map[string]float64{
			"alpha": base["alpha"] + float64(d),
			"beta":  base["beta"] + float64(d),
			"gamma": base["gamma"] + float64(d),
		} {
			fmt.Fprintf(&b, "%s,%s,%.0f,0.5,0.6\n", date, id, streams)
		}
	}
	return b.String()
}

func testConfig() Config {
	return Config{
		TopTracks:     2,
		WindowSize:    3,
		Horizon:       2,
		Features:      model.SimplifiedFeatureSet(),
		TrainFraction: 0.8,
	}
}

func TestRunEndToEnd(t *testing.T) {
	csv := chartCSV(12, map[string]float64{"alpha": 1000, "beta": 500, "gamma": 2000})

	state, err := Run(csv, testConfig())
	require.NoError(t, err)
	defer state.Release()

	// gamma and alpha win the volume ranking; beta is filtered out.
	assert.Equal(t, []string{"gamma", "alpha"}, state.TrackIDs)
	assert.Len(t, state.Dates, 12)
	for _, r := range state.Records {
		assert.NotEqual(t, "beta", r.TrackID)
		require.NotNil(t, r.Normalized)
	}

	// 12 dates, W=3, H=2: window ends at indices 3..9.
	require.NotNil(t, state.Dataset)
	assert.Equal(t, 7, state.Dataset.Samples())

	// Positional 80/20 split: int(7×0.8)=5 train, 2 test.
	require.NotNil(t, state.Split)
	assert.Equal(t, 5, state.Split.TrainInputs.Samples())
	assert.Equal(t, 2, state.Split.TestInputs.Samples())
	assert.Equal(t, state.Dataset.EndDates[5:], state.Split.TestEndDates)

	// Streams rise daily, so every target is positive.
	for k := 0; k < state.Dataset.Targets.Cols(); k++ {
		assert.Equal(t, 1.0, state.Dataset.Targets.At(0, k))
	}
}

func TestRunEndDatesChronological(t *testing.T) {
	csv := chartCSV(12, map[string]float64{"alpha": 1000, "beta": 500, "gamma": 2000})

	state, err := Run(csv, testConfig())
	require.NoError(t, err)
	defer state.Release()

	dates := state.Dataset.EndDates
	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i])
	}
}

func TestSelectWithoutLoad(t *testing.T) {
	s := &State{Config: testConfig()}
	err := s.Select()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestNormalizeWithoutSelect(t *testing.T) {
	s := &State{Config: testConfig()}
	s.Records = []model.Record{{Date: "2025-01-01", TrackID: "t1", Streams: 1}}
	err := s.Normalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestBuildWindowsWithoutNormalize(t *testing.T) {
	s := &State{Config: testConfig()}
	err := s.BuildWindows()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestRunBadCSV(t *testing.T) {
	_, err := Run("not,a,chart\n1,2,3\n", testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrParse)
}

func TestRunTooFewDates(t *testing.T) {
	// 4 dates cannot host a 3-day window plus a 2-day horizon, so the
	// dataset has zero samples and the positional split fails.
	csv := chartCSV(4, map[string]float64{"alpha": 1000, "beta": 500, "gamma": 2000})

	_, err := Run(csv, testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrState)
}

func TestReleaseIsIdempotent(t *testing.T) {
	csv := chartCSV(12, map[string]float64{"alpha": 1000, "beta": 500, "gamma": 2000})

	state, err := Run(csv, testConfig())
	require.NoError(t, err)

	state.Release()
	state.Release()
	assert.Nil(t, state.Dataset)
	assert.Nil(t, state.Split)
}
