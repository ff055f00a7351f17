// Package pipeline threads raw CSV text through record parsing, track
// selection, normalization, and window building into train/test
// tensors. State is explicit: each stage reads and writes the same
// context struct, so every stage is unit-testable in isolation and no
// mutable aggregate hides in instance fields.
package pipeline

import (
	"fmt"

	"github.com/tunogya/crescendo/pkg/data"
	"github.com/tunogya/crescendo/pkg/feature"
	"github.com/tunogya/crescendo/pkg/model"
	"github.com/tunogya/crescendo/pkg/track"
	"github.com/tunogya/crescendo/pkg/window"
)

// Config holds the pipeline parameters.
type Config struct {
	TopTracks     int              // track universe size
	WindowSize    int              // days per sample
	Horizon       int              // forecast days
	Features      model.FeatureSet // per-track feature layout
	TrainFraction float64          // both the fit date cutoff and the positional split
}

// DefaultConfig returns the standard configuration: top 10 tracks,
// 7-day windows, 3-day horizon, simplified feature set, 80% cuts.
func DefaultConfig() Config {
	return Config{
		TopTracks:     10,
		WindowSize:    7,
		Horizon:       3,
		Features:      model.SimplifiedFeatureSet(),
		TrainFraction: 0.8,
	}
}

// State is the explicit pipeline context. A zero State plus Load is a
// fresh lifecycle; tensors stay owned by the State until Release.
type State struct {
	Config Config

	Records  []model.Record
	TrackIDs []string
	Tracks   map[string]model.Track
	Dates    []string
	Params   feature.NormParams
	Dataset  *model.Dataset
	Split    *model.Split
}

// Run executes the full pipeline over raw CSV text. On any failure the
// partially built state is released and the error is surfaced once; no
// step is retried.
func Run(csvText string, cfg Config) (*State, error) {
	s := &State{Config: cfg}

	if err := s.Load(csvText); err != nil {
		return nil, err
	}
	if err := s.Select(); err != nil {
		return nil, err
	}
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	if err := s.BuildWindows(); err != nil {
		s.Release()
		return nil, err
	}

	return s, nil
}

// Load parses the raw CSV text into records.
func (s *State) Load(csvText string) error {
	records, err := data.Parse(csvText)
	if err != nil {
		return err
	}
	s.Records = records
	return nil
}

// Select fixes the track universe (top N by cumulative volume), filters
// the rows, and computes the per-track derived features. The selection
// order is final for this lifecycle.
func (s *State) Select() error {
	if len(s.Records) == 0 {
		return fmt.Errorf("%w: no records loaded before track selection", model.ErrState)
	}

	ids, filtered, tracks := track.SelectTop(s.Records, s.Config.TopTracks)
	feature.ComputeDerived(filtered)

	s.TrackIDs = ids
	s.Tracks = tracks
	s.Records = filtered
	s.Dates = model.DistinctDates(filtered)
	return nil
}

// Normalize fits min-max parameters on the train-period rows only and
// applies them to every row. Recomputed on every window rebuild.
func (s *State) Normalize() error {
	if len(s.TrackIDs) == 0 {
		return fmt.Errorf("%w: no tracks selected before normalization", model.ErrState)
	}

	s.Params = feature.Fit(s.Records, s.TrackIDs, s.Config.Features, s.Config.TrainFraction)
	feature.Apply(s.Records, s.Params, s.Config.Features)
	return nil
}

// BuildWindows constructs the sliding-window dataset, validates it for
// NaN entries, and splits it positionally into train/test tensors.
func (s *State) BuildWindows() error {
	if s.Params == nil {
		return fmt.Errorf("%w: normalization must run before window building", model.ErrState)
	}

	builder := window.NewBuilder(window.Config{
		WindowSize: s.Config.WindowSize,
		Horizon:    s.Config.Horizon,
		Features:   s.Config.Features,
	})

	ds, err := builder.Build(s.Records, s.TrackIDs, s.Dates)
	if err != nil {
		return err
	}

	if err := ds.Validate(); err != nil {
		ds.Release()
		return err
	}

	split, err := ds.SplitAt(s.Config.TrainFraction)
	if err != nil {
		ds.Release()
		return err
	}

	// Replace any previous build before taking ownership.
	s.releaseTensors()
	s.Dataset = ds
	s.Split = split
	return nil
}

// Release returns all tensors owned by this state to the pool. Safe to
// call more than once; required before starting a new load.
func (s *State) Release() {
	s.releaseTensors()
}

func (s *State) releaseTensors() {
	if s.Dataset != nil {
		s.Dataset.Release()
		s.Dataset = nil
	}
	if s.Split != nil {
		s.Split.Release()
		s.Split = nil
	}
}
