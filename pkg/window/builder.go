// Package window turns normalized rows into fixed-size sliding-window
// tensors with aligned multi-day-ahead binary targets.
package window

import (
	"fmt"

	"github.com/tunogya/crescendo/pkg/model"
)

// Builder produces (sample, target) pairs over the globally sorted
// distinct date list.
type Builder struct {
	WindowSize int
	Horizon    int
	Features   model.FeatureSet
}

// Config holds configuration for window building.
type Config struct {
	WindowSize int              // days per sample
	Horizon    int              // forecast days per target
	Features   model.FeatureSet // per-track feature layout
}

// DefaultConfig returns a Config with the standard 7-day window,
// 3-day horizon, and the simplified feature set.
func DefaultConfig() Config {
	return Config{
		WindowSize: 7,
		Horizon:    3,
		Features:   model.SimplifiedFeatureSet(),
	}
}

// NewBuilder creates a new window builder with the given configuration.
func NewBuilder(cfg Config) *Builder {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 7
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 3
	}
	if len(cfg.Features) == 0 {
		cfg.Features = model.SimplifiedFeatureSet()
	}
	return &Builder{
		WindowSize: cfg.WindowSize,
		Horizon:    cfg.Horizon,
		Features:   cfg.Features,
	}
}

// Build iterates candidate window-end dates from index WindowSize to
// len(dates)-Horizon-1 inclusive. For each candidate the sample covers
// the WindowSize dates strictly before it; the target covers the
// candidate date plus Horizon future dates. A candidate is dropped
// entirely unless every track has an observation at the candidate date
// and at each future date; sample-side gaps are zero-filled instead.
// Accepted pairs are appended in ascending end-date order.
func (b *Builder) Build(records []model.Record, trackIDs []string, dates []string) (*model.Dataset, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no tracks selected before window build", model.ErrState)
	}

	idx := model.IndexRecords(records)

	var ends []int
	for i := b.WindowSize; i <= len(dates)-b.Horizon-1; i++ {
		if b.targetComplete(idx, trackIDs, dates, i) {
			ends = append(ends, i)
		}
	}

	featureCount := len(b.Features)
	width := len(trackIDs) * featureCount

	inputs := model.NewTensor3(len(ends), b.WindowSize, width)
	targets := model.NewTensor2(len(ends), len(trackIDs)*b.Horizon)
	endDates := make([]string, len(ends))

	for s, end := range ends {
		endDates[s] = dates[end]

		for day := 0; day < b.WindowSize; day++ {
			date := dates[end-b.WindowSize+day]
			vec := inputs.Step(s, day)
			for t, id := range trackIDs {
				r, ok := idx[model.RecordKey(date, id)]
				if !ok {
					continue // zero-filled, never dropped
				}
				for fi, f := range b.Features {
					vec[t*featureCount+fi] = r.NormalizedValue(f)
				}
			}
		}

		// Targets: track-major, offset-minor. 1 iff the future streams
		// strictly exceed the end-date streams.
		for t, id := range trackIDs {
			base := idx[model.RecordKey(dates[end], id)]
			for k := 1; k <= b.Horizon; k++ {
				fut := idx[model.RecordKey(dates[end+k], id)]
				if fut.Streams > base.Streams {
					targets.Set(s, t*b.Horizon+(k-1), 1)
				}
			}
		}
	}

	return &model.Dataset{
		WindowSize:   b.WindowSize,
		Horizon:      b.Horizon,
		TrackIDs:     trackIDs,
		FeatureCount: featureCount,
		EndDates:     endDates,
		Inputs:       inputs,
		Targets:      targets,
	}, nil
}

// targetComplete reports whether every track has an observation at the
// end date and at every forecast date.
func (b *Builder) targetComplete(idx map[string]*model.Record, trackIDs []string, dates []string, end int) bool {
	for _, id := range trackIDs {
		if _, ok := idx[model.RecordKey(dates[end], id)]; !ok {
			return false
		}
		for k := 1; k <= b.Horizon; k++ {
			if _, ok := idx[model.RecordKey(dates[end+k], id)]; !ok {
				return false
			}
		}
	}
	return true
}
