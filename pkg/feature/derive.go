// Package feature engineers and normalizes per-track time-series
// features.
package feature

import (
	"math"
	"sort"

	"github.com/tunogya/crescendo/pkg/model"
)

// derivedSpan is the trailing span (in observations) for the moving
// average and volatility features.
const derivedSpan = 3

// ComputeDerived fills the derived fields (momentum, growth rate,
// moving average, volatility) in place, per track, with each track's
// rows taken in lexical date order. Call after track selection.
// Momentum is 0 at a track's first observation; moving average and
// volatility are backfilled over the observations available so far.
func ComputeDerived(records []model.Record) {
	byTrack := make(map[string][]int)
	for i := range records {
		byTrack[records[i].TrackID] = append(byTrack[records[i].TrackID], i)
	}

	for _, idxs := range byTrack {
		sort.SliceStable(idxs, func(a, b int) bool {
			return records[idxs[a]].Date < records[idxs[b]].Date
		})

		for pos, idx := range idxs {
			r := &records[idx]

			if pos == 0 {
				r.Momentum = 0
				r.GrowthRate = 0
			} else {
				prev := records[idxs[pos-1]].Streams
				r.Momentum = r.Streams - prev
				if prev != 0 {
					r.GrowthRate = r.Momentum / prev
				} else {
					r.GrowthRate = 0
				}
			}

			start := pos - (derivedSpan - 1)
			if start < 0 {
				start = 0
			}
			span := make([]float64, 0, derivedSpan)
			for _, j := range idxs[start : pos+1] {
				span = append(span, records[j].Streams)
			}

			m, std := meanStd(span)
			r.MovingAverage = m
			r.Volatility = std
		}
	}
}

// meanStd calculates mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	std = math.Sqrt(sumSquares / float64(len(values)))

	return mean, std
}
