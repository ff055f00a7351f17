package feature

import (
	"github.com/tunogya/crescendo/pkg/model"
)

// DefaultTrainFraction is the share of distinct dates whose rows feed
// normalization-parameter fitting.
const DefaultTrainFraction = 0.8

// Params holds per-(track, feature) min-max parameters.
type Params struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// defaultParams is the fallback when a (track, feature) pair has no
// training observations.
var defaultParams = Params{Min: 0, Max: 1}

// NormParams maps track ID → feature → fitted parameters.
type NormParams map[string]map[model.Feature]Params

// TrainDates returns the lexically-earliest fraction of the distinct
// sorted date set. Rows outside it never influence fitted parameters.
func TrainDates(dates []string, fraction float64) []string {
	cut := int(float64(len(dates)) * fraction)
	return dates[:cut]
}

// Fit computes min-max parameters per selected track per feature over
// rows whose date lies in the train period only. Pairs with no
// training observations fall back to {0, 1}.
func Fit(records []model.Record, trackIDs []string, set model.FeatureSet, fraction float64) NormParams {
	trainSet := make(map[string]struct{})
	for _, d := range TrainDates(model.DistinctDates(records), fraction) {
		trainSet[d] = struct{}{}
	}

	params := make(NormParams, len(trackIDs))
	fitted := make(map[string]map[model.Feature]bool, len(trackIDs))
	for _, id := range trackIDs {
		params[id] = make(map[model.Feature]Params, len(set))
		fitted[id] = make(map[model.Feature]bool, len(set))
	}

	for i := range records {
		r := &records[i]
		trackParams, selected := params[r.TrackID]
		if !selected {
			continue
		}
		if _, inTrain := trainSet[r.Date]; !inTrain {
			continue
		}

		for _, f := range set {
			v := r.Value(f)
			p, ok := trackParams[f]
			if !ok || !fitted[r.TrackID][f] {
				trackParams[f] = Params{Min: v, Max: v}
				fitted[r.TrackID][f] = true
				continue
			}
			if v < p.Min {
				p.Min = v
			}
			if v > p.Max {
				p.Max = v
			}
			trackParams[f] = p
		}
	}

	// Fallback for pairs with zero training observations.
	for _, id := range trackIDs {
		for _, f := range set {
			if !fitted[id][f] {
				params[id][f] = defaultParams
			}
		}
	}

	return params
}

// Normalize scales v into the fitted range: (v-min)/(max-min).
// A degenerate range (max == min) yields the constant midpoint 0.5.
func Normalize(v float64, p Params) float64 {
	if p.Max == p.Min {
		return 0.5
	}
	return (v - p.Min) / (p.Max - p.Min)
}

// Apply writes normalized feature values onto every row, train and
// test alike, using the fitted parameters. A row whose track has no
// parameters at all gets the constant 0.5 for every feature.
func Apply(records []model.Record, params NormParams, set model.FeatureSet) {
	for i := range records {
		r := &records[i]
		r.Normalized = make(map[model.Feature]float64, len(set))

		trackParams, ok := params[r.TrackID]
		if !ok {
			for _, f := range set {
				r.Normalized[f] = 0.5
			}
			continue
		}

		for _, f := range set {
			p, ok := trackParams[f]
			if !ok {
				p = defaultParams
			}
			r.Normalized[f] = Normalize(r.Value(f), p)
		}
	}
}
