// Package analysis turns raw sigmoid outputs into accuracy metrics,
// permutation feature importance, and breakout-trend scores.
package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/tunogya/crescendo/pkg/model"
)

// threshold converts probabilities and targets to binary classes.
const threshold = 0.5

// Predictor is the trained-model contract the analyzer depends on:
// rank-3 inputs in, post-sigmoid probabilities of target shape out.
type Predictor interface {
	Predict(ctx context.Context, inputs *model.Tensor3) (*model.Tensor2, error)
}

// ConsistentAccuracy thresholds both predictions and ground truth at
// 0.5 and counts exact matches over every scalar entry. The
// denominator is computed explicitly from the known shape (rows×cols),
// never from an element-count primitive.
func ConsistentAccuracy(preds, targets *model.Tensor2) (float64, error) {
	if preds.Rows() != targets.Rows() || preds.Cols() != targets.Cols() {
		return 0, fmt.Errorf("%w: prediction shape [%d,%d] does not match target shape [%d,%d]",
			model.ErrValidation, preds.Rows(), preds.Cols(), targets.Rows(), targets.Cols())
	}

	total := preds.Rows() * preds.Cols()
	if total == 0 {
		return 0, nil
	}

	matches := 0
	for i := 0; i < preds.Rows(); i++ {
		for j := 0; j < preds.Cols(); j++ {
			if (preds.At(i, j) > threshold) == (targets.At(i, j) > threshold) {
				matches++
			}
		}
	}

	return float64(matches) / float64(total), nil
}

// TrackAccuracy is one entry of the ranked per-track accuracy list.
type TrackAccuracy struct {
	TrackID  string  `json:"track_id"`
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"` // percent
}

// TrackDayAccuracy accumulates exact-match counts separately per track
// index and per forecast offset. Track accuracy is the mean over its
// offsets across all samples; day accuracy is the mean over all tracks
// across all samples for that offset. Both reported as percentages;
// the track list is ranked descending.
func TrackDayAccuracy(preds, targets *model.Tensor2, trackIDs []string, tracks map[string]model.Track, horizon int) ([]TrackAccuracy, []float64, error) {
	if preds.Rows() != targets.Rows() || preds.Cols() != targets.Cols() {
		return nil, nil, fmt.Errorf("%w: prediction shape [%d,%d] does not match target shape [%d,%d]",
			model.ErrValidation, preds.Rows(), preds.Cols(), targets.Rows(), targets.Cols())
	}
	if preds.Cols() != len(trackIDs)*horizon {
		return nil, nil, fmt.Errorf("%w: %d columns for %d tracks × %d offsets",
			model.ErrValidation, preds.Cols(), len(trackIDs), horizon)
	}

	samples := preds.Rows()
	trackMatches := make([]int, len(trackIDs))
	dayMatches := make([]int, horizon)

	for s := 0; s < samples; s++ {
		for t := range trackIDs {
			for k := 0; k < horizon; k++ {
				col := t*horizon + k
				if (preds.At(s, col) > threshold) == (targets.At(s, col) > threshold) {
					trackMatches[t]++
					dayMatches[k]++
				}
			}
		}
	}

	byTrack := make([]TrackAccuracy, len(trackIDs))
	for t, id := range trackIDs {
		acc := 0.0
		if samples > 0 {
			acc = float64(trackMatches[t]) / float64(samples*horizon) * 100
		}
		name := id
		if meta, ok := tracks[id]; ok && meta.Name != "" {
			name = meta.Name
		}
		byTrack[t] = TrackAccuracy{TrackID: id, Name: name, Accuracy: acc}
	}
	sort.SliceStable(byTrack, func(i, j int) bool {
		return byTrack[i].Accuracy > byTrack[j].Accuracy
	})

	byDay := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		if samples > 0 && len(trackIDs) > 0 {
			byDay[k] = float64(dayMatches[k]) / float64(samples*len(trackIDs)) * 100
		}
	}

	return byTrack, byDay, nil
}
