package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/tunogya/crescendo/pkg/model"
)

// Importance is one entry of the ranked feature-importance list.
type Importance struct {
	Feature     model.Feature `json:"-"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Score       float64       `json:"score"` // 0-100
}

// Evaluator runs the post-training analysis against a trained model.
type Evaluator struct {
	Predictor Predictor
	Features  model.FeatureSet
	TrackIDs  []string
	Tracks    map[string]model.Track
	Horizon   int

	rng *rand.Rand
}

// NewEvaluator creates an evaluator. Importance shuffles draw from a
// fresh time-seeded source, so scores are inherently noisy run to run.
func NewEvaluator(p Predictor, set model.FeatureSet, trackIDs []string, tracks map[string]model.Track, horizon int) *Evaluator {
	return &Evaluator{
		Predictor: p,
		Features:  set,
		TrackIDs:  trackIDs,
		Tracks:    tracks,
		Horizon:   horizon,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FeatureImportance estimates permutation importance: per feature
// index, shuffle that feature's values across all (sample, day)
// positions independently per track slot, re-evaluate accuracy, and
// score max(baseline−shuffled, 0)×100. Results are sorted descending.
// Any failure wraps ErrComputation; callers degrade to an empty list
// rather than aborting the evaluation.
func (e *Evaluator) FeatureImportance(ctx context.Context, inputs *model.Tensor3, targets *model.Tensor2) (result []Importance, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: importance analysis panicked: %v", model.ErrComputation, r)
		}
	}()

	if e.Predictor == nil {
		return nil, fmt.Errorf("%w: feature importance requested before training", model.ErrState)
	}

	basePreds, err := e.Predictor.Predict(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: baseline prediction: %v", model.ErrComputation, err)
	}
	defer basePreds.Release()

	baseline, err := ConsistentAccuracy(basePreds, targets)
	if err != nil {
		return nil, fmt.Errorf("%w: baseline accuracy: %v", model.ErrComputation, err)
	}

	result = make([]Importance, 0, len(e.Features))
	for fi, f := range e.Features {
		shuffled := inputs.Clone()
		e.shuffleFeature(shuffled, fi)

		preds, perr := e.Predictor.Predict(ctx, shuffled)
		shuffled.Release()
		if perr != nil {
			return nil, fmt.Errorf("%w: shuffled prediction for %s: %v", model.ErrComputation, f.Name(), perr)
		}

		acc, aerr := ConsistentAccuracy(preds, targets)
		preds.Release()
		if aerr != nil {
			return nil, fmt.Errorf("%w: shuffled accuracy for %s: %v", model.ErrComputation, f.Name(), aerr)
		}

		score := (baseline - acc) * 100
		if score < 0 {
			score = 0
		}
		result = append(result, Importance{
			Feature:     f,
			Name:        f.Name(),
			Description: f.Description(),
			Score:       score,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	return result, nil
}

// shuffleFeature permutes one feature's values across every
// (sample, day) position, independently per track slot. A full random
// swap, not a per-track-consistent shuffle.
func (e *Evaluator) shuffleFeature(t *model.Tensor3, fi int) {
	samples, steps, _ := t.Dims()
	featureCount := len(e.Features)

	vals := make([]float64, 0, samples*steps)
	for tr := range e.TrackIDs {
		col := tr*featureCount + fi

		vals = vals[:0]
		for i := 0; i < samples; i++ {
			for j := 0; j < steps; j++ {
				vals = append(vals, t.At(i, j, col))
			}
		}

		e.rng.Shuffle(len(vals), func(a, b int) {
			vals[a], vals[b] = vals[b], vals[a]
		})

		k := 0
		for i := 0; i < samples; i++ {
			for j := 0; j < steps; j++ {
				t.Set(i, j, col, vals[k])
				k++
			}
		}
	}
}
