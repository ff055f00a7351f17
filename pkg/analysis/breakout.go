package analysis

import (
	"fmt"
	"sort"

	"github.com/tunogya/crescendo/pkg/model"
)

// breakoutHorizon is the forecast depth the trend-strength heuristic
// is defined over.
const breakoutHorizon = 3

// RiskLevel grades how speculative a breakout call is.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very-high"
)

// Breakout holds the trend diagnostics for one track. Score is the
// mean trend-strength statistic, Confidence the mean of the three day
// probabilities, and Trend the raw mean day3−day1 probability drift.
type Breakout struct {
	TrackID    string    `json:"track_id"`
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Trend      float64   `json:"trend"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

// DetectBreakouts averages, per track over all samples, the
// trend-strength score (day3−day1)×2 + (day2−day1) and the mean day
// probability, then grades risk. Tracks are returned ranked descending
// by score. Failures wrap ErrComputation so callers can degrade
// independently of the rest of the evaluation.
func DetectBreakouts(preds *model.Tensor2, trackIDs []string, tracks map[string]model.Track, horizon int) ([]Breakout, error) {
	if horizon < breakoutHorizon {
		return nil, fmt.Errorf("%w: breakout detection needs a %d-day horizon, got %d",
			model.ErrComputation, breakoutHorizon, horizon)
	}
	if preds.Cols() != len(trackIDs)*horizon {
		return nil, fmt.Errorf("%w: %d prediction columns for %d tracks × %d offsets",
			model.ErrComputation, preds.Cols(), len(trackIDs), horizon)
	}

	samples := preds.Rows()
	result := make([]Breakout, 0, len(trackIDs))

	for t, id := range trackIDs {
		var scoreSum, confSum, trendSum float64
		for s := 0; s < samples; s++ {
			p1 := preds.At(s, t*horizon+0)
			p2 := preds.At(s, t*horizon+1)
			p3 := preds.At(s, t*horizon+2)

			scoreSum += (p3-p1)*2 + (p2 - p1)
			confSum += (p1 + p2 + p3) / 3
			trendSum += p3 - p1
		}

		var score, confidence, trend float64
		if samples > 0 {
			score = scoreSum / float64(samples)
			confidence = confSum / float64(samples)
			trend = trendSum / float64(samples)
		}

		name := id
		if meta, ok := tracks[id]; ok && meta.Name != "" {
			name = meta.Name
		}

		result = append(result, Breakout{
			TrackID:    id,
			Name:       name,
			Score:      score,
			Confidence: confidence,
			Trend:      trend,
			RiskLevel:  classifyRisk(score, confidence),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	return result, nil
}

// classifyRisk grades a breakout call: strong score with strong
// confidence is the safest call, a barely-positive score the most
// speculative.
func classifyRisk(score, confidence float64) RiskLevel {
	switch {
	case score > 0.10 && confidence > 0.70:
		return RiskLow
	case score > 0.05 && confidence > 0.60:
		return RiskMedium
	case score > 0:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// TopBreakouts returns at most n actionable breakouts; only positive
// scores are surfaced.
func TopBreakouts(breakouts []Breakout, n int) []Breakout {
	var top []Breakout
	for _, b := range breakouts {
		if b.Score <= 0 {
			continue
		}
		top = append(top, b)
		if len(top) == n {
			break
		}
	}
	return top
}
