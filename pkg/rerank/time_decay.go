package rerank

import (
	"math"
	"sort"
	"time"

	"github.com/tunogya/crescendo/pkg/store/milvus"
)

// TimeDecayConfig holds configuration for time decay reranking.
// Recent chart history matters more than old history when judging how
// similar a trend shape really is.
type TimeDecayConfig struct {
	Lambda float64 // Exponential decay rate (higher = faster decay)
	// Segment weights for different time ranges (optional, used if UseSegments is true)
	UseSegments  bool
	RecentDays   float64 // Days considered "recent" (e.g., 30)
	MediumDays   float64 // Days considered "medium" (e.g., 180)
	RecentWeight float64 // Weight for recent (<= RecentDays)
	MediumWeight float64 // Weight for medium (RecentDays < x <= MediumDays)
	OldWeight    float64 // Weight for old (> MediumDays)
}

// DefaultTimeDecayConfig returns a default configuration
func DefaultTimeDecayConfig() TimeDecayConfig {
	return TimeDecayConfig{
		Lambda:       0.01, // Gentle decay over chart history
		UseSegments:  false,
		RecentDays:   30,
		MediumDays:   180,
		RecentWeight: 1.0,
		MediumWeight: 0.7,
		OldWeight:    0.4,
	}
}

// SegmentConfig returns a configuration using segment-based weights
func SegmentConfig() TimeDecayConfig {
	return TimeDecayConfig{
		UseSegments:  true,
		RecentDays:   30,
		MediumDays:   180,
		RecentWeight: 1.0,
		MediumWeight: 0.7,
		OldWeight:    0.4,
	}
}

// RankedResult extends SearchResult with reranked score
type RankedResult struct {
	milvus.SearchResult
	OriginalScore float32
	TimeWeight    float64
	FinalScore    float64
}

// Reranker performs time-based reranking of search results
type Reranker struct {
	config TimeDecayConfig
}

// NewReranker creates a new reranker with the given configuration
func NewReranker(config TimeDecayConfig) *Reranker {
	return &Reranker{config: config}
}

// Rerank weights each result by the age of its window end date and
// re-sorts by the combined score.
func (r *Reranker) Rerank(results []milvus.SearchResult, now time.Time) []RankedResult {
	ranked := make([]RankedResult, 0, len(results))

	for _, res := range results {
		ageDays := now.Sub(res.EndDate).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}

		weight := r.weight(ageDays)

		ranked = append(ranked, RankedResult{
			SearchResult:  res,
			OriginalScore: res.Score,
			TimeWeight:    weight,
			FinalScore:    float64(res.Score) * weight,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	return ranked
}

func (r *Reranker) weight(ageDays float64) float64 {
	if r.config.UseSegments {
		switch {
		case ageDays <= r.config.RecentDays:
			return r.config.RecentWeight
		case ageDays <= r.config.MediumDays:
			return r.config.MediumWeight
		default:
			return r.config.OldWeight
		}
	}
	return math.Exp(-r.config.Lambda * ageDays)
}
