package rerank

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/store/milvus"
)

func TestRerankExponentialDecay(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	results := []milvus.SearchResult{
		{WindowID: "old", Score: 0.95, EndDate: now.AddDate(0, 0, -365)},
		{WindowID: "fresh", Score: 0.80, EndDate: now},
	}

	r := NewReranker(TimeDecayConfig{Lambda: 0.01})
	ranked := r.Rerank(results, now)

	require.Len(t, ranked, 2)

	// A year of decay sinks the higher raw score below the fresh one.
	assert.Equal(t, "fresh", ranked[0].WindowID)
	assert.Equal(t, 1.0, ranked[0].TimeWeight)
	assert.InDelta(t, 0.80, ranked[0].FinalScore, 1e-9)

	assert.Equal(t, "old", ranked[1].WindowID)
	assert.InDelta(t, math.Exp(-3.65), ranked[1].TimeWeight, 1e-9)
}

func TestRerankSegmentWeights(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	results := []milvus.SearchResult{
		{WindowID: "recent", Score: 0.5, EndDate: now.AddDate(0, 0, -10)},
		{WindowID: "medium", Score: 0.5, EndDate: now.AddDate(0, 0, -90)},
		{WindowID: "old", Score: 0.5, EndDate: now.AddDate(0, 0, -400)},
	}

	r := NewReranker(SegmentConfig())
	ranked := r.Rerank(results, now)

	byID := make(map[string]RankedResult)
	for _, rr := range ranked {
		byID[rr.WindowID] = rr
	}

	assert.Equal(t, 1.0, byID["recent"].TimeWeight)
	assert.Equal(t, 0.7, byID["medium"].TimeWeight)
	assert.Equal(t, 0.4, byID["old"].TimeWeight)
}

func TestRerankFutureEndDateClamped(t *testing.T) {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	results := []milvus.SearchResult{
		{WindowID: "future", Score: 0.5, EndDate: now.AddDate(0, 0, 5)},
	}

	r := NewReranker(DefaultTimeDecayConfig())
	ranked := r.Rerank(results, now)

	require.Len(t, ranked, 1)
	assert.Equal(t, 1.0, ranked[0].TimeWeight)
}

func TestRerankEmpty(t *testing.T) {
	r := NewReranker(DefaultTimeDecayConfig())
	assert.Empty(t, r.Rerank(nil, time.Now()))
}
