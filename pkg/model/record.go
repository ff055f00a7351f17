package model

import (
	"sort"
	"time"
)

// Record is one observed (date, track) row from a streaming chart
// export. Dates are calendar-day keys formatted so that lexical order
// equals chronological order (ISO-8601). Derived fields are filled in
// per track, in date order, after track selection.
type Record struct {
	Date      string `json:"date"`
	TrackID   string `json:"track_id"`
	TrackName string `json:"track_name,omitempty"`

	Streams      float64 `json:"streams"`
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Acousticness float64 `json:"acousticness"`

	Momentum      float64 `json:"momentum"`
	GrowthRate    float64 `json:"growth_rate"`
	MovingAverage float64 `json:"moving_average"`
	Volatility    float64 `json:"volatility"`

	Normalized map[Feature]float64 `json:"normalized,omitempty"`
}

// Value returns the raw value of the given feature.
func (r *Record) Value(f Feature) float64 {
	switch f {
	case FeatureStreams:
		return r.Streams
	case FeatureDanceability:
		return r.Danceability
	case FeatureEnergy:
		return r.Energy
	case FeatureValence:
		return r.Valence
	case FeatureAcousticness:
		return r.Acousticness
	case FeatureMomentum:
		return r.Momentum
	case FeatureGrowthRate:
		return r.GrowthRate
	case FeatureMovingAverage:
		return r.MovingAverage
	case FeatureVolatility:
		return r.Volatility
	default:
		return 0
	}
}

// NormalizedValue returns the normalized value of the given feature,
// or 0 if the record has not been normalized.
func (r *Record) NormalizedValue(f Feature) float64 {
	if r.Normalized == nil {
		return 0
	}
	return r.Normalized[f]
}

// RecordKey is the composite lookup key for a (date, track) pair.
func RecordKey(date, trackID string) string {
	return date + "|" + trackID
}

// DistinctDates returns the sorted distinct dates across the records,
// lexical ascending.
func DistinctDates(records []Record) []string {
	seen := make(map[string]struct{})
	var dates []string
	for i := range records {
		d := records[i].Date
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// IndexRecords builds a (date, track) → record index. Later duplicates
// overwrite earlier ones.
func IndexRecords(records []Record) map[string]*Record {
	idx := make(map[string]*Record, len(records))
	for i := range records {
		r := &records[i]
		idx[RecordKey(r.Date, r.TrackID)] = r
	}
	return idx
}

// ParseDate parses a calendar-day key. Only used where a real
// timestamp is needed (vector store, recency rerank); the pipeline
// itself orders dates lexically.
func ParseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}
