package model

import "fmt"

// Feature is a closed enumeration of the per-track input features.
// The set is fixed at build time; there is no dynamic registration.
type Feature int

const (
	FeatureStreams Feature = iota
	FeatureDanceability
	FeatureEnergy
	FeatureValence
	FeatureAcousticness
	FeatureMomentum
	FeatureGrowthRate
	FeatureMovingAverage
	FeatureVolatility

	featureCount
)

// featureMeta holds fixed metadata for one feature.
type featureMeta struct {
	name        string
	description string
}

var featureMetas = [featureCount]featureMeta{
	FeatureStreams:       {"streams", "Daily stream count"},
	FeatureDanceability:  {"danceability", "Spotify danceability score"},
	FeatureEnergy:        {"energy", "Spotify energy score"},
	FeatureValence:       {"valence", "Spotify valence (positivity) score"},
	FeatureAcousticness:  {"acousticness", "Spotify acousticness score"},
	FeatureMomentum:      {"momentum", "Day-over-day stream change"},
	FeatureGrowthRate:    {"growth_rate", "Relative day-over-day stream growth"},
	FeatureMovingAverage: {"moving_average", "3-day moving average of streams"},
	FeatureVolatility:    {"volatility", "3-day standard deviation of streams"},
}

// Name returns the canonical snake_case name of the feature.
func (f Feature) Name() string {
	if f < 0 || f >= featureCount {
		return "unknown"
	}
	return featureMetas[f].name
}

// Description returns a short human-readable description.
func (f Feature) Description() string {
	if f < 0 || f >= featureCount {
		return ""
	}
	return featureMetas[f].description
}

// FeatureSet is an ordered list of features; the order defines the
// per-track column layout of every window sample.
type FeatureSet []Feature

// SimplifiedFeatureSet returns the 5-feature configuration.
func SimplifiedFeatureSet() FeatureSet {
	return FeatureSet{
		FeatureStreams,
		FeatureDanceability,
		FeatureEnergy,
		FeatureMomentum,
		FeatureMovingAverage,
	}
}

// AdvancedFeatureSet returns the full 9-feature configuration.
func AdvancedFeatureSet() FeatureSet {
	return FeatureSet{
		FeatureStreams,
		FeatureDanceability,
		FeatureEnergy,
		FeatureValence,
		FeatureAcousticness,
		FeatureMomentum,
		FeatureGrowthRate,
		FeatureMovingAverage,
		FeatureVolatility,
	}
}

// Names returns the feature names in set order.
func (s FeatureSet) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name()
	}
	return names
}

// FeatureByName resolves a canonical name to its feature.
func FeatureByName(name string) (Feature, bool) {
	for f := Feature(0); f < featureCount; f++ {
		if featureMetas[f].name == name {
			return f, true
		}
	}
	return 0, false
}

// FeatureSetFromNames rebuilds a set from wire-form names. An unknown
// name reports ErrValidation; the layout of a message that carries one
// cannot be trusted.
func FeatureSetFromNames(names []string) (FeatureSet, error) {
	set := make(FeatureSet, 0, len(names))
	for _, name := range names {
		f, ok := FeatureByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature name %q", ErrValidation, name)
		}
		set = append(set, f)
	}
	return set, nil
}
