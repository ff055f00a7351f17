// Package config loads binary configuration from the environment.
// Every value has a default, so the binaries run with no environment
// at all; flags may still override individual values.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/tunogya/crescendo/pkg/model"
	"github.com/tunogya/crescendo/pkg/pipeline"
)

// Config holds the shared configuration of all binaries, read from
// CRESCENDO_* environment variables.
type Config struct {
	NATSUrl    string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	DuckDBPath string `envconfig:"DUCKDB_PATH" default:"crescendo.duckdb"`
	MilvusAddr string `envconfig:"MILVUS_ADDR" default:"localhost:19530"`

	TopTracks     int     `envconfig:"TOP_TRACKS" default:"10"`
	WindowSize    int     `envconfig:"WINDOW_SIZE" default:"7"`
	Horizon       int     `envconfig:"HORIZON" default:"3"`
	TrainFraction float64 `envconfig:"TRAIN_FRACTION" default:"0.8"`

	// AdvancedFeatures switches from the 5-feature to the 9-feature
	// per-track layout.
	AdvancedFeatures bool `envconfig:"ADVANCED_FEATURES" default:"false"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("crescendo", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

// Features returns the configured per-track feature set.
func (c Config) Features() model.FeatureSet {
	if c.AdvancedFeatures {
		return model.AdvancedFeatureSet()
	}
	return model.SimplifiedFeatureSet()
}

// Pipeline converts to the pipeline parameters.
func (c Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		TopTracks:     c.TopTracks,
		WindowSize:    c.WindowSize,
		Horizon:       c.Horizon,
		Features:      c.Features(),
		TrainFraction: c.TrainFraction,
	}
}

// VectorDimension returns the flattened sample vector size for the
// similarity collection: windowSize × featuresPerTrack × trackCount.
func (c Config) VectorDimension() int {
	return c.WindowSize * len(c.Features()) * c.TopTracks
}
