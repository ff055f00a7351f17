package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TopTracks)
	assert.Equal(t, 7, cfg.WindowSize)
	assert.Equal(t, 3, cfg.Horizon)
	assert.Equal(t, 0.8, cfg.TrainFraction)
}

func TestFeatures(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, model.SimplifiedFeatureSet(), cfg.Features())

	cfg.AdvancedFeatures = true
	assert.Equal(t, model.AdvancedFeatureSet(), cfg.Features())
}

func TestVectorDimension(t *testing.T) {
	cfg := Config{TopTracks: 10, WindowSize: 7}
	assert.Equal(t, 350, cfg.VectorDimension())

	cfg.AdvancedFeatures = true
	assert.Equal(t, 630, cfg.VectorDimension())
}

func TestPipelineMapping(t *testing.T) {
	cfg := Config{TopTracks: 5, WindowSize: 4, Horizon: 2, TrainFraction: 0.7}
	p := cfg.Pipeline()

	assert.Equal(t, 5, p.TopTracks)
	assert.Equal(t, 4, p.WindowSize)
	assert.Equal(t, 2, p.Horizon)
	assert.Equal(t, 0.7, p.TrainFraction)
	assert.Equal(t, model.SimplifiedFeatureSet(), p.Features)
}
