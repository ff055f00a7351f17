package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateWindowID creates a deterministic window ID from the
// parameters that define a sample. Same parameters always produce the
// same ID, which keeps store writes idempotent.
// Format: hash(endDate|W|horizon|tracks|features)
func GenerateWindowID(endDate string, windowSize, horizon, trackCount, featureCount int) string {
	data := fmt.Sprintf("%s|%d|%d|%d|%d",
		endDate,
		windowSize,
		horizon,
		trackCount,
		featureCount,
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

// Dataset holds the windowed tensors for one load: rank-3 inputs
// [samples, windowSize, featuresPerTrack×N] and rank-2 binary targets
// [samples, N×horizon], with samples in ascending window-end-date
// order. EndDates carries the end date of each sample.
type Dataset struct {
	WindowSize   int
	Horizon      int
	TrackIDs     []string
	FeatureCount int // features per track

	EndDates []string
	Inputs   *Tensor3
	Targets  *Tensor2
}

// Split is a position-based 80/20 partition of a dataset. Because
// samples are in date order, every test window is chronologically
// after every train window.
type Split struct {
	TrainInputs  *Tensor3
	TrainTargets *Tensor2
	TestInputs   *Tensor3
	TestTargets  *Tensor2
	TestEndDates []string
}

// Samples returns the number of (sample, target) pairs.
func (d *Dataset) Samples() int {
	if d.Inputs == nil {
		return 0
	}
	return d.Inputs.Samples()
}

// SampleVector flattens one sample into a float32 vector for
// similarity search over historical trend shapes.
func (d *Dataset) SampleVector(i int) []float32 {
	_, steps, width := d.Inputs.Dims()
	vec := make([]float32, 0, steps*width)
	for j := 0; j < steps; j++ {
		for _, v := range d.Inputs.Step(i, j) {
			vec = append(vec, float32(v))
		}
	}
	return vec
}

// Validate reports ErrValidation if either tensor contains a
// not-a-number entry. Never silently corrected.
func (d *Dataset) Validate() error {
	if d.Inputs == nil || d.Targets == nil {
		return fmt.Errorf("%w: dataset has no tensors", ErrState)
	}
	if d.Inputs.HasNaN() {
		return fmt.Errorf("%w: NaN in input tensor", ErrValidation)
	}
	if d.Targets.HasNaN() {
		return fmt.Errorf("%w: NaN in target tensor", ErrValidation)
	}
	return nil
}

// SplitAt partitions the dataset by position at the given fraction
// (no shuffling). The returned tensors are independent copies.
func (d *Dataset) SplitAt(fraction float64) (*Split, error) {
	n := d.Samples()
	if n == 0 {
		return nil, fmt.Errorf("%w: no samples to split", ErrState)
	}

	trainSize := int(float64(n) * fraction)

	return &Split{
		TrainInputs:  d.Inputs.SliceSamples(0, trainSize),
		TrainTargets: d.Targets.SliceRows(0, trainSize),
		TestInputs:   d.Inputs.SliceSamples(trainSize, n),
		TestTargets:  d.Targets.SliceRows(trainSize, n),
		TestEndDates: d.EndDates[trainSize:],
	}, nil
}

// Release returns the dataset tensors to the pool.
func (d *Dataset) Release() {
	if d.Inputs != nil {
		d.Inputs.Release()
		d.Inputs = nil
	}
	if d.Targets != nil {
		d.Targets.Release()
		d.Targets = nil
	}
}

// Release returns the split tensors to the pool.
func (s *Split) Release() {
	for _, t := range []*Tensor3{s.TrainInputs, s.TestInputs} {
		if t != nil {
			t.Release()
		}
	}
	for _, t := range []*Tensor2{s.TrainTargets, s.TestTargets} {
		if t != nil {
			t.Release()
		}
	}
	s.TrainInputs, s.TestInputs = nil, nil
	s.TrainTargets, s.TestTargets = nil, nil
}
