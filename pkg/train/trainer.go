// Package train defines the contract with the external network
// trainer. The topology, optimizer, and regularization schedule live
// on the other side of it; this side owns the tensors it hands over
// and the analysis of what comes back.
package train

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tunogya/crescendo/pkg/model"
)

// Progress is reported once per epoch and carries the early-stopping
// counter.
type Progress struct {
	RunID          string
	Epoch          int
	Epochs         int
	Loss           float64
	Accuracy       float64
	EarlyStopCount int
}

// ProgressFunc receives one Progress per epoch. Replaces fire-and-
// forget event notifications with an explicit callback.
type ProgressFunc func(Progress)

// Options bound a training run. There is no external cancellation
// token between epochs: a run completes its epoch budget or exits via
// the early-stopping threshold.
type Options struct {
	Epochs   int     // epoch budget
	Patience int     // epochs without improvement before early stop
	MinDelta float64 // minimum loss improvement that resets patience
}

// DefaultOptions returns the standard training bounds.
func DefaultOptions() Options {
	return Options{
		Epochs:   50,
		Patience: 5,
		MinDelta: 0.001,
	}
}

// Trainer is the external-collaborator contract: rank-3 inputs and
// rank-2 {0,1} targets in, post-sigmoid probabilities of target shape
// out.
type Trainer interface {
	// Train runs the full loop against the split dataset, invoking
	// progress once per epoch.
	Train(ctx context.Context, split *model.Split, opts Options, progress ProgressFunc) error

	// Predict returns probabilities in [0,1] with one column per
	// (track, forecast-offset) pair.
	Predict(ctx context.Context, inputs *model.Tensor3) (*model.Tensor2, error)
}

// RunSpec identifies one training run and the tensor layout it was
// built from.
type RunSpec struct {
	RunID      string
	WindowSize int
	Horizon    int
	TrackIDs   []string
	Features   model.FeatureSet
}

// NewRunID derives a run identifier from the layout parameters and the
// current time.
func NewRunID(windowSize, horizon, trackCount, featureCount int) string {
	data := fmt.Sprintf("%d|%d|%d|%d|%d",
		time.Now().UnixNano(), windowSize, horizon, trackCount, featureCount)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}
