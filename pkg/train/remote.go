package train

import (
	"context"
	"fmt"
	"sync"

	"github.com/tunogya/crescendo/pkg/model"
	queue "github.com/tunogya/crescendo/pkg/queue/nats"
)

// RemoteTrainer implements Trainer over NATS: the dataset goes out as
// a durable JetStream message, per-epoch progress comes back on the
// core connection, and Predict is a synchronous request-reply against
// the trainer service holding the run's model.
type RemoteTrainer struct {
	client  *queue.Client
	spec    RunSpec
	trained bool
}

// NewRemoteTrainer creates a trainer client for a run that has not
// been trained yet.
func NewRemoteTrainer(client *queue.Client, spec RunSpec) *RemoteTrainer {
	return &RemoteTrainer{client: client, spec: spec}
}

// AttachRemoteTrainer creates a trainer client for an already-trained
// run, e.g. the evaluation worker re-querying a finished model.
func AttachRemoteTrainer(client *queue.Client, runID string) *RemoteTrainer {
	return &RemoteTrainer{
		client:  client,
		spec:    RunSpec{RunID: runID},
		trained: true,
	}
}

// RunID returns the run identifier.
func (t *RemoteTrainer) RunID() string { return t.spec.RunID }

// Train publishes the split dataset and streams per-epoch progress
// until the trainer signals completion. The run either completes its
// epoch budget or exits via the early-stopping threshold; there is no
// mid-epoch cancellation on the trainer side.
func (t *RemoteTrainer) Train(ctx context.Context, split *model.Split, opts Options, progress ProgressFunc) error {
	done := make(chan struct{})
	var once sync.Once

	sub, err := t.client.SubscribeCore(queue.SubjectTrainProgress, func(data []byte) {
		p, err := queue.DecodeProgress(data)
		if err != nil || p.RunID != t.spec.RunID {
			return
		}
		if progress != nil {
			progress(Progress{
				RunID:          p.RunID,
				Epoch:          p.Epoch,
				Epochs:         p.Epochs,
				Loss:           p.Loss,
				Accuracy:       p.Accuracy,
				EarlyStopCount: p.EarlyStopCount,
			})
		}
		if p.Done {
			once.Do(func() { close(done) })
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	msg := queue.DatasetMsg{
		RunID:        t.spec.RunID,
		WindowSize:   t.spec.WindowSize,
		Horizon:      t.spec.Horizon,
		TrackIDs:     t.spec.TrackIDs,
		FeatureNames: t.spec.Features.Names(),
		TrainInputs:  queue.EncodeTensor3(split.TrainInputs),
		TrainTargets: queue.EncodeTensor2(split.TrainTargets),
		TestInputs:   queue.EncodeTensor3(split.TestInputs),
		TestTargets:  queue.EncodeTensor2(split.TestTargets),
	}
	payload, err := queue.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := t.client.Publish(ctx, queue.SubjectDatasetPublish, payload); err != nil {
		return err
	}

	select {
	case <-done:
		t.trained = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Predict asks the trainer service for probabilities over the run's
// model.
func (t *RemoteTrainer) Predict(ctx context.Context, inputs *model.Tensor3) (*model.Tensor2, error) {
	if !t.trained {
		return nil, fmt.Errorf("%w: predict requested before training completed", model.ErrState)
	}

	payload, err := queue.Encode(queue.PredictRequestMsg{
		RunID:  t.spec.RunID,
		Inputs: queue.EncodeTensor3(inputs),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	data, err := t.client.Request(ctx, queue.SubjectPredict, payload)
	if err != nil {
		return nil, err
	}

	reply, err := queue.DecodePredictReply(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode predict reply: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("trainer predict failed: %s", reply.Error)
	}

	preds := reply.Predictions.Tensor2()
	if preds == nil {
		return nil, fmt.Errorf("%w: malformed prediction tensor in reply", model.ErrValidation)
	}
	return preds, nil
}
