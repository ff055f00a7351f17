package nats

import (
	"encoding/json"

	"github.com/tunogya/crescendo/pkg/model"
)

// Subject constants
const (
	SubjectRecordWrite     = "crescendo.records.write"
	SubjectDatasetPublish  = "crescendo.datasets.publish"
	SubjectTrainProgress   = "crescendo.train.progress"
	SubjectPredict         = "crescendo.train.predict"
	SubjectPredictionWrite = "crescendo.predictions.write"
)

// TensorMsg is the wire form of a tensor: shape plus row-major data.
type TensorMsg struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// EncodeTensor2 converts a rank-2 tensor to wire form.
func EncodeTensor2(t *model.Tensor2) TensorMsg {
	return TensorMsg{Shape: []int{t.Rows(), t.Cols()}, Data: t.Flatten()}
}

// EncodeTensor3 converts a rank-3 tensor to wire form.
func EncodeTensor3(t *model.Tensor3) TensorMsg {
	s, st, w := t.Dims()
	return TensorMsg{Shape: []int{s, st, w}, Data: t.Flatten()}
}

// Tensor2 rebuilds a rank-2 tensor from wire form, or nil if the
// shape does not match.
func (m TensorMsg) Tensor2() *model.Tensor2 {
	if len(m.Shape) != 2 || len(m.Data) != m.Shape[0]*m.Shape[1] {
		return nil
	}
	return model.Tensor2FromFlat(m.Shape[0], m.Shape[1], m.Data)
}

// Tensor3 rebuilds a rank-3 tensor from wire form, or nil if the
// shape does not match.
func (m TensorMsg) Tensor3() *model.Tensor3 {
	if len(m.Shape) != 3 || len(m.Data) != m.Shape[0]*m.Shape[1]*m.Shape[2] {
		return nil
	}
	return model.Tensor3FromFlat(m.Shape[0], m.Shape[1], m.Shape[2], m.Data)
}

// RecordBatchMsg represents a batch record write request
type RecordBatchMsg struct {
	Records []model.Record `json:"records"`
}

// DatasetMsg hands a split dataset to the external trainer.
type DatasetMsg struct {
	RunID        string    `json:"run_id"`
	WindowSize   int       `json:"window_size"`
	Horizon      int       `json:"horizon"`
	TrackIDs     []string  `json:"track_ids"`
	FeatureNames []string  `json:"feature_names"`
	TrainInputs  TensorMsg `json:"train_inputs"`
	TrainTargets TensorMsg `json:"train_targets"`
	TestInputs   TensorMsg `json:"test_inputs"`
	TestTargets  TensorMsg `json:"test_targets"`
}

// ProgressMsg is published by the trainer once per epoch.
type ProgressMsg struct {
	RunID          string  `json:"run_id"`
	Epoch          int     `json:"epoch"`
	Epochs         int     `json:"epochs"`
	Loss           float64 `json:"loss"`
	Accuracy       float64 `json:"accuracy"`
	EarlyStopCount int     `json:"early_stop_count"`
	Done           bool    `json:"done"`
}

// PredictRequestMsg asks the trainer for predictions over a run's model.
type PredictRequestMsg struct {
	RunID  string    `json:"run_id"`
	Inputs TensorMsg `json:"inputs"`
}

// PredictReplyMsg carries post-sigmoid probabilities of target shape.
type PredictReplyMsg struct {
	RunID       string    `json:"run_id"`
	Predictions TensorMsg `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}

// PredictionBatchMsg is published by the trainer when a run finishes:
// test-set predictions plus the aligned targets and inputs so the
// evaluation worker is self-contained.
type PredictionBatchMsg struct {
	RunID        string    `json:"run_id"`
	TrackIDs     []string  `json:"track_ids"`
	FeatureNames []string  `json:"feature_names"`
	Horizon      int       `json:"horizon"`
	Predictions  TensorMsg `json:"predictions"`
	Targets      TensorMsg `json:"targets"`
	Inputs       TensorMsg `json:"inputs"`
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeRecordBatch deserializes a RecordBatchMsg from JSON bytes
func DecodeRecordBatch(data []byte) (*RecordBatchMsg, error) {
	var msg RecordBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeDataset deserializes a DatasetMsg from JSON bytes
func DecodeDataset(data []byte) (*DatasetMsg, error) {
	var msg DatasetMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeProgress deserializes a ProgressMsg from JSON bytes
func DecodeProgress(data []byte) (*ProgressMsg, error) {
	var msg ProgressMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodePredictReply deserializes a PredictReplyMsg from JSON bytes
func DecodePredictReply(data []byte) (*PredictReplyMsg, error) {
	var msg PredictReplyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodePredictionBatch deserializes a PredictionBatchMsg from JSON bytes
func DecodePredictionBatch(data []byte) (*PredictionBatchMsg, error) {
	var msg PredictionBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
