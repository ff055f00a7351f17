package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/crescendo/pkg/model"
)

func TestTensorWireRoundTrip(t *testing.T) {
	t3 := model.NewTensor3(2, 3, 4)
	defer t3.Release()
	t3.Set(1, 2, 3, 0.42)

	msg := EncodeTensor3(t3)
	assert.Equal(t, []int{2, 3, 4}, msg.Shape)

	back := msg.Tensor3()
	require.NotNil(t, back)
	defer back.Release()
	assert.Equal(t, 0.42, back.At(1, 2, 3))
}

func TestTensorWireShapeMismatch(t *testing.T) {
	msg := TensorMsg{Shape: []int{2, 2}, Data: []float64{1, 2, 3}}
	assert.Nil(t, msg.Tensor2())

	msg = TensorMsg{Shape: []int{2}, Data: []float64{1, 2}}
	assert.Nil(t, msg.Tensor2())
	assert.Nil(t, msg.Tensor3())
}

func TestDatasetMsgRoundTrip(t *testing.T) {
	inputs := model.NewTensor3(1, 2, 2)
	defer inputs.Release()
	targets := model.NewTensor2(1, 3)
	defer targets.Release()
	targets.Set(0, 1, 1)

	msg := DatasetMsg{
		RunID:        "run-1",
		WindowSize:   7,
		Horizon:      3,
		TrackIDs:     []string{"t1"},
		FeatureNames: []string{"streams", "energy"},
		TrainInputs:  EncodeTensor3(inputs),
		TrainTargets: EncodeTensor2(targets),
		TestInputs:   EncodeTensor3(inputs),
		TestTargets:  EncodeTensor2(targets),
	}

	payload, err := Encode(msg)
	require.NoError(t, err)

	decoded, err := DecodeDataset(payload)
	require.NoError(t, err)
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, []string{"streams", "energy"}, decoded.FeatureNames)

	back := decoded.TrainTargets.Tensor2()
	require.NotNil(t, back)
	defer back.Release()
	assert.Equal(t, 1.0, back.At(0, 1))
}

func TestDecodeProgress(t *testing.T) {
	payload, err := Encode(ProgressMsg{RunID: "r", Epoch: 3, Epochs: 50, Loss: 0.2, Done: true})
	require.NoError(t, err)

	p, err := DecodeProgress(payload)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Epoch)
	assert.True(t, p.Done)

	_, err = DecodeProgress([]byte("not json"))
	assert.Error(t, err)
}
